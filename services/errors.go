package services

import (
	"errors"
	"net/http"

	"github.com/calisthenics-hub/api/apperrors"
	"github.com/calisthenics-hub/api/repositories"
)

// Client-facing messages for user operations.
const (
	msgUserNotFound    = "User not found"
	msgEmailTaken      = "Email already registered"
	msgNotYourAccount  = "Cannot access another user's account"
	msgRoleChangeAdmin = "Only administrators can change roles"
)

// translateRepoError maps repository sentinels onto the API error taxonomy.
// Anything unrecognized is returned unchanged and becomes INTERNAL_ERROR
// at the edge.
func translateRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return apperrors.Wrap(http.StatusNotFound, apperrors.CodeNotFound, msgUserNotFound, err)
	case errors.Is(err, repositories.ErrDuplicate):
		return apperrors.Wrap(http.StatusConflict, apperrors.CodeConflict, msgEmailTaken, err)
	default:
		return err
	}
}
