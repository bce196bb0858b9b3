// Package handlers contains the HTTP handlers. Handlers report failures by
// returning an error; routes wraps them with the failure translator.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/calisthenics-hub/api/apperrors"
	"github.com/calisthenics-hub/api/auth"
	"github.com/calisthenics-hub/api/middleware"
	"github.com/calisthenics-hub/api/utils"
)

// DataResponse wraps a successful payload
type DataResponse struct {
	Data interface{} `json:"data"`
}

// requirePrincipal returns the authenticated caller. Routes that call it
// sit behind Authenticate, so a miss means the route was wired wrong.
func requirePrincipal(r *http.Request) (auth.Principal, error) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		return auth.Principal{}, apperrors.Unauthorized(apperrors.MsgNotAuthenticated)
	}
	return p, nil
}

// pathUUID parses a chi URL parameter as a UUID
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	return utils.ParseUUID(chi.URLParam(r, name), name)
}
