package handlers

import (
	"context"
	"net/http"

	"github.com/calisthenics-hub/api/auth"
	"github.com/calisthenics-hub/api/models"
	"github.com/calisthenics-hub/api/services"
	"github.com/calisthenics-hub/api/utils"
)

// AuthService is the account API used by AuthHandler
type AuthService interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.AuthResult, error)
	Login(ctx context.Context, in services.LoginInput) (*services.AuthResult, error)
	Me(ctx context.Context, p auth.Principal) (*models.User, error)
}

// AuthHandler serves /api/auth
type AuthHandler struct {
	svc AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(svc AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// HandleRegister handles POST /api/auth/register
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) error {
	var in services.RegisterInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		return err
	}

	res, err := h.svc.Register(r.Context(), in)
	if err != nil {
		return err
	}
	return utils.WriteCreated(w, res)
}

// HandleLogin handles POST /api/auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) error {
	var in services.LoginInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		return err
	}

	res, err := h.svc.Login(r.Context(), in)
	if err != nil {
		return err
	}
	return utils.WriteOK(w, res)
}

// HandleMe handles GET /api/auth/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) error {
	p, err := requirePrincipal(r)
	if err != nil {
		return err
	}

	user, err := h.svc.Me(r.Context(), p)
	if err != nil {
		return err
	}
	return utils.WriteOK(w, DataResponse{Data: user})
}
