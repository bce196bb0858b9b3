package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/calisthenics-hub/api/apperrors"
	"github.com/calisthenics-hub/api/auth"
	"github.com/calisthenics-hub/api/models"
	"github.com/calisthenics-hub/api/services"
	"github.com/calisthenics-hub/api/utils"
)

// UserService is the user API used by UserHandler
type UserService interface {
	List(ctx context.Context, page services.Page) ([]*models.User, error)
	Get(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.User, error)
	Update(ctx context.Context, p auth.Principal, id uuid.UUID, upd models.UserUpdate) (*models.User, error)
}

// UserHandler serves /api/users
type UserHandler struct {
	svc UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// HandleList handles GET /api/users?limit=&offset=
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) error {
	page, err := parsePage(r)
	if err != nil {
		return err
	}

	users, err := h.svc.List(r.Context(), page)
	if err != nil {
		return err
	}
	return utils.WriteOK(w, DataResponse{Data: users})
}

// HandleGet handles GET /api/users/{id}
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) error {
	p, err := requirePrincipal(r)
	if err != nil {
		return err
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}

	user, err := h.svc.Get(r.Context(), p, id)
	if err != nil {
		return err
	}
	return utils.WriteOK(w, DataResponse{Data: user})
}

// HandleUpdate handles PUT /api/users/{id}
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) error {
	p, err := requirePrincipal(r)
	if err != nil {
		return err
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}

	var upd models.UserUpdate
	if err := utils.DecodeJSON(r, &upd); err != nil {
		return err
	}

	user, err := h.svc.Update(r.Context(), p, id, upd)
	if err != nil {
		return err
	}
	return utils.WriteOK(w, DataResponse{Data: user})
}

func parsePage(r *http.Request) (services.Page, error) {
	var page services.Page
	q := r.URL.Query()
	for name, dst := range map[string]*int{"limit": &page.Limit, "offset": &page.Offset} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return services.Page{}, apperrors.Validation("Invalid pagination", map[string]interface{}{
				name: name + " must be a non-negative integer",
			})
		}
		*dst = n
	}
	return page, nil
}
