package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/calisthenics-hub/api/apperrors"
	"github.com/calisthenics-hub/api/auth"
	"github.com/calisthenics-hub/api/models"
	"github.com/calisthenics-hub/api/repositories"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Page bounds a list query
type Page struct {
	Limit  int
	Offset int
}

// Normalize clamps the page to sane bounds
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = defaultPageSize
	}
	if p.Limit > maxPageSize {
		p.Limit = maxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// UserService manages user accounts
type UserService struct {
	users  repositories.UserRepository
	txMgr  repositories.TransactionManager
	logger *zap.Logger
	now    func() time.Time
}

// NewUserService creates a new UserService
func NewUserService(users repositories.UserRepository, txMgr repositories.TransactionManager, logger *zap.Logger) *UserService {
	return &UserService{
		users:  users,
		txMgr:  txMgr,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// List returns a page of users. Callers are expected to have passed an
// admin guard already.
func (s *UserService) List(ctx context.Context, page Page) ([]*models.User, error) {
	page = page.Normalize()
	return s.users.List(ctx, page.Limit, page.Offset)
}

// Get returns a user visible to the principal: their own account, or any
// account for admins.
func (s *UserService) Get(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.User, error) {
	if err := authorizeAccount(p, id); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return user, nil
}

// Update applies upd to a user. Only admins may change roles.
func (s *UserService) Update(ctx context.Context, p auth.Principal, id uuid.UUID, upd models.UserUpdate) (*models.User, error) {
	if err := authorizeAccount(p, id); err != nil {
		return nil, err
	}
	if upd.Role != nil && !p.IsAdmin() {
		return nil, apperrors.Forbidden(msgRoleChangeAdmin)
	}

	user, err := WithTransactionResult(ctx, s.txMgr, func(ctx context.Context) (*models.User, error) {
		user, err := s.users.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		upd.Apply(user, s.now())
		if err := s.users.Update(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	})
	if err != nil {
		return nil, translateRepoError(err)
	}

	s.logger.Info("user updated",
		zap.String("user_id", id.String()),
		zap.String("by", p.SubjectID))
	return user, nil
}

func authorizeAccount(p auth.Principal, id uuid.UUID) error {
	if p.IsAdmin() || p.SubjectID == id.String() {
		return nil
	}
	return apperrors.Forbidden(msgNotYourAccount)
}

func subjectUUID(p auth.Principal) (uuid.UUID, error) {
	id, err := uuid.Parse(p.SubjectID)
	if err != nil {
		return uuid.Nil, apperrors.InvalidToken(err)
	}
	return id, nil
}
