package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/calisthenics-hub/api/apperrors"
	"github.com/calisthenics-hub/api/auth"
	"github.com/calisthenics-hub/api/models"
	"github.com/calisthenics-hub/api/repositories"
)

// maxPasswordBytes is the longest input bcrypt accepts
const maxPasswordBytes = 72

// TokenIssuer signs bearer tokens
type TokenIssuer interface {
	Issue(subjectID string, role auth.Role) (string, time.Time, error)
}

// RegisterInput is the body of POST /api/auth/register
type RegisterInput struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=8,maxbytes=72"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
}

// LoginInput is the body of POST /api/auth/login
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is returned by register and login
type AuthResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// AuthService handles account registration and credential exchange
type AuthService struct {
	users      repositories.UserRepository
	txMgr      repositories.TransactionManager
	issuer     TokenIssuer
	bcryptCost int
	logger     *zap.Logger

	// dummyHash is compared against when the email is unknown so both
	// login failure paths cost one bcrypt comparison.
	dummyHash []byte
}

// NewAuthService creates a new AuthService. bcryptCost of zero selects
// bcrypt.DefaultCost.
func NewAuthService(users repositories.UserRepository, txMgr repositories.TransactionManager, issuer TokenIssuer, bcryptCost int, logger *zap.Logger) (*AuthService, error) {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("calisthenics-hub-dummy"), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare password hasher: %w", err)
	}
	return &AuthService{
		users:      users,
		txMgr:      txMgr,
		issuer:     issuer,
		bcryptCost: bcryptCost,
		logger:     logger,
		dummyHash:  dummy,
	}, nil
}

// Register creates a member account and signs a token for it
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if len(in.Password) > maxPasswordBytes {
		return nil, apperrors.Validation("Validation failed", map[string]interface{}{
			"password": fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes),
		})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.NewUser(in.Email, in.FirstName, in.LastName, string(hash), auth.RoleMember)

	err = WithTransaction(ctx, s.txMgr, func(ctx context.Context) error {
		if _, err := s.users.GetByEmail(ctx, user.Email); err == nil {
			return apperrors.Conflict(msgEmailTaken)
		} else if !errors.Is(err, repositories.ErrNotFound) {
			return err
		}
		return s.users.Create(ctx, user)
	})
	if err != nil {
		return nil, translateRepoError(err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	return s.issue(user)
}

// Login exchanges an email and password for a token
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(in.Password))
			return nil, apperrors.InvalidCredentials()
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, apperrors.InvalidCredentials()
		}
		return nil, fmt.Errorf("failed to compare password: %w", err)
	}

	return s.issue(user)
}

// Me loads the account behind a verified principal
func (s *AuthService) Me(ctx context.Context, p auth.Principal) (*models.User, error) {
	id, err := subjectUUID(p)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return user, nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, expiresAt, err := s.issuer.Issue(user.ID.String(), user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &AuthResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}
