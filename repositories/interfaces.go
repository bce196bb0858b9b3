package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/calisthenics-hub/api/models"
)

var (
	// ErrNotFound is returned when a lookup matches no row
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when an insert or update violates a unique constraint
	ErrDuplicate = errors.New("duplicate record")
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction and returns a context bound to it.
	// Repository calls made with that context run inside the transaction.
	Begin(ctx context.Context) (context.Context, Transaction, error)
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction. Rolling back a finished
	// transaction is a no-op.
	Rollback() error
}

// UserRepository handles user data operations
type UserRepository interface {
	// Create inserts a new user. Returns ErrDuplicate when the email is taken.
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetByEmail retrieves a user by normalized email
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// List retrieves users ordered by creation time, newest first
	List(ctx context.Context, limit, offset int) ([]*models.User, error)

	// Update persists the profile fields and role of a user
	Update(ctx context.Context, user *models.User) error
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Users UserRepository
}
