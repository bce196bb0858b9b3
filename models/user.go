package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/calisthenics-hub/api/auth"
)

// User represents a registered account
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	FirstName    string    `json:"firstName" db:"first_name"`
	LastName     string    `json:"lastName" db:"last_name"`
	Role         auth.Role `json:"role" db:"role"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// NewUser creates a new User instance. The email is normalized to lower case.
func NewUser(email, firstName, lastName, passwordHash string, role auth.Role) *User {
	now := time.Now().UTC()
	return &User{
		ID:           uuid.New(),
		Email:        NormalizeEmail(email),
		FirstName:    firstName,
		LastName:     lastName,
		Role:         role,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsAdmin returns true if the user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == auth.RoleAdmin
}

// NormalizeEmail trims and lower-cases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserUpdate holds the mutable profile fields. Nil fields are left unchanged.
type UserUpdate struct {
	FirstName *string    `json:"firstName,omitempty" validate:"omitempty,min=1,max=100"`
	LastName  *string    `json:"lastName,omitempty" validate:"omitempty,min=1,max=100"`
	Role      *auth.Role `json:"role,omitempty" validate:"omitempty,oneof=member admin"`
}

// Apply copies the set fields onto u and bumps UpdatedAt.
func (upd UserUpdate) Apply(u *User, now time.Time) {
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	u.UpdatedAt = now
}
