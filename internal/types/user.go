package types

import (
	"time"

	"github.com/google/uuid"
)

// Role values stored in the users table.
const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

// User represents an account able to authenticate against the API.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"` // Unique, looked up case-insensitively.
	PasswordHash string    `json:"-"`     // Never exposed.
	Role         string    `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateUserParams carries the fields accepted on register / admin create.
type CreateUserParams struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserParams defines the fields allowed for user updates.
// Pointers distinguish "not provided" from zero values for partial updates.
type UpdateUserParams struct {
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

// UpdateUserAdminParams covers the admin-only PATCH of role and active flag.
type UpdateUserAdminParams struct {
	Role   *string `json:"role,omitempty"`
	Active *bool   `json:"active,omitempty"`
}
