package types

import "github.com/golang-jwt/jwt/v5"

// Claims is the JWT payload carried by access tokens. Subject holds the
// user's email; Role is a convenience copy, re-checked against the database
// on every request.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Principal is the request-scoped authenticated identity attached by the
// authentication middleware after the token subject has been re-resolved to
// a live user row. It is discarded at the end of the request.
type Principal struct {
	Email  string
	Role   string
	Active bool
}

// IsAdmin reports whether the principal carries the admin role.
func (p *Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents the login response body.
type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
