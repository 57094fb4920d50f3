package auth

import "context"

// Service defines the interface for authentication-related business logic.
type Service interface {
	// Login accepts either an email or a username as identifier and returns
	// a signed token plus the resolved actor on success.
	Login(ctx context.Context, identifier, password string) (*LoginResult, error)
}

// LoginResult is the payload returned to a successfully authenticated user.
type LoginResult struct {
	Token    string `json:"token"`
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}
