package user

import "context"

// Actor identifies the authenticated user performing an operation. It is
// threaded explicitly into every ledger call rather than carried as ambient
// state.
type Actor struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// Service defines the interface for user-related business logic.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	GetUser(ctx context.Context, id string) (*User, error)
	ListUsers(ctx context.Context, actor Actor) ([]*User, error)
	// ResolveIdentifier bridges username-based login onto email-based auth.
	// An identifier containing "@" is treated as an email directly; otherwise
	// it is looked up as a username. A missing user yields an empty email,
	// not an error.
	ResolveIdentifier(ctx context.Context, identifier string) (string, error)
}

// RegisterRequest is the payload for creating a new account.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"` // defaults to staff
}
