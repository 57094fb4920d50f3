package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/danmwale/shopledger-backend/internal/apperr"
)

type service struct {
	repo Repository
}

// NewService creates a new user service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, apperr.Validationf("username is required")
	}
	if strings.Contains(username, "@") {
		return nil, apperr.Validationf("username must not contain '@'")
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperr.Validationf("a valid email is required")
	}
	if len(req.Password) < 6 {
		return nil, apperr.Validationf("password must be at least 6 characters")
	}

	role := RoleStaff
	if req.Role != "" {
		switch Role(req.Role) {
		case RoleAdmin, RoleStaff:
			role = Role(req.Role)
		default:
			return nil, apperr.Validationf("invalid role: %s", req.Role)
		}
	}

	if existing, err := s.repo.GetUserByUsername(ctx, username); err == nil && existing != nil {
		return nil, apperr.Conflictf("username %q is already taken", username)
	}
	if existing, err := s.repo.GetUserByEmail(ctx, email); err == nil && existing != nil {
		return nil, apperr.Conflictf("an account with email %q already exists", email)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Store("failed to hash password", err)
	}

	u := &User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		Role:         role,
		PasswordHash: string(hashed),
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, apperr.Store("failed to create user", err)
	}
	return u, nil
}

func (s *service) GetUser(ctx context.Context, id string) (*User, error) {
	u, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFoundf("user %s not found", id)
		}
		return nil, apperr.Store("failed to load user", err)
	}
	return u, nil
}

func (s *service) ListUsers(ctx context.Context, actor Actor) ([]*User, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Permissionf("you are not authorized to view users")
	}
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, apperr.Store("failed to list users", err)
	}
	return users, nil
}

func (s *service) ResolveIdentifier(ctx context.Context, identifier string) (string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return "", apperr.Validationf("identifier is required")
	}
	if strings.Contains(identifier, "@") {
		return identifier, nil
	}
	u, err := s.repo.GetUserByUsername(ctx, identifier)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", apperr.Store("failed to look up username", err)
	}
	return u.Email, nil
}
