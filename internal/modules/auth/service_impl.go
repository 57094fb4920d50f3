package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/danmwale/shopledger-backend/internal/apperr"
	"github.com/danmwale/shopledger-backend/internal/modules/user"
)

// Claims are the JWT claims carried by every issued token.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type service struct {
	users  user.Service
	repo   user.Repository
	secret []byte
	expiry time.Duration
}

// NewService creates a new auth service.
func NewService(users user.Service, repo user.Repository, secret string, expiry time.Duration) Service {
	return &service{users: users, repo: repo, secret: []byte(secret), expiry: expiry}
}

func (s *service) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	email, err := s.users.ResolveIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if email == "" {
		return nil, apperr.Permissionf("invalid credentials")
	}

	u, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.Permissionf("invalid credentials")
		}
		return nil, apperr.Store("failed to load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Permissionf("invalid credentials")
	}

	token, err := GenerateToken(u, s.secret, s.expiry)
	if err != nil {
		return nil, apperr.Store("failed to sign token", err)
	}

	return &LoginResult{
		Token:    token,
		ID:       u.ID.String(),
		Username: u.Username,
		Email:    u.Email,
		Role:     string(u.Role),
	}, nil
}

// GenerateToken signs a JWT for the given user.
func GenerateToken(u *user.User, secret []byte, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Username: u.Username,
		Role:     string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}
