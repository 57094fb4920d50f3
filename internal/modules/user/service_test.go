package user

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/danmwale/shopledger-backend/internal/apperr"
)

type fakeRepo struct {
	byUsername map[string]*User
	byEmail    map[string]*User
	created    []*User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byUsername: map[string]*User{}, byEmail: map[string]*User{}}
}

func (f *fakeRepo) CreateUser(_ context.Context, u *User) error {
	f.created = append(f.created, u)
	f.byUsername[u.Username] = u
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeRepo) GetUserByID(_ context.Context, id string) (*User, error) {
	for _, u := range f.byUsername {
		if u.ID.String() == id {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeRepo) GetUserByEmail(_ context.Context, email string) (*User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (f *fakeRepo) GetUserByUsername(_ context.Context, username string) (*User, error) {
	u, ok := f.byUsername[username]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (f *fakeRepo) ListUsers(_ context.Context) ([]*User, error) {
	var out []*User
	for _, u := range f.byUsername {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeRepo) ListAdmins(_ context.Context) ([]*User, error) {
	var out []*User
	for _, u := range f.byUsername {
		if u.Role == RoleAdmin {
			out = append(out, u)
		}
	}
	return out, nil
}

func TestRegisterHashesPassword(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	u, err := svc.Register(context.Background(), RegisterRequest{
		Username: "moses",
		Email:    "moses@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)

	assert.Equal(t, RoleStaff, u.Role, "role defaults to staff")
	assert.NotEqual(t, "secret1", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret1")))
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(newFakeRepo())

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"empty username", RegisterRequest{Email: "a@b.com", Password: "secret1"}},
		{"username with at sign", RegisterRequest{Username: "a@b", Email: "a@b.com", Password: "secret1"}},
		{"bad email", RegisterRequest{Username: "moses", Email: "nope", Password: "secret1"}},
		{"short password", RegisterRequest{Username: "moses", Email: "a@b.com", Password: "abc"}},
		{"bad role", RegisterRequest{Username: "moses", Email: "a@b.com", Password: "secret1", Role: "owner"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.req)
			assert.True(t, apperr.IsKind(err, apperr.KindValidation))
		})
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Username: "moses", Email: "moses@example.com", Password: "secret1",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterRequest{
		Username: "moses", Email: "other@example.com", Password: "secret1",
	})
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestResolveIdentifier(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Username: "grace", Email: "grace@example.com", Password: "secret1",
	})
	require.NoError(t, err)

	// Anything containing "@" is treated as an email as-is.
	email, err := svc.ResolveIdentifier(context.Background(), "whoever@example.com")
	require.NoError(t, err)
	assert.Equal(t, "whoever@example.com", email)

	// A username resolves to the account's email.
	email, err = svc.ResolveIdentifier(context.Background(), "grace")
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", email)

	// An unknown username yields an empty email, not an error.
	email, err = svc.ResolveIdentifier(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, email)
}

func TestListUsersRequiresAdmin(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.ListUsers(context.Background(), Actor{ID: "x", Role: RoleStaff})
	assert.True(t, apperr.IsKind(err, apperr.KindPermission))
}
