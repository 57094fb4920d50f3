package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danmwale/shopledger-backend/internal/modules/user"
)

const testSecret = "test-secret"

func testToken(t *testing.T, u *user.User, expiry time.Duration) string {
	t.Helper()
	token, err := GenerateToken(u, []byte(testSecret), expiry)
	require.NoError(t, err)
	return token
}

func protectedHandler(t *testing.T, gotActor *user.Actor) http.Handler {
	t.Helper()
	return RequireAuth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := user.ActorFromContext(r.Context())
		require.True(t, ok)
		*gotActor = actor
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRequireAuthValidToken(t *testing.T) {
	u := &user.User{ID: uuid.New(), Username: "grace", Role: user.RoleAdmin}

	var actor user.Actor
	handler := protectedHandler(t, &actor)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+testToken(t, u, time.Hour))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, u.ID.String(), actor.ID)
	assert.Equal(t, "grace", actor.Username)
	assert.True(t, actor.IsAdmin())
}

func TestRequireAuthRejects(t *testing.T) {
	u := &user.User{ID: uuid.New(), Username: "grace", Role: user.RoleAdmin}

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not.a.token"},
		{"expired token", "Bearer " + testToken(t, u, -time.Minute)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var actor user.Actor
			handler := protectedHandler(t, &actor)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Empty(t, actor.ID, "handler must not run")
		})
	}
}

func TestRequireAuthRejectsWrongSecret(t *testing.T) {
	u := &user.User{ID: uuid.New(), Username: "grace", Role: user.RoleAdmin}
	token, err := GenerateToken(u, []byte("other-secret"), time.Hour)
	require.NoError(t, err)

	var actor user.Actor
	handler := protectedHandler(t, &actor)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
