package auth_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartdalle/smartdalle/svc/auth"
)

type stubResolver struct {
	user *auth.User
	err  error
}

func (s stubResolver) Resolve(r *http.Request) (*auth.User, error) {
	return s.user, s.err
}

func noopLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestRequireUser_PassesUserThrough(t *testing.T) {
	t.Parallel()

	user := &auth.User{ID: uuid.New(), Email: "user@example.com"}
	mw := auth.RequireUser(stubResolver{user: user}, noopLogger())

	var seen *auth.User
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = auth.GetUserFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/progress", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, user.ID, seen.ID)
}

func TestRequireUser_RedirectsBrowsers(t *testing.T) {
	t.Parallel()

	mw := auth.RequireUser(stubResolver{err: auth.ErrUnauthenticated}, noopLogger())
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, auth.LoginPath, rec.Header().Get("Location"))
}

func TestRequireUser_401ForAPIClients(t *testing.T) {
	t.Parallel()

	mw := auth.RequireUser(stubResolver{err: auth.ErrUnauthenticated}, noopLogger())
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodPost, "/progress/weight", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
