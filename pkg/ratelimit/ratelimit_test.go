package ratelimit_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/smartdalle/smartdalle/pkg/ratelimit"
	"github.com/smartdalle/smartdalle/svc/auth"
)

func TestLimiterAllow(t *testing.T) {
	t.Parallel()

	l := ratelimit.New(ratelimit.Config{Rate: rate.Limit(1), Burst: 2})
	defer l.Stop()

	assert.True(t, l.Allow("user-1"))
	assert.True(t, l.Allow("user-1"))
	assert.False(t, l.Allow("user-1"), "burst exhausted")

	// Other keys have their own bucket.
	assert.True(t, l.Allow("user-2"))
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	newRequest := func(user *auth.User) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/weight", nil)
		if user != nil {
			req = req.WithContext(auth.SetUserToContext(req.Context(), user))
		}
		return req
	}

	t.Run("limits per authenticated user", func(t *testing.T) {
		t.Parallel()

		l := ratelimit.New(ratelimit.Config{Rate: rate.Limit(1), Burst: 1})
		defer l.Stop()

		handler := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		alice := &auth.User{ID: uuid.New()}
		bob := &auth.User{ID: uuid.New()}

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newRequest(alice))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, newRequest(alice))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("Retry-After"))

		// A different user is not affected by alice's bucket.
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, newRequest(bob))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("anonymous requests share one bucket", func(t *testing.T) {
		t.Parallel()

		l := ratelimit.New(ratelimit.Config{Rate: rate.Limit(1), Burst: 1})
		defer l.Stop()

		handler := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newRequest(nil))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, newRequest(nil))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})
}

func TestCleanupEvictsIdleUsers(t *testing.T) {
	t.Parallel()

	l := ratelimit.New(ratelimit.Config{
		Rate:            rate.Limit(1),
		Burst:           1,
		TTL:             10 * time.Millisecond,
		CleanupInterval: 10 * time.Millisecond,
	})
	defer l.Stop()

	assert.True(t, l.Allow("user-1"))
	assert.False(t, l.Allow("user-1"))

	// After eviction the user starts with a fresh bucket.
	assert.Eventually(t, func() bool {
		return l.Allow("user-1")
	}, time.Second, 5*time.Millisecond)
}
