package progress_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	modprogress "github.com/smartdalle/smartdalle/modules/progress"
	"github.com/smartdalle/smartdalle/pkg/badges"
	"github.com/smartdalle/smartdalle/svc/auth"
	"github.com/smartdalle/smartdalle/svc/progress"
)

type collectingNotifier struct {
	mu        sync.Mutex
	delivered []string
}

func (n *collectingNotifier) Deliver(ctx context.Context, badge badges.Badge) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.delivered = append(n.delivered, badge.Key)
	return nil
}

func (n *collectingNotifier) keys() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.delivered))
	copy(out, n.delivered)
	return out
}

func withUser(user *auth.User) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user != nil {
				r = r.WithContext(auth.SetUserToContext(r.Context(), user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func newRouter(t *testing.T, user *auth.User) (http.Handler, *progress.InMemStore) {
	t.Helper()

	store := progress.NewInMemStore()
	svc := progress.NewService(store, store)

	router := modprogress.Router(modprogress.RouterOptions{
		Service:     svc,
		RequireUser: withUser(user),
	})
	return router, store
}

func TestLogWeightEndpoint(t *testing.T) {
	t.Parallel()

	user := &auth.User{ID: uuid.New(), Email: "user@example.com"}

	t.Run("creates entry and reports unlocked badges", func(t *testing.T) {
		t.Parallel()

		router, store := newRouter(t, user)

		req := httptest.NewRequest(http.MethodPost, "/weight", strings.NewReader(`{"weight":82.5}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.JSONEq(t, `{"unlocked_badges":["first_log"]}`, rec.Body.String())

		logs, err := store.ListRecent(req.Context(), user.ID, 0)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, 82.5, logs[0].Weight)
	})

	t.Run("same-day repeat creates a second row", func(t *testing.T) {
		t.Parallel()

		router, store := newRouter(t, user)

		for range 2 {
			req := httptest.NewRequest(http.MethodPost, "/weight", strings.NewReader(`{"weight":82.5}`))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			require.Equal(t, http.StatusCreated, rec.Code)
		}

		count, err := store.Count(t.Context(), user.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, count)
	})

	t.Run("invalid weight", func(t *testing.T) {
		t.Parallel()

		router, _ := newRouter(t, user)

		req := httptest.NewRequest(http.MethodPost, "/weight", strings.NewReader(`{"weight":5000}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()

		router, _ := newRouter(t, user)

		req := httptest.NewRequest(http.MethodPost, "/weight", strings.NewReader(`{"weigth":80}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		t.Parallel()

		router, _ := newRouter(t, nil)

		req := httptest.NewRequest(http.MethodPost, "/weight", strings.NewReader(`{"weight":82.5}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("badge announcements go through the sequencer", func(t *testing.T) {
		t.Parallel()

		store := progress.NewInMemStore()
		svc := progress.NewService(store, store)

		notifier := &collectingNotifier{}
		seq := badges.NewSequencer(notifier, badges.WithInterval(5*time.Millisecond))
		defer seq.Close()

		router := modprogress.Router(modprogress.RouterOptions{
			Service:     svc,
			Sequencer:   seq,
			RequireUser: withUser(user),
		})

		req := httptest.NewRequest(http.MethodPost, "/weight", strings.NewReader(`{"weight":82.5}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)

		assert.Eventually(t, func() bool {
			return len(notifier.keys()) == 1
		}, time.Second, 5*time.Millisecond)
	})
}

func TestHistoryEndpoint(t *testing.T) {
	t.Parallel()

	user := &auth.User{ID: uuid.New()}

	t.Run("empty history is an empty list", func(t *testing.T) {
		t.Parallel()

		router, _ := newRouter(t, user)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"entries":[]}`, rec.Body.String())
	})

	t.Run("returns logged entries", func(t *testing.T) {
		t.Parallel()

		router, store := newRouter(t, user)
		require.NoError(t, store.Insert(t.Context(), &progress.WeightLog{
			UserID:    user.ID,
			Weight:    82.5,
			Date:      time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
			CreatedAt: time.Now().UTC(),
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"weight":82.5`)
	})
}
