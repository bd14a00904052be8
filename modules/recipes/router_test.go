package recipes_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	modrecipes "github.com/smartdalle/smartdalle/modules/recipes"
	"github.com/smartdalle/smartdalle/pkg/billing"
	"github.com/smartdalle/smartdalle/svc/auth"
	"github.com/smartdalle/smartdalle/svc/recipes"
)

type stubEntitlements struct {
	premium bool
}

func (s *stubEntitlements) HasFeature(ctx context.Context, userID uuid.UUID, feature billing.Feature) bool {
	return s.premium
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

func newRouter(t *testing.T, premium bool) (http.Handler, recipes.Recipe) {
	t.Helper()

	premiumRecipe := recipes.Recipe{
		ID:      uuid.New(),
		Title:   "Miso Salmon Bowl",
		Premium: true,
	}
	store := recipes.NewInMemStore(
		recipes.Recipe{ID: uuid.New(), Title: "Overnight Oats"},
		premiumRecipe,
	)
	svc := recipes.NewService(store, &stubEntitlements{premium: premium})

	router := modrecipes.Router(modrecipes.RouterOptions{
		Service:     svc,
		RequireUser: withUser(&auth.User{ID: uuid.New()}),
	})
	return router, premiumRecipe
}

func TestListEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("free tier sees free recipes only", func(t *testing.T) {
		t.Parallel()

		router, _ := newRouter(t, false)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Overnight Oats")
		assert.NotContains(t, rec.Body.String(), "Miso Salmon Bowl")
	})

	t.Run("premium sees everything", func(t *testing.T) {
		t.Parallel()

		router, _ := newRouter(t, true)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Miso Salmon Bowl")
	})
}

func TestGetEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("premium recipe gated for free users", func(t *testing.T) {
		t.Parallel()

		router, premiumRecipe := newRouter(t, false)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/"+premiumRecipe.ID.String(), nil))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("invalid recipe ID", func(t *testing.T) {
		t.Parallel()

		router, _ := newRouter(t, true)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/not-a-uuid", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown recipe", func(t *testing.T) {
		t.Parallel()

		router, _ := newRouter(t, true)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/"+uuid.NewString(), nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestDailyTipEndpoint(t *testing.T) {
	t.Parallel()

	router, _ := newRouter(t, false)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tip", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tip")
}
