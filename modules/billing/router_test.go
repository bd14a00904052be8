package billing_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	modbilling "github.com/smartdalle/smartdalle/modules/billing"
	"github.com/smartdalle/smartdalle/pkg/billing"
	"github.com/smartdalle/smartdalle/svc/auth"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) CreateCheckoutSession(ctx context.Context, userID uuid.UUID, userEmail string) (string, error) {
	args := m.Called(ctx, userID, userEmail)
	return args.String(0), args.Error(1)
}

func (m *mockService) CreatePortalSession(ctx context.Context, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *mockService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	args := m.Called(ctx, payload, signature)
	return args.Error(0)
}

func (m *mockService) GetSubscription(ctx context.Context, userID uuid.UUID) (*billing.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Subscription), args.Error(1)
}

func (m *mockService) HasPremium(ctx context.Context, userID uuid.UUID) bool {
	return m.Called(ctx, userID).Bool(0)
}

func (m *mockService) HasFeature(ctx context.Context, userID uuid.UUID, feature billing.Feature) bool {
	return m.Called(ctx, userID, feature).Bool(0)
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

func TestCheckoutEndpoint(t *testing.T) {
	t.Parallel()

	user := &auth.User{ID: uuid.New(), Email: "user@example.com"}

	t.Run("returns checkout URL", func(t *testing.T) {
		t.Parallel()

		svc := new(mockService)
		svc.On("CreateCheckoutSession", mock.Anything, user.ID, user.Email).
			Return("https://checkout.example.com/cs_1", nil)

		router := modbilling.Router(modbilling.RouterOptions{
			Service:     svc,
			RequireUser: withUser(user),
		})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/checkout", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"url":"https://checkout.example.com/cs_1"}`, rec.Body.String())
	})

	t.Run("unauthenticated request", func(t *testing.T) {
		t.Parallel()

		svc := new(mockService)
		router := modbilling.Router(modbilling.RouterOptions{
			Service:     svc,
			RequireUser: withUser(nil),
		})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/checkout", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		svc.AssertNotCalled(t, "CreateCheckoutSession")
	})

	t.Run("duplicate subscription", func(t *testing.T) {
		t.Parallel()

		svc := new(mockService)
		svc.On("CreateCheckoutSession", mock.Anything, user.ID, user.Email).
			Return("", billing.ErrSubscriptionAlreadyActive)

		router := modbilling.Router(modbilling.RouterOptions{
			Service:     svc,
			RequireUser: withUser(user),
		})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/checkout", nil))

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("provider failure maps to bad gateway", func(t *testing.T) {
		t.Parallel()

		svc := new(mockService)
		svc.On("CreateCheckoutSession", mock.Anything, user.ID, user.Email).
			Return("", billing.ErrProviderError)

		router := modbilling.Router(modbilling.RouterOptions{
			Service:     svc,
			RequireUser: withUser(user),
		})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/checkout", nil))

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestPortalEndpoint(t *testing.T) {
	t.Parallel()

	user := &auth.User{ID: uuid.New(), Email: "user@example.com"}

	t.Run("no subscription on record", func(t *testing.T) {
		t.Parallel()

		svc := new(mockService)
		svc.On("CreatePortalSession", mock.Anything, user.ID).
			Return("", billing.ErrSubscriptionNotFound)

		router := modbilling.Router(modbilling.RouterOptions{
			Service:     svc,
			RequireUser: withUser(user),
		})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/portal", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("returns portal URL", func(t *testing.T) {
		t.Parallel()

		svc := new(mockService)
		svc.On("CreatePortalSession", mock.Anything, user.ID).
			Return("https://portal.example.com/p_1", nil)

		router := modbilling.Router(modbilling.RouterOptions{
			Service:     svc,
			RequireUser: withUser(user),
		})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/portal", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "portal.example.com")
	})
}

func TestWebhookEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("webhook is reachable without auth", func(t *testing.T) {
		t.Parallel()

		svc := new(mockService)
		svc.On("HandleWebhook", mock.Anything, []byte(`{"type":"x"}`), "t=1,v1=sig").Return(nil)

		// RequireUser rejects everything; the webhook must still pass.
		router := modbilling.Router(modbilling.RouterOptions{
			Service:     svc,
			RequireUser: withUser(nil),
		})

		req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"type":"x"}`))
		req.Header.Set("Stripe-Signature", "t=1,v1=sig")

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("bad signature returns 400", func(t *testing.T) {
		t.Parallel()

		svc := new(mockService)
		svc.On("HandleWebhook", mock.Anything, mock.Anything, mock.Anything).
			Return(billing.ErrWebhookVerificationFailed)

		router := modbilling.Router(modbilling.RouterOptions{Service: svc})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{}`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("handling failure returns 500 for provider retry", func(t *testing.T) {
		t.Parallel()

		svc := new(mockService)
		svc.On("HandleWebhook", mock.Anything, mock.Anything, mock.Anything).
			Return(billing.ErrProviderError)

		router := modbilling.Router(modbilling.RouterOptions{Service: svc})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{}`)))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestSubscriptionEndpoint(t *testing.T) {
	t.Parallel()

	user := &auth.User{ID: uuid.New()}

	t.Run("active subscription", func(t *testing.T) {
		t.Parallel()

		svc := new(mockService)
		svc.On("GetSubscription", mock.Anything, user.ID).Return(&billing.Subscription{
			UserID: user.ID,
			Status: billing.StatusActive,
		}, nil)

		router := modbilling.Router(modbilling.RouterOptions{
			Service:     svc,
			RequireUser: withUser(user),
		})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/subscription", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"active","premium":true}`, rec.Body.String())
	})

	t.Run("no subscription yet", func(t *testing.T) {
		t.Parallel()

		svc := new(mockService)
		svc.On("GetSubscription", mock.Anything, user.ID).
			Return(nil, billing.ErrSubscriptionNotFound)

		router := modbilling.Router(modbilling.RouterOptions{
			Service:     svc,
			RequireUser: withUser(user),
		})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/subscription", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"none","premium":false}`, rec.Body.String())
	})
}
