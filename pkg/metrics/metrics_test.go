package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartdalle/smartdalle/pkg/metrics"
)

func scrape(t *testing.T, c *metrics.Collector) string {
	t.Helper()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestCollectorCounters(t *testing.T) {
	t.Parallel()

	c := metrics.NewCollector()
	c.RecordCheckoutSession()
	c.RecordWebhookEvent("checkout_completed")
	c.RecordWebhookEvent("checkout_completed")
	c.RecordWeightLog()
	c.RecordBadgeUnlocked("first_log")
	c.RecordRequest("/weight", http.StatusOK, 25*time.Millisecond)

	body := scrape(t, c)
	assert.Contains(t, body, "smartdalle_checkout_sessions_total 1")
	assert.Contains(t, body, `smartdalle_webhook_events_total{event_type="checkout_completed"} 2`)
	assert.Contains(t, body, "smartdalle_weight_logs_total 1")
	assert.Contains(t, body, `smartdalle_badges_unlocked_total{badge="first_log"} 1`)
	assert.Contains(t, body, "smartdalle_http_request_duration_seconds_count")
}

func TestCollectorsAreIndependent(t *testing.T) {
	t.Parallel()

	// Two collectors must not clash on registration.
	a := metrics.NewCollector()
	b := metrics.NewCollector()
	a.RecordWeightLog()

	assert.Contains(t, scrape(t, a), "smartdalle_weight_logs_total 1")
	assert.Contains(t, scrape(t, b), "smartdalle_weight_logs_total 0")
}

func TestMiddlewareRecordsRoutePattern(t *testing.T) {
	t.Parallel()

	c := metrics.NewCollector()

	r := chi.NewRouter()
	r.Use(c.Middleware)
	r.Get("/history/{userID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history/123", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Contains(t, scrape(t, c), `route="/history/{userID}"`)
}
