package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector aggregates the application's Prometheus metrics. One instance is
// created at startup and shared between the HTTP layer and the services.
type Collector struct {
	registry *prometheus.Registry

	requestDuration  *prometheus.HistogramVec
	checkoutSessions prometheus.Counter
	webhookEvents    *prometheus.CounterVec
	weightLogs       prometheus.Counter
	badgesUnlocked   *prometheus.CounterVec
}

// NewCollector creates a collector with its own registry, so tests can run
// multiple instances without duplicate registration panics.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "smartdalle_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status code.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
		checkoutSessions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "smartdalle_checkout_sessions_total",
			Help: "Checkout sessions created.",
		}),
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smartdalle_webhook_events_total",
			Help: "Billing webhook events received, by normalized event type.",
		}, []string{"event_type"}),
		weightLogs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "smartdalle_weight_logs_total",
			Help: "Weight log entries recorded.",
		}),
		badgesUnlocked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smartdalle_badges_unlocked_total",
			Help: "Badges unlocked, by badge key.",
		}, []string{"badge"}),
	}

	registry.MustRegister(
		c.requestDuration,
		c.checkoutSessions,
		c.webhookEvents,
		c.weightLogs,
		c.badgesUnlocked,
	)

	return c
}

func (c *Collector) RecordRequest(route string, status int, duration time.Duration) {
	c.requestDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(duration.Seconds())
}

func (c *Collector) RecordCheckoutSession() {
	c.checkoutSessions.Inc()
}

func (c *Collector) RecordWebhookEvent(eventType string) {
	c.webhookEvents.WithLabelValues(eventType).Inc()
}

func (c *Collector) RecordWeightLog() {
	c.weightLogs.Inc()
}

func (c *Collector) RecordBadgeUnlocked(key string) {
	c.badgesUnlocked.WithLabelValues(key).Inc()
}

// Handler returns the Prometheus scrape endpoint for this collector's
// registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
