package billing

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/smartdalle/smartdalle/pkg/billing"
	"github.com/smartdalle/smartdalle/pkg/httpx"
	"github.com/smartdalle/smartdalle/pkg/logger"
	"github.com/smartdalle/smartdalle/pkg/metrics"
	"github.com/smartdalle/smartdalle/svc/auth"
)

// maxWebhookBody bounds webhook payload reads. Stripe and Paddle events are
// well under this.
const maxWebhookBody = 1 << 20

// RouterOptions configures the billing module.
type RouterOptions struct {
	Service billing.Service
	Metrics *metrics.Collector
	Logger  *slog.Logger

	// RequireUser guards the user-facing endpoints. The webhook endpoint is
	// never behind it; providers authenticate with signatures instead.
	RequireUser func(http.Handler) http.Handler
}

// Router mounts the premium subscription endpoints.
//
//	POST /checkout  -> create a hosted checkout session (auth required)
//	POST /portal    -> create a customer portal session (auth required)
//	GET  /subscription -> current subscription state (auth required)
//	POST /webhook   -> provider webhook sink (signature verified)
func Router(opts RouterOptions) chi.Router {
	if opts.Service == nil {
		panic("billing module: Service is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	h := &handlers{
		svc:     opts.Service,
		metrics: opts.Metrics,
		log:     opts.Logger,
	}

	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		if opts.RequireUser != nil {
			r.Use(opts.RequireUser)
		}
		r.Post("/checkout", h.createCheckout)
		r.Post("/portal", h.createPortal)
		r.Get("/subscription", h.getSubscription)
	})

	r.Post("/webhook", h.webhook)

	return r
}

type handlers struct {
	svc     billing.Service
	metrics *metrics.Collector
	log     *slog.Logger
}

func (h *handlers) createCheckout(w http.ResponseWriter, r *http.Request) {
	user, err := auth.RequireUserFromContext(r.Context())
	if err != nil {
		httpx.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	url, err := h.svc.CreateCheckoutSession(r.Context(), user.ID, user.Email)
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrSubscriptionAlreadyActive):
			httpx.Error(w, http.StatusConflict, "subscription already active")
		case errors.Is(err, billing.ErrPriceNotConfigured):
			h.log.LogAttrs(r.Context(), slog.LevelError, "checkout misconfigured", logger.Error(err))
			httpx.Error(w, http.StatusInternalServerError, "billing is not configured")
		default:
			h.log.LogAttrs(r.Context(), slog.LevelError, "checkout session failed",
				logger.UserID(user.ID),
				logger.Error(err),
			)
			httpx.Error(w, http.StatusBadGateway, "failed to create checkout session")
		}
		return
	}

	if h.metrics != nil {
		h.metrics.RecordCheckoutSession()
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *handlers) createPortal(w http.ResponseWriter, r *http.Request) {
	user, err := auth.RequireUserFromContext(r.Context())
	if err != nil {
		httpx.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	url, err := h.svc.CreatePortalSession(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, billing.ErrSubscriptionNotFound) {
			httpx.Error(w, http.StatusNotFound, "no subscription on record")
			return
		}
		h.log.LogAttrs(r.Context(), slog.LevelError, "portal session failed",
			logger.UserID(user.ID),
			logger.Error(err),
		)
		httpx.Error(w, http.StatusBadGateway, "failed to create portal session")
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *handlers) getSubscription(w http.ResponseWriter, r *http.Request) {
	user, err := auth.RequireUserFromContext(r.Context())
	if err != nil {
		httpx.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	sub, err := h.svc.GetSubscription(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, billing.ErrSubscriptionNotFound) {
			httpx.JSON(w, http.StatusOK, map[string]any{"status": "none", "premium": false})
			return
		}
		httpx.Error(w, http.StatusInternalServerError, "failed to load subscription")
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"status":  sub.Status,
		"premium": sub.IsPremium(),
	})
}

// webhook accepts provider events. Signature verification failures return
// 400 so a misconfigured endpoint is visible in the provider dashboard;
// transient handling failures return 500 so the provider retries.
func (h *handlers) webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "failed to read payload")
		return
	}

	signature := r.Header.Get("Stripe-Signature")
	if signature == "" {
		signature = r.Header.Get("Paddle-Signature")
	}

	if err := h.svc.HandleWebhook(r.Context(), payload, signature); err != nil {
		switch {
		case errors.Is(err, billing.ErrWebhookVerificationFailed):
			h.log.LogAttrs(r.Context(), slog.LevelWarn, "webhook signature rejected", logger.Error(err))
			httpx.Error(w, http.StatusBadRequest, "invalid signature")
		case errors.Is(err, billing.ErrUnknownWebhookUser):
			h.log.LogAttrs(r.Context(), slog.LevelError, "webhook user not resolvable", logger.Error(err))
			httpx.Error(w, http.StatusBadRequest, "unknown user")
		default:
			h.log.LogAttrs(r.Context(), slog.LevelError, "webhook handling failed", logger.Error(err))
			httpx.Error(w, http.StatusInternalServerError, "webhook handling failed")
		}
		return
	}

	if h.metrics != nil {
		h.metrics.RecordWebhookEvent("received")
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"received": "true"})
}
