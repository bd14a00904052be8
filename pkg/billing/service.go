package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smartdalle/smartdalle/pkg/email"
	"github.com/smartdalle/smartdalle/pkg/logger"
)

// Service defines the public interface for the premium entitlement workflow.
type Service interface {
	// CreateCheckoutSession builds a subscription-mode checkout for the user
	// and returns the provider-issued redirect URL. The user's ID travels as
	// opaque metadata so webhook events can be correlated back.
	CreateCheckoutSession(ctx context.Context, userID uuid.UUID, userEmail string) (string, error)

	// CreatePortalSession returns a customer-portal URL scoped to the user's
	// existing provider customer record.
	CreatePortalSession(ctx context.Context, userID uuid.UUID) (string, error)

	// HandleWebhook verifies and applies a provider webhook event to the
	// local subscription record.
	HandleWebhook(ctx context.Context, payload []byte, signature string) error

	// GetSubscription returns the locally cached subscription view.
	GetSubscription(ctx context.Context, userID uuid.UUID) (*Subscription, error)

	// HasPremium reports whether the user currently has premium access.
	// Returns false on any error to fail closed.
	HasPremium(ctx context.Context, userID uuid.UUID) bool

	// HasFeature reports whether the user's plan includes a capability.
	// Requires a plan catalogue; returns false on any error.
	HasFeature(ctx context.Context, userID uuid.UUID, feature Feature) bool
}

type service struct {
	cfg         Config
	provider    BillingProvider
	store       SubscriptionStore
	plans       map[string]Plan
	plansSource PlansListSource
	mailer      email.EmailSender
	log         *slog.Logger
}

// NewService creates the entitlement workflow service.
// Panics if provider or store is nil to fail fast during initialization.
// An unset price ID is tolerated here and rejected per-checkout, so the rest
// of the application still works without billing configuration.
func NewService(ctx context.Context, cfg Config, provider BillingProvider, store SubscriptionStore, opts ...ServiceOption) (Service, error) {
	if provider == nil {
		panic("billing: BillingProvider is required")
	}
	if store == nil {
		panic("billing: SubscriptionStore is required")
	}

	s := &service{
		cfg:      cfg,
		provider: provider,
		store:    store,
		log:      slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.plansSource == nil && cfg.PlansPath != "" {
		s.plansSource = NewYAMLSource(cfg.PlansPath)
	}
	if s.plansSource != nil {
		plans, err := s.plansSource.Load(ctx)
		if err != nil {
			return nil, err
		}
		s.plans = plans
	}

	if cfg.PriceID == "" {
		s.log.WarnContext(ctx, "billing price ID not configured, checkout is disabled")
	}

	return s, nil
}

func (s *service) CreateCheckoutSession(ctx context.Context, userID uuid.UUID, userEmail string) (string, error) {
	if s.cfg.PriceID == "" {
		return "", ErrPriceNotConfigured
	}

	// Prevent a second checkout while premium access is already granted.
	if sub, err := s.store.Get(ctx, userID); err == nil {
		if sub.IsPremium() {
			return "", ErrSubscriptionAlreadyActive
		}
	} else if !errors.Is(err, ErrSubscriptionNotFound) {
		return "", err
	}

	session, err := s.provider.CreateCheckoutSession(ctx, CheckoutRequest{
		PriceID:    s.cfg.PriceID,
		UserID:     userID.String(),
		Email:      userEmail,
		SuccessURL: s.redirectURL("success"),
		CancelURL:  s.redirectURL("cancelled"),
	})
	if err != nil {
		return "", err
	}
	if session.URL == "" {
		return "", ErrNoCheckoutURL
	}

	// Record the pending state locally. The checkout already exists on the
	// provider, so a failed write here must not lose the redirect URL.
	now := time.Now().UTC()
	pending := &Subscription{
		UserID:    userID,
		PriceID:   s.cfg.PriceID,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Save(ctx, pending); err != nil {
		s.log.LogAttrs(ctx, slog.LevelWarn, "failed to record pending subscription",
			logger.UserID(userID),
			logger.Error(err),
		)
	}

	return session.URL, nil
}

func (s *service) CreatePortalSession(ctx context.Context, userID uuid.UUID) (string, error) {
	sub, err := s.store.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	if sub.ProviderCustomerID == "" {
		return "", fmt.Errorf("%w: no provider customer on record", ErrSubscriptionNotFound)
	}

	portal, err := s.provider.CreatePortalSession(ctx, PortalRequest{
		CustomerID:     sub.ProviderCustomerID,
		SubscriptionID: sub.ProviderSubID,
		ReturnURL:      s.cfg.AppURL,
	})
	if err != nil {
		return "", err
	}
	if portal.URL == "" {
		return "", ErrNoPortalURL
	}

	return portal.URL, nil
}

// HandleWebhook applies the provider-driven state transitions:
// pending -> active (checkout completed), active -> past_due (payment failed),
// past_due -> active (payment recovered), any -> cancelled.
func (s *service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.provider.ParseWebhook(ctx, payload, signature)
	if err != nil {
		return err
	}

	userID, err := uuid.Parse(event.UserID)
	if err != nil {
		return errors.Join(ErrUnknownWebhookUser,
			fmt.Errorf("event %s: %w", event.ProviderEvent, err))
	}

	switch event.Type {
	case EventCheckoutCompleted, EventSubscriptionCreated:
		return s.activate(ctx, userID, event)

	case EventSubscriptionUpdated:
		sub, err := s.store.Get(ctx, userID)
		if err != nil {
			if errors.Is(err, ErrSubscriptionNotFound) {
				// Provider events can arrive out of order; treat an update
				// for an unknown subscription as creation.
				return s.activate(ctx, userID, event)
			}
			return err
		}
		sub.Status = mapProviderStatus(event.Status)
		if event.PriceID != "" {
			sub.PriceID = event.PriceID
		}
		if event.SubscriptionID != "" {
			sub.ProviderSubID = event.SubscriptionID
		}
		return s.store.Save(ctx, sub)

	case EventSubscriptionCancelled:
		sub, err := s.store.Get(ctx, userID)
		if err != nil {
			return fmt.Errorf("cancel event for user %s: %w", userID, err)
		}
		now := time.Now().UTC()
		sub.Status = StatusCancelled
		sub.CancelledAt = &now
		return s.store.Save(ctx, sub)

	case EventPaymentFailed:
		sub, err := s.store.Get(ctx, userID)
		if err != nil {
			if errors.Is(err, ErrSubscriptionNotFound) {
				return nil
			}
			return err
		}
		sub.Status = StatusPastDue
		return s.store.Save(ctx, sub)

	case EventPaymentSucceeded:
		sub, err := s.store.Get(ctx, userID)
		if err != nil {
			if errors.Is(err, ErrSubscriptionNotFound) {
				return nil
			}
			return err
		}
		if sub.Status == StatusPastDue {
			sub.Status = StatusActive
			return s.store.Save(ctx, sub)
		}
		return nil

	default:
		s.log.LogAttrs(ctx, slog.LevelDebug, "ignoring unhandled billing event",
			logger.EventType(event.ProviderEvent),
		)
		return nil
	}
}

func (s *service) activate(ctx context.Context, userID uuid.UUID, event *WebhookEvent) error {
	now := time.Now().UTC()

	sub, err := s.store.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrSubscriptionNotFound) {
			return err
		}
		sub = &Subscription{UserID: userID, CreatedAt: now}
	}

	wasPremium := sub.IsPremium()

	sub.Status = mapProviderStatus(event.Status)
	sub.ProviderSubID = event.SubscriptionID
	sub.ProviderCustomerID = event.CustomerID
	if event.PriceID != "" {
		sub.PriceID = event.PriceID
	} else if sub.PriceID == "" {
		sub.PriceID = s.cfg.PriceID
	}
	sub.UpdatedAt = now

	if err := s.store.Save(ctx, sub); err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}

	if !wasPremium && sub.IsPremium() {
		s.sendActivationEmail(ctx, userID, event.Email)
	}
	return nil
}

// sendActivationEmail is best effort: entitlement is already persisted and a
// mail failure must not make the provider retry the webhook.
func (s *service) sendActivationEmail(ctx context.Context, userID uuid.UUID, addr string) {
	if s.mailer == nil || addr == "" {
		return
	}
	err := s.mailer.SendEmail(ctx, email.SendEmailParams{
		SendTo:   addr,
		Subject:  "Welcome to SmartDalle Premium",
		BodyHTML: activationEmailBody,
		Tag:      "premium-activated",
	})
	if err != nil {
		s.log.LogAttrs(ctx, slog.LevelWarn, "failed to send activation email",
			logger.UserID(userID),
			logger.Error(err),
		)
	}
}

func (s *service) GetSubscription(ctx context.Context, userID uuid.UUID) (*Subscription, error) {
	return s.store.Get(ctx, userID)
}

func (s *service) HasPremium(ctx context.Context, userID uuid.UUID) bool {
	sub, err := s.store.Get(ctx, userID)
	if err != nil {
		return false
	}
	return sub.IsPremium()
}

func (s *service) HasFeature(ctx context.Context, userID uuid.UUID, feature Feature) bool {
	sub, err := s.store.Get(ctx, userID)
	if err != nil || !sub.IsPremium() {
		return false
	}
	plan, ok := s.plans[sub.PriceID]
	if !ok {
		return false
	}
	return plan.HasFeature(feature)
}

func (s *service) redirectURL(marker string) string {
	return fmt.Sprintf("%s?payment=%s", strings.TrimSuffix(s.cfg.AppURL, "/"), marker)
}

// mapProviderStatus maps a provider subscription status string to the local
// status. Unknown statuses from a creation/update event default to active
// because the provider only emits them for subscriptions it considers live.
func mapProviderStatus(status string) SubscriptionStatus {
	switch strings.ToLower(status) {
	case "trialing":
		return StatusTrialing
	case "past_due":
		return StatusPastDue
	case "canceled", "cancelled":
		return StatusCancelled
	case "expired":
		return StatusExpired
	default:
		return StatusActive
	}
}

const activationEmailBody = `<h1>You're premium now 🎉</h1>
<p>Thanks for upgrading! Premium recipes, unlimited history and the AI coach
are unlocked on your account.</p>
<p>You can manage your subscription any time from your profile page.</p>`
