package billing

import (
	"context"
	"errors"
	"strings"
	"time"

	stripe "github.com/stripe/stripe-go/v82"
	stripeclient "github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

// StripeConfig holds configuration for the Stripe billing provider.
type StripeConfig struct {
	SecretKey     string `env:"STRIPE_SECRET_KEY,required"`
	WebhookSecret string `env:"STRIPE_WEBHOOK_SECRET,required"`
}

// StripeProvider implements BillingProvider for Stripe.
type StripeProvider struct {
	client        *stripeclient.API
	webhookSecret string
}

// NewStripeProvider creates a new Stripe billing provider.
// The SDK client is stateless and safe to share across requests, so one
// provider instance serves the whole process.
func NewStripeProvider(cfg StripeConfig) (*StripeProvider, error) {
	if cfg.SecretKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.WebhookSecret == "" {
		return nil, ErrMissingWebhookSecret
	}

	api := &stripeclient.API{}
	api.Init(cfg.SecretKey, nil)

	return &StripeProvider{
		client:        api,
		webhookSecret: cfg.WebhookSecret,
	}, nil
}

// CreateCheckoutSession creates a subscription-mode hosted checkout.
// The internal user ID is attached to both the session and the subscription
// it produces, so every later webhook can be correlated without lookups.
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if req.PriceID == "" {
		return nil, ErrPriceNotConfigured
	}
	if req.UserID == "" {
		return nil, errors.New("user ID is required")
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Price:    stripe.String(req.PriceID),
			Quantity: stripe.Int64(1),
		}},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{"user_id": req.UserID},
		},
	}
	params.Context = ctx
	params.AddMetadata("user_id", req.UserID)
	if req.Email != "" {
		params.CustomerEmail = stripe.String(req.Email)
	}

	session, err := p.client.CheckoutSessions.New(params)
	if err != nil {
		return nil, errors.Join(ErrProviderError, err)
	}
	if session.URL == "" {
		return nil, ErrNoCheckoutURL
	}

	return &CheckoutSession{
		URL:       session.URL,
		SessionID: session.ID,
		ExpiresAt: time.Unix(session.ExpiresAt, 0),
	}, nil
}

// CreatePortalSession returns a link to Stripe's billing portal.
func (p *StripeProvider) CreatePortalSession(ctx context.Context, req PortalRequest) (*PortalSession, error) {
	if req.CustomerID == "" {
		return nil, errors.New("provider customer ID is required")
	}

	params := &stripe.BillingPortalSessionParams{
		Customer: stripe.String(req.CustomerID),
	}
	params.Context = ctx
	if req.ReturnURL != "" {
		params.ReturnURL = stripe.String(req.ReturnURL)
	}

	session, err := p.client.BillingPortalSessions.New(params)
	if err != nil {
		return nil, errors.Join(ErrProviderError, err)
	}
	if session.URL == "" {
		return nil, ErrNoPortalURL
	}

	// Portal links are single-use and short-lived on Stripe's side.
	return &PortalSession{
		URL:       session.URL,
		ExpiresAt: time.Now().Add(1 * time.Hour),
	}, nil
}

// ParseWebhook verifies the Stripe-Signature header and normalizes the event.
func (p *StripeProvider) ParseWebhook(ctx context.Context, payload []byte, signature string) (*WebhookEvent, error) {
	stripeEvent, err := webhook.ConstructEvent(payload, signature, p.webhookSecret)
	if err != nil {
		return nil, errors.Join(ErrWebhookVerificationFailed, err)
	}

	obj := stripeEvent.Data.Object
	event := &WebhookEvent{
		Type:          mapStripeEventType(string(stripeEvent.Type)),
		ProviderEvent: string(stripeEvent.Type),
		Raw:           obj,
	}

	switch {
	case stripeEvent.Type == "checkout.session.completed":
		event.SubscriptionID = strField(obj, "subscription")
		event.CustomerID = strField(obj, "customer")
		event.UserID = metadataUserID(obj)
		event.Status = "active"
		if details, ok := obj["customer_details"].(map[string]any); ok {
			event.Email = strField(details, "email")
		}
		if event.Email == "" {
			event.Email = strField(obj, "customer_email")
		}

	case strings.HasPrefix(string(stripeEvent.Type), "customer.subscription."):
		event.SubscriptionID = strField(obj, "id")
		event.CustomerID = strField(obj, "customer")
		event.UserID = metadataUserID(obj)
		event.Status = strField(obj, "status")
		event.PriceID = subscriptionPriceID(obj)

	case strings.HasPrefix(string(stripeEvent.Type), "invoice."):
		event.CustomerID = strField(obj, "customer")
		event.SubscriptionID = strField(obj, "subscription")
		event.Email = strField(obj, "customer_email")
		// Invoices carry subscription metadata under subscription_details.
		if details, ok := obj["subscription_details"].(map[string]any); ok {
			if meta, ok := details["metadata"].(map[string]any); ok {
				event.UserID = strField(meta, "user_id")
			}
		}
		if event.UserID == "" {
			event.UserID = metadataUserID(obj)
		}
	}

	return event, nil
}

// mapStripeEventType maps Stripe event names to normalized event types.
func mapStripeEventType(stripeType string) EventType {
	switch stripeType {
	case "checkout.session.completed":
		return EventCheckoutCompleted
	case "customer.subscription.created":
		return EventSubscriptionCreated
	case "customer.subscription.updated":
		return EventSubscriptionUpdated
	case "customer.subscription.deleted":
		return EventSubscriptionCancelled
	case "invoice.payment_succeeded", "invoice.paid":
		return EventPaymentSucceeded
	case "invoice.payment_failed":
		return EventPaymentFailed
	default:
		// Pass unmapped events through; the service ignores them.
		return EventType(stripeType)
	}
}

func strField(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

func metadataUserID(m map[string]any) string {
	meta, ok := m["metadata"].(map[string]any)
	if !ok {
		return ""
	}
	return strField(meta, "user_id")
}

func subscriptionPriceID(obj map[string]any) string {
	items, ok := obj["items"].(map[string]any)
	if !ok {
		return ""
	}
	data, ok := items["data"].([]any)
	if !ok || len(data) == 0 {
		return ""
	}
	item, ok := data[0].(map[string]any)
	if !ok {
		return ""
	}
	price, ok := item["price"].(map[string]any)
	if !ok {
		return ""
	}
	return strField(price, "id")
}
