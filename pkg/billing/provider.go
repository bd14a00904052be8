package billing

import "context"

// BillingProvider defines the minimal interface for payment provider
// integrations. The provider handles all payment complexity through hosted
// checkouts and customer portals; the application never touches card data.
//
// Implementations use the official provider SDKs and absorb provider-specific
// quirks internally (Stripe's metadata fields, Paddle's custom data).
type BillingProvider interface {
	// CreateCheckoutSession creates a hosted checkout session.
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)

	// CreatePortalSession returns a temporary link to the customer portal
	// where users can update payment methods, cancel, or change plans.
	CreatePortalSession(ctx context.Context, req PortalRequest) (*PortalSession, error)

	// ParseWebhook validates the signature and normalizes incoming webhook
	// data. Signature validation is mandatory to prevent spoofed entitlement
	// changes.
	ParseWebhook(ctx context.Context, payload []byte, signature string) (*WebhookEvent, error)
}
