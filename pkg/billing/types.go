package billing

import "time"

// SubscriptionStatus represents the current state of a subscription.
// The local record is eventually consistent with the billing provider:
// transitions are driven exclusively by provider webhooks, except for the
// pending placeholder written when a checkout session is created.
type SubscriptionStatus string

const (
	StatusPending   SubscriptionStatus = "pending"
	StatusTrialing  SubscriptionStatus = "trialing"
	StatusActive    SubscriptionStatus = "active"
	StatusPastDue   SubscriptionStatus = "past_due"
	StatusCancelled SubscriptionStatus = "cancelled"
	StatusExpired   SubscriptionStatus = "expired"
)

// Feature represents a plan-specific capability that can be enabled/disabled.
type Feature string

const (
	FeaturePremiumRecipes   Feature = "premium_recipes"
	FeatureAICoach          Feature = "ai_coach"
	FeatureUnlimitedHistory Feature = "unlimited_history"
	FeatureExport           Feature = "export"
)

// Money represents a monetary amount in the smallest currency unit.
// $9.99 USD is Amount: 999, Currency: "USD".
type Money struct {
	Amount   int64  `yaml:"amount"`
	Currency string `yaml:"currency"`
}

// BillingInterval represents the billing frequency for a plan.
type BillingInterval string

const (
	BillingIntervalMonthly BillingInterval = "monthly"
	BillingIntervalAnnual  BillingInterval = "annual"
)

// CheckoutRequest contains data needed to create a hosted checkout session.
type CheckoutRequest struct {
	PriceID    string // provider's price identifier
	UserID     string // internal user ID, embedded as metadata for webhook correlation
	Email      string // pre-filled billing email
	SuccessURL string // redirect after successful payment
	CancelURL  string // redirect if the customer backs out
}

// CheckoutSession represents a hosted checkout session.
// Its lifecycle is fully owned by the provider; only the redirect URL and the
// session identifier are read back.
type CheckoutSession struct {
	URL       string
	SessionID string
	ExpiresAt time.Time
}

// PortalRequest contains data needed to create a customer portal session.
type PortalRequest struct {
	CustomerID     string // provider's customer identifier (cus_xxx, ctm_xxx)
	SubscriptionID string // provider's subscription identifier
	ReturnURL      string // where the portal sends the user back
}

// PortalSession represents a pre-authenticated customer portal session.
type PortalSession struct {
	URL       string
	ExpiresAt time.Time
}

// EventType represents the normalized billing event type.
// Each provider implementation maps its own event names to these.
type EventType string

const (
	EventCheckoutCompleted     EventType = "checkout_completed"
	EventSubscriptionCreated   EventType = "subscription_created"
	EventSubscriptionUpdated   EventType = "subscription_updated"
	EventSubscriptionCancelled EventType = "subscription_cancelled"

	EventPaymentSucceeded EventType = "payment_succeeded"
	EventPaymentFailed    EventType = "payment_failed"
)

// WebhookEvent represents a normalized webhook event from the billing
// provider.
type WebhookEvent struct {
	Type           EventType      // normalized event type
	ProviderEvent  string         // original provider event name
	SubscriptionID string         // provider's subscription ID
	CustomerID     string         // provider's customer ID
	UserID         string         // internal user ID recovered from metadata
	Email          string         // customer email, when the provider includes it
	Status         string         // provider's subscription status string
	PriceID        string         // the price/plan the customer subscribed to
	Raw            map[string]any // full provider payload
}
