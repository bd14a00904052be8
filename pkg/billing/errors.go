package billing

import "errors"

var (
	ErrPriceNotConfigured       = errors.New("billing price ID is not configured")
	ErrPlanNotFound             = errors.New("billing plan not found")
	ErrInvalidPlanConfiguration = errors.New("invalid billing plan configuration")
	ErrFailedToLoadPlans        = errors.New("failed to load billing plans")

	ErrSubscriptionNotFound      = errors.New("subscription not found")
	ErrSubscriptionAlreadyActive = errors.New("subscription already active")

	ErrProviderError             = errors.New("billing provider error")
	ErrNoCheckoutURL             = errors.New("no checkout URL returned from provider")
	ErrNoPortalURL               = errors.New("no portal URL returned from provider")
	ErrWebhookVerificationFailed = errors.New("webhook signature verification failed")
	ErrUnknownWebhookUser        = errors.New("webhook event has no resolvable user")

	ErrMissingAPIKey              = errors.New("billing provider API key is required")
	ErrMissingWebhookSecret       = errors.New("billing provider webhook secret is required")
	ErrInvalidProviderEnvironment = errors.New("invalid billing provider environment")
	ErrUnknownProvider            = errors.New("unknown billing provider")
)
