package billing

// Config holds configuration for the billing service itself; provider
// credentials live in StripeConfig / PaddleConfig.
type Config struct {
	// Provider selects the billing provider implementation.
	Provider string `env:"BILLING_PROVIDER" envDefault:"stripe"`
	// PriceID is the provider price the premium upgrade subscribes to.
	// An empty value fails checkout with ErrPriceNotConfigured.
	PriceID string `env:"STRIPE_PRICE_ID"`
	// AppURL is the public base URL used to build checkout redirect targets.
	AppURL string `env:"APP_URL" envDefault:"http://localhost:8080"`
	// PlansPath optionally points at a YAML plan catalogue.
	PlansPath string `env:"BILLING_PLANS_PATH"`
}
