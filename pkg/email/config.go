package email

// Config holds email service configuration.
// Postmark tokens are optional so development environments can run with the
// filesystem sender instead of a live email service.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL" envDefault:"hello@smartdalle.app"`
	SupportEmail         string `env:"SUPPORT_EMAIL" envDefault:"support@smartdalle.app"`
}
