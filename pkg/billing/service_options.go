package billing

import (
	"log/slog"

	"github.com/smartdalle/smartdalle/pkg/email"
)

// ServiceOption configures a Service instance.
type ServiceOption func(*service)

// WithLogger sets the logger used by the service.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithEmailSender enables the best-effort premium activation email.
func WithEmailSender(sender email.EmailSender) ServiceOption {
	return func(s *service) {
		s.mailer = sender
	}
}

// WithPlansSource sets the plan catalogue source, taking precedence over
// Config.PlansPath. The catalogue is loaded during NewService.
func WithPlansSource(src PlansListSource) ServiceOption {
	return func(s *service) {
		if src != nil {
			s.plansSource = src
		}
	}
}
