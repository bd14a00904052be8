package billing

import (
	"time"

	"github.com/google/uuid"
)

// Subscription represents a user's premium subscription.
// Each user has at most one subscription; UserID is the primary key.
// The billing provider is the source of truth for entitlement, so this record
// is a cached view updated from webhook events.
type Subscription struct {
	UserID             uuid.UUID
	PriceID            string
	Status             SubscriptionStatus
	ProviderSubID      string // provider's subscription ID (empty until checkout completes)
	ProviderCustomerID string // provider's customer ID (cus_xxx, ctm_xxx)
	CreatedAt          time.Time
	UpdatedAt          time.Time
	CancelledAt        *time.Time // set when the subscription is cancelled
}

// IsPremium reports whether the subscription currently grants premium access.
func (s *Subscription) IsPremium() bool {
	return s.Status == StatusActive || s.Status == StatusTrialing
}

func (s *Subscription) IsActive() bool {
	return s.Status == StatusActive
}

func (s *Subscription) IsPending() bool {
	return s.Status == StatusPending
}

func (s *Subscription) IsCancelled() bool {
	return s.Status == StatusCancelled
}
