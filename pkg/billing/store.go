package billing

import (
	"context"

	"github.com/google/uuid"
)

// SubscriptionStore defines the interface for subscription persistence.
// Each user has at most one subscription, so UserID serves as the primary key.
type SubscriptionStore interface {
	// Get retrieves a subscription by user ID.
	// Returns ErrSubscriptionNotFound if no subscription exists.
	Get(ctx context.Context, userID uuid.UUID) (*Subscription, error)

	// Save creates or updates a subscription, keyed by UserID.
	Save(ctx context.Context, subscription *Subscription) error
}
