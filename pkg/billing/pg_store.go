package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore is a SubscriptionStore backed by Postgres.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) Get(ctx context.Context, userID uuid.UUID) (*Subscription, error) {
	const query = `
		SELECT user_id, price_id, status, provider_sub_id, provider_customer_id,
		       created_at, updated_at, cancelled_at
		FROM subscriptions
		WHERE user_id = $1`

	var sub Subscription
	err := s.pool.QueryRow(ctx, query, userID).Scan(
		&sub.UserID,
		&sub.PriceID,
		&sub.Status,
		&sub.ProviderSubID,
		&sub.ProviderCustomerID,
		&sub.CreatedAt,
		&sub.UpdatedAt,
		&sub.CancelledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

// Save upserts the subscription keyed by user ID. The UPDATE branch keeps
// created_at from the original row.
func (s *PGStore) Save(ctx context.Context, subscription *Subscription) error {
	const query = `
		INSERT INTO subscriptions
			(user_id, price_id, status, provider_sub_id, provider_customer_id,
			 created_at, updated_at, cancelled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			price_id = EXCLUDED.price_id,
			status = EXCLUDED.status,
			provider_sub_id = EXCLUDED.provider_sub_id,
			provider_customer_id = EXCLUDED.provider_customer_id,
			updated_at = EXCLUDED.updated_at,
			cancelled_at = EXCLUDED.cancelled_at`

	now := time.Now().UTC()
	if subscription.CreatedAt.IsZero() {
		subscription.CreatedAt = now
	}
	subscription.UpdatedAt = now

	_, err := s.pool.Exec(ctx, query,
		subscription.UserID,
		subscription.PriceID,
		subscription.Status,
		subscription.ProviderSubID,
		subscription.ProviderCustomerID,
		subscription.CreatedAt,
		subscription.UpdatedAt,
		subscription.CancelledAt,
	)
	return err
}
