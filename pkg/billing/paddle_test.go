package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPaddleProvider(t *testing.T) {
	t.Parallel()

	t.Run("requires API key", func(t *testing.T) {
		t.Parallel()

		_, err := NewPaddleProvider(PaddleConfig{WebhookSecret: "pdl_x"})
		assert.ErrorIs(t, err, ErrMissingAPIKey)
	})

	t.Run("requires webhook secret", func(t *testing.T) {
		t.Parallel()

		_, err := NewPaddleProvider(PaddleConfig{APIKey: "key"})
		assert.ErrorIs(t, err, ErrMissingWebhookSecret)
	})

	t.Run("rejects unknown environment", func(t *testing.T) {
		t.Parallel()

		_, err := NewPaddleProvider(PaddleConfig{
			APIKey:        "key",
			WebhookSecret: "pdl_x",
			Environment:   "staging",
		})
		assert.ErrorIs(t, err, ErrInvalidProviderEnvironment)
	})
}

func TestMapPaddleEventType(t *testing.T) {
	t.Parallel()

	cases := map[string]EventType{
		"transaction.completed":         EventCheckoutCompleted,
		"subscription.created":          EventSubscriptionCreated,
		"subscription.updated":          EventSubscriptionUpdated,
		"subscription.resumed":          EventSubscriptionUpdated,
		"subscription.canceled":         EventSubscriptionCancelled,
		"transaction.payment_succeeded": EventPaymentSucceeded,
		"transaction.payment_failed":    EventPaymentFailed,
		"address.created":               EventType("address.created"),
	}

	for paddleType, want := range cases {
		assert.Equal(t, want, mapPaddleEventType(paddleType), paddleType)
	}
}

func TestPaddleItemPriceID(t *testing.T) {
	t.Parallel()

	t.Run("nested price object", func(t *testing.T) {
		t.Parallel()

		data := map[string]any{
			"items": []any{
				map[string]any{
					"price": map[string]any{"id": "pri_123"},
				},
			},
		}
		assert.Equal(t, "pri_123", paddleItemPriceID(data))
	})

	t.Run("flat price_id field", func(t *testing.T) {
		t.Parallel()

		data := map[string]any{
			"items": []any{
				map[string]any{"price_id": "pri_456"},
			},
		}
		assert.Equal(t, "pri_456", paddleItemPriceID(data))
	})

	t.Run("empty on malformed payload", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, paddleItemPriceID(map[string]any{}))
		assert.Empty(t, paddleItemPriceID(map[string]any{"items": []any{}}))
	})
}
