package billing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStripeProvider(t *testing.T) {
	t.Parallel()

	t.Run("requires secret key", func(t *testing.T) {
		t.Parallel()

		_, err := NewStripeProvider(StripeConfig{WebhookSecret: "whsec_x"})
		assert.ErrorIs(t, err, ErrMissingAPIKey)
	})

	t.Run("requires webhook secret", func(t *testing.T) {
		t.Parallel()

		_, err := NewStripeProvider(StripeConfig{SecretKey: "sk_test_x"})
		assert.ErrorIs(t, err, ErrMissingWebhookSecret)
	})
}

func TestStripeParseWebhookRejectsBadSignature(t *testing.T) {
	t.Parallel()

	provider, err := NewStripeProvider(StripeConfig{
		SecretKey:     "sk_test_x",
		WebhookSecret: "whsec_secret",
	})
	require.NoError(t, err)

	payload := []byte(`{"type":"checkout.session.completed","data":{"object":{}}}`)

	_, err = provider.ParseWebhook(context.Background(), payload, "t=123,v1=deadbeef")
	assert.ErrorIs(t, err, ErrWebhookVerificationFailed)
}

func TestMapStripeEventType(t *testing.T) {
	t.Parallel()

	cases := map[string]EventType{
		"checkout.session.completed":    EventCheckoutCompleted,
		"customer.subscription.created": EventSubscriptionCreated,
		"customer.subscription.updated": EventSubscriptionUpdated,
		"customer.subscription.deleted": EventSubscriptionCancelled,
		"invoice.payment_succeeded":     EventPaymentSucceeded,
		"invoice.paid":                  EventPaymentSucceeded,
		"invoice.payment_failed":        EventPaymentFailed,
		"charge.refunded":               EventType("charge.refunded"),
	}

	for stripeType, want := range cases {
		assert.Equal(t, want, mapStripeEventType(stripeType), stripeType)
	}
}

func TestSubscriptionPriceID(t *testing.T) {
	t.Parallel()

	t.Run("extracts first item price", func(t *testing.T) {
		t.Parallel()

		obj := map[string]any{
			"items": map[string]any{
				"data": []any{
					map[string]any{
						"price": map[string]any{"id": "price_123"},
					},
				},
			},
		}
		assert.Equal(t, "price_123", subscriptionPriceID(obj))
	})

	t.Run("empty on malformed payload", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, subscriptionPriceID(map[string]any{}))
		assert.Empty(t, subscriptionPriceID(map[string]any{"items": "nope"}))
		assert.Empty(t, subscriptionPriceID(map[string]any{
			"items": map[string]any{"data": []any{}},
		}))
	})
}

func TestMetadataUserID(t *testing.T) {
	t.Parallel()

	obj := map[string]any{
		"metadata": map[string]any{"user_id": "u-1"},
	}
	assert.Equal(t, "u-1", metadataUserID(obj))
	assert.Empty(t, metadataUserID(map[string]any{}))
}
