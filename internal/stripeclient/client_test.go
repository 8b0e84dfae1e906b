package stripeclient_test

import (
	"context"
	"testing"

	"payment-webhook-service/internal/stripeclient"

	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrievePaymentIntent(t *testing.T) {
	defer gock.Off()

	gock.New("https://api.stripe.com").
		Get("/v1/payment_intents/pi_1").
		MatchHeader("Authorization", "Bearer sk_test_123").
		Reply(200).
		JSON(map[string]any{
			"id":             "pi_1",
			"status":         "succeeded",
			"amount":         1000,
			"currency":       "eur",
			"customer":       "cus_1",
			"payment_method": "pm_1",
		})

	client := stripeclient.New("", "sk_test_123")

	intent, err := client.RetrievePaymentIntent(context.Background(), "pi_1")

	require.NoError(t, err)
	assert.Equal(t, "pi_1", intent.ID)
	assert.Equal(t, "succeeded", intent.Status)
	assert.Equal(t, int64(1000), intent.Amount)
	assert.Equal(t, "pm_1", intent.PaymentMethod)
	assert.True(t, gock.IsDone())
}

func TestRetrievePaymentIntent_NotFound(t *testing.T) {
	defer gock.Off()

	gock.New("https://api.stripe.com").
		Get("/v1/payment_intents/pi_missing").
		Reply(404).
		JSON(map[string]any{"error": map[string]any{"type": "invalid_request_error"}})

	client := stripeclient.New("", "sk_test_123")

	_, err := client.RetrievePaymentIntent(context.Background(), "pi_missing")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "error response")
}

func TestRetrievePaymentIntent_BadBody(t *testing.T) {
	defer gock.Off()

	gock.New("https://api.stripe.com").
		Get("/v1/payment_intents/pi_1").
		Reply(200).
		BodyString("not json")

	client := stripeclient.New("", "sk_test_123")

	_, err := client.RetrievePaymentIntent(context.Background(), "pi_1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding payment intent response")
}
