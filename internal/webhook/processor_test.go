package webhook_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"payment-webhook-service/internal/stripe"
	"payment-webhook-service/internal/webhook"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_test_secret"

func signedHeader(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(ts.Unix(), 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// capturingHandler records every dispatched payload and optionally fails.
type capturingHandler struct {
	checkouts []stripe.CheckoutSessionEventData
	succeeded []stripe.PaymentIntentEventData
	failed    []stripe.PaymentIntentEventData
	refunded  []stripe.ChargeEventData
	err       error
}

func (h *capturingHandler) HandleCheckoutSessionCompleted(_ context.Context, data stripe.CheckoutSessionEventData) error {
	h.checkouts = append(h.checkouts, data)
	return h.err
}

func (h *capturingHandler) HandlePaymentIntentSucceeded(_ context.Context, data stripe.PaymentIntentEventData) error {
	h.succeeded = append(h.succeeded, data)
	return h.err
}

func (h *capturingHandler) HandlePaymentFailed(_ context.Context, data stripe.PaymentIntentEventData) error {
	h.failed = append(h.failed, data)
	return h.err
}

func (h *capturingHandler) HandleChargeRefunded(_ context.Context, data stripe.ChargeEventData) error {
	h.refunded = append(h.refunded, data)
	return h.err
}

func (h *capturingHandler) totalCalls() int {
	return len(h.checkouts) + len(h.succeeded) + len(h.failed) + len(h.refunded)
}

func newTestProcessor(handler webhook.EventHandler) *webhook.Processor {
	return webhook.NewProcessor(testSecret, 0, handler, testLogger())
}

const paymentIntentSucceededBody = `{
	"id": "evt_1",
	"api_version": "2020-08-27",
	"type": "payment_intent.succeeded",
	"data": {
		"object": {
			"id": "pi_1",
			"amount": 1000,
			"amount_received": 1000,
			"currency": "eur",
			"status": "succeeded",
			"payment_method_types": ["card"],
			"confirmation_method": "automatic",
			"created": 1700000000
		}
	}
}`

const chargeRefundedBody = `{
	"id": "evt_2",
	"api_version": "2020-08-27",
	"type": "charge.refunded",
	"data": {
		"object": {
			"id": "ch_1",
			"object": "charge",
			"amount": 500,
			"amount_refunded": 500,
			"currency": "eur",
			"status": "succeeded",
			"created": 1700000000
		}
	}
}`

const transferReversedBody = `{
	"id": "evt_3",
	"api_version": "2020-08-27",
	"type": "transfer.reversed",
	"data": {
		"object": {
			"id": "tr_1",
			"object": "transfer",
			"amount": 1000,
			"amount_reversed": 1000,
			"created": 1700000000,
			"currency": "eur",
			"livemode": false,
			"metadata": {},
			"reversals": {"object": "list"},
			"reversed": true
		}
	}
}`

func TestProcess_DispatchesPaymentIntentSucceeded(t *testing.T) {
	handler := &capturingHandler{}
	processor := newTestProcessor(handler)

	payload := []byte(paymentIntentSucceededBody)
	err := processor.Process(context.Background(), payload, signedHeader(payload, testSecret, time.Now()))

	require.NoError(t, err)
	require.Len(t, handler.succeeded, 1)
	assert.Equal(t, 1, handler.totalCalls())
	assert.Equal(t, "pi_1", handler.succeeded[0].Object.ID)
	assert.Equal(t, int64(1000), handler.succeeded[0].Object.Amount)
}

func TestProcess_IgnoresUnknownEventType(t *testing.T) {
	handler := &capturingHandler{}
	processor := newTestProcessor(handler)

	payload := []byte(`{"id":"evt_4","api_version":"2020-08-27","type":"invoice.paid","data":{"object":{}}}`)
	err := processor.Process(context.Background(), payload, signedHeader(payload, testSecret, time.Now()))

	require.NoError(t, err)
	assert.Zero(t, handler.totalCalls())
}

func TestProcess_RejectsBrokenKnownType(t *testing.T) {
	handler := &capturingHandler{}
	processor := newTestProcessor(handler)

	// amount removed from an otherwise valid payment_intent.succeeded
	payload := []byte(`{
		"id": "evt_5",
		"api_version": "2020-08-27",
		"type": "payment_intent.succeeded",
		"data": {
			"object": {
				"id": "pi_1",
				"amount_received": 1000,
				"currency": "eur",
				"status": "succeeded",
				"payment_method_types": ["card"],
				"confirmation_method": "automatic",
				"created": 1700000000
			}
		}
	}`)
	err := processor.Process(context.Background(), payload, signedHeader(payload, testSecret, time.Now()))

	var violation *stripe.SchemaViolationError
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, stripe.EventTypePaymentIntentSucceeded, violation.EventType)
	assert.Zero(t, handler.totalCalls())
}

func TestProcess_RejectsBadSignature(t *testing.T) {
	handler := &capturingHandler{}
	processor := newTestProcessor(handler)

	payload := []byte(paymentIntentSucceededBody)
	header := signedHeader(payload, testSecret, time.Now())

	// flip the last hex digit of the v1 value
	altered := []byte(header)
	if altered[len(altered)-1] == '0' {
		altered[len(altered)-1] = '1'
	} else {
		altered[len(altered)-1] = '0'
	}

	err := processor.Process(context.Background(), payload, string(altered))

	assert.ErrorIs(t, err, stripe.ErrSignatureInvalid)
	assert.Zero(t, handler.totalCalls())
}

func TestProcess_RejectsStaleTimestamp(t *testing.T) {
	handler := &capturingHandler{}
	processor := webhook.NewProcessor(testSecret, 300*time.Second, handler, testLogger())

	payload := []byte(paymentIntentSucceededBody)
	header := signedHeader(payload, testSecret, time.Now().Add(-301*time.Second))

	err := processor.Process(context.Background(), payload, header)

	assert.ErrorIs(t, err, stripe.ErrTimestampOutOfTolerance)
	assert.Zero(t, handler.totalCalls())
}

func TestProcess_DispatchesChargeRefunded(t *testing.T) {
	handler := &capturingHandler{}
	processor := newTestProcessor(handler)

	payload := []byte(chargeRefundedBody)
	err := processor.Process(context.Background(), payload, signedHeader(payload, testSecret, time.Now()))

	require.NoError(t, err)
	require.Len(t, handler.refunded, 1)

	charge := handler.refunded[0].Object
	assert.Equal(t, "ch_1", charge.ID)
	assert.Equal(t, int64(500), charge.Amount)
	require.NotNil(t, charge.AmountRefunded)
	assert.Equal(t, int64(500), *charge.AmountRefunded)
	assert.Nil(t, charge.PaymentIntent)
	assert.Nil(t, charge.Metadata)
}

func TestProcess_TransferReversedIsNoop(t *testing.T) {
	handler := &capturingHandler{}
	processor := newTestProcessor(handler)

	payload := []byte(transferReversedBody)
	err := processor.Process(context.Background(), payload, signedHeader(payload, testSecret, time.Now()))

	require.NoError(t, err)
	assert.Zero(t, handler.totalCalls())
}

func TestProcess_TransferReversedStillValidated(t *testing.T) {
	handler := &capturingHandler{}
	processor := newTestProcessor(handler)

	payload := []byte(`{"id":"evt_6","api_version":"2020-08-27","type":"transfer.reversed","data":{"object":{"id":"tr_1"}}}`)
	err := processor.Process(context.Background(), payload, signedHeader(payload, testSecret, time.Now()))

	var violation *stripe.SchemaViolationError
	require.ErrorAs(t, err, &violation)
}

func TestProcess_WrapsHandlerFailure(t *testing.T) {
	cause := errors.New("db unavailable")
	handler := &capturingHandler{err: cause}
	processor := newTestProcessor(handler)

	payload := []byte(paymentIntentSucceededBody)
	err := processor.Process(context.Background(), payload, signedHeader(payload, testSecret, time.Now()))

	var handlerErr *webhook.HandlerError
	require.ErrorAs(t, err, &handlerErr)
	assert.Equal(t, stripe.EventTypePaymentIntentSucceeded, handlerErr.EventType)
	assert.ErrorIs(t, err, cause)
}

func TestProcess_MalformedBody(t *testing.T) {
	handler := &capturingHandler{}
	processor := newTestProcessor(handler)

	payload := []byte(`{"id":`)
	err := processor.Process(context.Background(), payload, signedHeader(payload, testSecret, time.Now()))

	assert.ErrorIs(t, err, stripe.ErrMalformedPayload)
}
