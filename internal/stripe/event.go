package stripe

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

// EventType is the tag discriminating webhook event variants.
// See https://stripe.com/docs/api/events/types
type EventType string

const (
	EventTypeCheckoutSessionCompleted EventType = "checkout.session.completed"
	EventTypeChargeRefunded           EventType = "charge.refunded"
	EventTypeRefundUpdated            EventType = "refund.updated"
	EventTypePaymentIntentFailed      EventType = "payment_intent.payment_failed"
	EventTypePaymentIntentSucceeded   EventType = "payment_intent.succeeded"
	EventTypeTransferReversed         EventType = "transfer.reversed"
)

var knownEventTypes = map[EventType]struct{}{
	EventTypeCheckoutSessionCompleted: {},
	EventTypeChargeRefunded:           {},
	EventTypeRefundUpdated:            {},
	EventTypePaymentIntentFailed:      {},
	EventTypePaymentIntentSucceeded:   {},
	EventTypeTransferReversed:         {},
}

// Known reports whether the tag selects one of the typed variants. The
// provider emits far more event types than the platform handles; everything
// else decodes as a fallback event.
func (t EventType) Known() bool {
	_, ok := knownEventTypes[t]
	return ok
}

// EventRequest identifies the API request that caused the event. The
// idempotency key is exposed so handlers can dedupe redeliveries; it is not
// enforced here.
type EventRequest struct {
	ID             string
	IdempotencyKey *string
}

// Event is one decoded webhook envelope. For known tags exactly one of the
// typed payload fields is set; Data always carries the payload as received
// and is the only representation for unknown tags.
type Event struct {
	ID            string
	APIVersion    string
	Type          EventType
	Request       *EventRequest
	Checkout      *CheckoutSessionEventData
	Charge        *ChargeEventData
	PaymentIntent *PaymentIntentEventData
	Transfer      *TransferEventData
	Data          json.RawMessage
}

// Known reports whether the event carries a typed payload.
func (e *Event) Known() bool {
	return e.Type.Known()
}

// SchemaViolationError reports that a payload with a known tag does not match
// its variant schema. It is always fatal to the request.
type SchemaViolationError struct {
	EventType EventType
	Err       error
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("event %q does not match its schema: %s", e.EventType, e.Err)
}

func (e *SchemaViolationError) Unwrap() error {
	return e.Err
}

// ErrMalformedPayload means the request body is not a JSON object at all.
var ErrMalformedPayload = errors.New("malformed json payload")

// ParseEvent decodes a verified webhook payload into a typed event.
//
// Decoding is two-phase: the tag is read first, and only payloads with a
// known tag are validated against a variant schema. An unknown tag never
// fails; it yields a fallback event with opaque data so the caller can
// distinguish "we don't handle this type" from "a type we handle arrived
// broken".
func ParseEvent(payload []byte) (*Event, error) {
	envelope, err := decodeObject(payload)
	if err != nil {
		return nil, errors.Wrap(ErrMalformedPayload, err.Error())
	}

	typeRaw, ok := envelope["type"]
	if !ok {
		return nil, &SchemaViolationError{Err: fieldErr("type", "is required")}
	}
	var tag string
	if err := json.Unmarshal(typeRaw, &tag); err != nil {
		return nil, &SchemaViolationError{Err: fieldErr("type", "must be a string")}
	}

	eventType := EventType(tag)
	dataRaw := envelope["data"]

	if !eventType.Known() {
		event := &Event{Type: eventType, Data: dataRaw}
		// best effort only: fallback events are never validated
		if raw, ok := envelope["id"]; ok {
			_ = json.Unmarshal(raw, &event.ID)
		}
		if raw, ok := envelope["api_version"]; ok {
			_ = json.Unmarshal(raw, &event.APIVersion)
		}
		return event, nil
	}

	event := &Event{Type: eventType, Data: dataRaw}

	if event.ID, err = envelope.requiredString("id"); err != nil {
		return nil, &SchemaViolationError{EventType: eventType, Err: err}
	}
	if event.APIVersion, err = envelope.requiredString("api_version"); err != nil {
		return nil, &SchemaViolationError{EventType: eventType, Err: err}
	}
	if dataRaw == nil || isNull(dataRaw) {
		return nil, &SchemaViolationError{EventType: eventType, Err: fieldErr("data", "is required")}
	}
	if event.Request, err = decodeEventRequest(envelope); err != nil {
		return nil, &SchemaViolationError{EventType: eventType, Err: err}
	}

	switch eventType {
	case EventTypeCheckoutSessionCompleted:
		event.Checkout, err = decodeCheckoutSessionEventData(dataRaw)
	case EventTypeChargeRefunded, EventTypeRefundUpdated:
		event.Charge, err = decodeChargeEventData(dataRaw)
	case EventTypePaymentIntentFailed, EventTypePaymentIntentSucceeded:
		event.PaymentIntent, err = decodePaymentIntentEventData(dataRaw)
	case EventTypeTransferReversed:
		event.Transfer, err = decodeTransferEventData(dataRaw)
	}
	if err != nil {
		return nil, &SchemaViolationError{EventType: eventType, Err: err}
	}

	return event, nil
}

func decodeEventRequest(envelope jsonObject) (*EventRequest, error) {
	raw, ok := envelope["request"]
	if !ok || isNull(raw) {
		return nil, nil
	}

	o, err := decodeObject(raw)
	if err != nil {
		return nil, fieldErr("request", "must be an object")
	}

	var req EventRequest
	if id, err := o.optionalString("id"); err != nil {
		return nil, err
	} else if id != nil {
		req.ID = *id
	}
	if req.IdempotencyKey, err = o.optionalString("idempotency_key"); err != nil {
		return nil, err
	}

	return &req, nil
}
