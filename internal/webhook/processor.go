package webhook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"payment-webhook-service/internal/logcontext"
	"payment-webhook-service/internal/stripe"

	"github.com/VictoriaMetrics/metrics"
)

var (
	eventsDispatchedCounter = metrics.GetOrCreateCounter(`webhook_events_total{result="dispatched"}`)
	eventsIgnoredCounter    = metrics.GetOrCreateCounter(`webhook_events_total{result="ignored"}`)
	eventsNoopCounter       = metrics.GetOrCreateCounter(`webhook_events_total{result="noop"}`)
	eventsSignatureCounter  = metrics.GetOrCreateCounter(`webhook_events_total{result="signature_rejected"}`)
	eventsSchemaCounter     = metrics.GetOrCreateCounter(`webhook_events_total{result="schema_violation"}`)
	eventsHandlerErrCounter = metrics.GetOrCreateCounter(`webhook_events_total{result="handler_error"}`)

	processDurationHistogram = metrics.GetOrCreateHistogram(`webhook_process_duration_milliseconds`)
)

// EventHandler is the set of domain callbacks the dispatcher invokes with
// validated payloads. Handler failures are never recovered here; they
// propagate so the HTTP layer answers 5xx and the provider redelivers.
type EventHandler interface {
	HandleCheckoutSessionCompleted(ctx context.Context, data stripe.CheckoutSessionEventData) error
	HandlePaymentIntentSucceeded(ctx context.Context, data stripe.PaymentIntentEventData) error
	HandlePaymentFailed(ctx context.Context, data stripe.PaymentIntentEventData) error
	HandleChargeRefunded(ctx context.Context, data stripe.ChargeEventData) error
}

// HandlerError wraps a failure raised by a domain handler.
type HandlerError struct {
	EventType stripe.EventType
	Err       error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler for %q failed: %s", e.EventType, e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}

// Processor runs the full intake pipeline for one webhook request:
// signature verification, typed parsing, triage of unknown types, dispatch.
// It holds no mutable state; the secret is fixed at construction.
type Processor struct {
	secret    string
	tolerance time.Duration
	handler   EventHandler
	logger    *slog.Logger
}

func NewProcessor(secret string, tolerance time.Duration, handler EventHandler, logger *slog.Logger) *Processor {
	if tolerance <= 0 {
		tolerance = stripe.DefaultTolerance
	}
	return &Processor{
		secret:    secret,
		tolerance: tolerance,
		handler:   handler,
		logger:    logger,
	}
}

func (p *Processor) Process(ctx context.Context, payload []byte, signatureHeader string) error {
	startTime := time.Now()
	defer func() {
		processDurationHistogram.Update(float64(time.Since(startTime).Milliseconds()))
	}()

	event, err := stripe.ConstructEvent(payload, signatureHeader, p.secret, p.tolerance)
	if err != nil {
		p.countFailure(err)
		p.logger.ErrorContext(ctx, "Rejecting webhook payload", "error", err)
		return err
	}

	ctx = logcontext.AppendCtx(ctx, slog.String("eventId", event.ID))
	p.logger.InfoContext(ctx, "Received Stripe event", "type", string(event.Type))
	p.logger.DebugContext(ctx, "Event payload", "payload", string(payload))

	if !event.Known() {
		p.logger.WarnContext(ctx, "Unsupported event type, ignoring", "type", string(event.Type))
		eventsIgnoredCounter.Inc()
		return nil
	}

	if err := p.dispatch(ctx, event); err != nil {
		eventsHandlerErrCounter.Inc()
		p.logger.ErrorContext(ctx, "Handler failed", "type", string(event.Type), "error", err)
		return &HandlerError{EventType: event.Type, Err: err}
	}

	return nil
}

// dispatch is an exhaustive match over the known tags. refund.updated and
// transfer.reversed parse strictly but have no registered handler; they end
// as a logged no-op. TODO(product): confirm whether these two should stay
// unhandled.
func (p *Processor) dispatch(ctx context.Context, event *stripe.Event) error {
	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		if err := p.handler.HandleCheckoutSessionCompleted(ctx, *event.Checkout); err != nil {
			return err
		}
	case stripe.EventTypePaymentIntentSucceeded:
		if err := p.handler.HandlePaymentIntentSucceeded(ctx, *event.PaymentIntent); err != nil {
			return err
		}
	case stripe.EventTypePaymentIntentFailed:
		if err := p.handler.HandlePaymentFailed(ctx, *event.PaymentIntent); err != nil {
			return err
		}
	case stripe.EventTypeChargeRefunded:
		if err := p.handler.HandleChargeRefunded(ctx, *event.Charge); err != nil {
			return err
		}
	case stripe.EventTypeRefundUpdated, stripe.EventTypeTransferReversed:
		p.logger.InfoContext(ctx, "No handler registered for event type", "type", string(event.Type))
		eventsNoopCounter.Inc()
		return nil
	}

	eventsDispatchedCounter.Inc()
	return nil
}

func (p *Processor) countFailure(err error) {
	var schemaErr *stripe.SchemaViolationError
	switch {
	case errors.As(err, &schemaErr), errors.Is(err, stripe.ErrMalformedPayload):
		eventsSchemaCounter.Inc()
	default:
		eventsSignatureCounter.Inc()
	}
}
