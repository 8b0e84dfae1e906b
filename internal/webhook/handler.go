package webhook

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"payment-webhook-service/internal/logcontext"
	"payment-webhook-service/internal/stripe"

	"github.com/google/uuid"
)

// SignatureHeader is the request header carrying the provider's signature.
const SignatureHeader = "Stripe-Signature"

// Handler terminates the webhook POST endpoint and translates pipeline
// outcomes into HTTP statuses: 200 for dispatched or ignored events, 400 for
// anything the provider sent us broken, 5xx when our own handling failed so
// the provider retries.
type Handler struct {
	processor *Processor
	logger    *slog.Logger
}

func NewHandler(processor *Processor, logger *slog.Logger) *Handler {
	return &Handler{processor: processor, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := logcontext.AppendCtx(r.Context(), slog.String("requestId", uuid.New().String()))

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.ErrorContext(ctx, "Error reading webhook body", "error", err)
		http.Error(w, "cannot read request body", http.StatusBadRequest)
		return
	}

	if err := h.processor.Process(ctx, body, r.Header.Get(SignatureHeader)); err != nil {
		status := statusFor(err)
		h.logger.ErrorContext(ctx, "Webhook processing failed", "status", status, "error", err)
		http.Error(w, http.StatusText(status), status)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func statusFor(err error) int {
	var handlerErr *HandlerError
	if errors.As(err, &handlerErr) {
		return http.StatusInternalServerError
	}

	var schemaErr *stripe.SchemaViolationError
	switch {
	case errors.As(err, &schemaErr),
		errors.Is(err, stripe.ErrMalformedPayload),
		errors.Is(err, stripe.ErrSignatureInvalid),
		errors.Is(err, stripe.ErrMalformedSignatureHeader),
		errors.Is(err, stripe.ErrTimestampOutOfTolerance):
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}
