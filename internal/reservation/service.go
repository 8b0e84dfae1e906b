package reservation

import (
	"context"
	"log/slog"
	"time"

	"payment-webhook-service/internal/db"
	"payment-webhook-service/internal/message"
	"payment-webhook-service/internal/stripe"
	"payment-webhook-service/internal/stripeclient"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

// metadataReservationID is the checkout metadata key the platform sets when
// creating a session, and reads back from webhook payloads.
const metadataReservationID = "reservation_id"

type Store interface {
	SelectByID(ctx context.Context, id uuid.UUID) (*db.ReservationEntity, error)
	SelectByPaymentIntentID(ctx context.Context, intentID string) (*db.ReservationEntity, error)
	Confirm(ctx context.Context, id uuid.UUID, intentID, methodID string) error
	MarkPaid(ctx context.Context, id uuid.UUID, intentID string, amountReceivedCents int64) error
	MarkRefunded(ctx context.Context, id uuid.UUID, amountCents int64) error
	RecordPaymentFailure(ctx context.Context, id uuid.UUID, msg string) error
}

type PaymentIntentRetriever interface {
	RetrievePaymentIntent(ctx context.Context, id string) (*stripeclient.PaymentIntent, error)
}

type Notifier interface {
	Publish(ctx context.Context, notification message.ReservationNotification) error
}

// Service applies validated webhook events to the reservation store. Every
// handler is idempotent with respect to redelivery: the provider may deliver
// the same event more than once and in any order.
type Service struct {
	repo     Store
	intents  PaymentIntentRetriever
	notifier Notifier
	logger   *slog.Logger
}

func NewService(repo Store, intents PaymentIntentRetriever, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		intents:  intents,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *Service) HandleCheckoutSessionCompleted(ctx context.Context, data stripe.CheckoutSessionEventData) error {
	entity, err := s.lookupByMetadata(ctx, data.Object.Metadata)
	if err != nil {
		return err
	}
	if entity == nil {
		return nil
	}

	s.logger.InfoContext(ctx, "Handling checkout.session.completed", "reservationId", entity.ID.String())

	if entity.Status == db.ReservationStatusConfirmed {
		s.logger.InfoContext(ctx, "Reservation already confirmed", "reservationId", entity.ID.String())
		return nil
	}

	if data.Object.PaymentIntent == nil {
		return errors.Errorf("checkout session %s has no payment intent", data.Object.ID)
	}
	intentID := *data.Object.PaymentIntent

	// Read the intent back to capture the payment method saved during
	// checkout; without it later deposit charges are impossible.
	intent, err := s.intents.RetrievePaymentIntent(ctx, intentID)
	if err != nil {
		return errors.Wrapf(err, "retrieving payment intent %s", intentID)
	}
	if intent.PaymentMethod == "" {
		return errors.Errorf("no payment method on payment intent %s", intentID)
	}

	if err := s.repo.Confirm(ctx, entity.ID, intentID, intent.PaymentMethod); err != nil {
		return errors.Wrapf(err, "confirming reservation %s", entity.ID)
	}

	s.logger.InfoContext(ctx, "Reservation confirmed", "reservationId", entity.ID.String())

	s.publish(ctx, message.ReservationNotification{
		ID:            uuid.New(),
		ReservationID: entity.ID,
		Kind:          message.KindReservationConfirmed,
		AmountCents:   data.Object.AmountTotal,
		Currency:      data.Object.Currency.String(),
		OccurredAt:    time.Now(),
	})

	return nil
}

func (s *Service) HandlePaymentIntentSucceeded(ctx context.Context, data stripe.PaymentIntentEventData) error {
	entity, err := s.lookupByMetadata(ctx, data.Object.Metadata)
	if err != nil {
		return err
	}
	if entity == nil {
		entity, err = s.repo.SelectByPaymentIntentID(ctx, data.Object.ID)
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.WarnContext(ctx, "No reservation for payment intent", "paymentIntentId", data.Object.ID)
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "loading reservation for payment intent %s", data.Object.ID)
		}
	}

	if entity.Paid {
		s.logger.InfoContext(ctx, "Reservation already marked paid", "reservationId", entity.ID.String())
		return nil
	}

	if err := s.repo.MarkPaid(ctx, entity.ID, data.Object.ID, data.Object.AmountReceived); err != nil {
		return errors.Wrapf(err, "marking reservation %s paid", entity.ID)
	}

	s.logger.InfoContext(ctx, "Reservation marked paid",
		"reservationId", entity.ID.String(),
		"amountReceived", data.Object.AmountReceived)
	return nil
}

func (s *Service) HandlePaymentFailed(ctx context.Context, data stripe.PaymentIntentEventData) error {
	reason := "payment failed"
	if lastErr := data.Object.LastPaymentError; lastErr != nil {
		if lastErr.Code != nil {
			reason = *lastErr.Code
		}
		if lastErr.Message != nil {
			reason = reason + ": " + *lastErr.Message
		}
	}

	s.logger.WarnContext(ctx, "Payment failed for intent",
		"paymentIntentId", data.Object.ID,
		"reason", reason)

	entity, err := s.lookupByMetadata(ctx, data.Object.Metadata)
	if err != nil {
		return err
	}
	if entity == nil {
		return nil
	}

	if err := s.repo.RecordPaymentFailure(ctx, entity.ID, reason); err != nil {
		return errors.Wrapf(err, "recording payment failure on reservation %s", entity.ID)
	}
	return nil
}

func (s *Service) HandleChargeRefunded(ctx context.Context, data stripe.ChargeEventData) error {
	entity, err := s.lookupByMetadata(ctx, data.Object.Metadata)
	if err != nil {
		return err
	}
	if entity == nil {
		return nil
	}

	s.logger.InfoContext(ctx, "Handling charge.refunded", "reservationId", entity.ID.String())

	if entity.Refunded {
		s.logger.InfoContext(ctx, "Refund already recorded", "reservationId", entity.ID.String())
		return nil
	}

	amount := data.Object.Amount
	if data.Object.AmountRefunded != nil {
		amount = *data.Object.AmountRefunded
	}

	if err := s.repo.MarkRefunded(ctx, entity.ID, amount); err != nil {
		return errors.Wrapf(err, "marking reservation %s refunded", entity.ID)
	}

	s.logger.InfoContext(ctx, "Reservation refunded",
		"reservationId", entity.ID.String(),
		"amountCents", amount,
		"currency", data.Object.Currency.String())

	s.publish(ctx, message.ReservationNotification{
		ID:            uuid.New(),
		ReservationID: entity.ID,
		Kind:          message.KindReservationRefunded,
		AmountCents:   amount,
		Currency:      data.Object.Currency.String(),
		OccurredAt:    time.Now(),
	})

	return nil
}

// lookupByMetadata resolves the reservation referenced by the event metadata.
// A missing or unknown reference is logged and absorbed (nil, nil): old
// sessions and manually created provider objects legitimately carry none.
// Store failures propagate so the provider redelivers.
func (s *Service) lookupByMetadata(ctx context.Context, metadata map[string]string) (*db.ReservationEntity, error) {
	raw, ok := metadata[metadataReservationID]
	if !ok || raw == "" {
		s.logger.WarnContext(ctx, "Event metadata has no reservation reference")
		return nil, nil
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		s.logger.WarnContext(ctx, "Invalid reservation reference in metadata", "value", raw)
		return nil, nil
	}

	entity, err := s.repo.SelectByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		s.logger.WarnContext(ctx, "Reservation not found", "reservationId", raw)
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "loading reservation %s", raw)
	}

	return entity, nil
}

// publish failures are logged and swallowed: a missed notification must not
// make the provider redeliver an already-applied event.
func (s *Service) publish(ctx context.Context, notification message.ReservationNotification) {
	if err := s.notifier.Publish(ctx, notification); err != nil {
		s.logger.WarnContext(ctx, "Error publishing notification", "kind", notification.Kind, "error", err)
	}
}
