package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReservationRepository struct {
	pool *pgxpool.Pool
}

func NewReservationRepository(pool *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{pool: pool}
}

const reservationColumns = `id, code, status, price_cents, currency, guest_email,
	stripe_payment_intent_id, stripe_payment_method_id, amount_received_cents,
	paid, refunded, refunded_amount_cents, last_payment_error, created_at, updated_at`

func (r *ReservationRepository) SelectByID(ctx context.Context, id uuid.UUID) (*ReservationEntity, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservation WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *ReservationRepository) SelectByPaymentIntentID(ctx context.Context, intentID string) (*ReservationEntity, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservation WHERE stripe_payment_intent_id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, intentID))
}

func (r *ReservationRepository) Create(ctx context.Context, entity *ReservationEntity) (*ReservationEntity, error) {
	query := `INSERT INTO reservation (id, code, status, price_cents, currency, guest_email, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $7) RETURNING id`
	now := time.Now()
	err := r.pool.QueryRow(ctx, query, entity.ID, entity.Code, entity.Status, entity.PriceCents,
		entity.Currency, entity.GuestEmail, now).Scan(&entity.ID)
	if err != nil {
		return nil, err
	}
	entity.CreatedAt = now
	entity.UpdatedAt = now
	return entity, nil
}

// Confirm stores the payment references captured at checkout completion and
// moves the reservation to confirmed.
func (r *ReservationRepository) Confirm(ctx context.Context, id uuid.UUID, intentID, methodID string) error {
	query := `UPDATE reservation
	          SET status = $2, stripe_payment_intent_id = $3, stripe_payment_method_id = $4, updated_at = now()
	          WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, ReservationStatusConfirmed, intentID, methodID)
	return err
}

func (r *ReservationRepository) MarkPaid(ctx context.Context, id uuid.UUID, intentID string, amountReceivedCents int64) error {
	query := `UPDATE reservation
	          SET paid = true, stripe_payment_intent_id = $2, amount_received_cents = $3, updated_at = now()
	          WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, intentID, amountReceivedCents)
	return err
}

// MarkRefunded accumulates the refunded amount: partial refunds arrive as
// separate events.
func (r *ReservationRepository) MarkRefunded(ctx context.Context, id uuid.UUID, amountCents int64) error {
	query := `UPDATE reservation
	          SET refunded = true, status = $2, refunded_amount_cents = refunded_amount_cents + $3, updated_at = now()
	          WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, ReservationStatusCancelled, amountCents)
	return err
}

func (r *ReservationRepository) RecordPaymentFailure(ctx context.Context, id uuid.UUID, message string) error {
	query := `UPDATE reservation SET last_payment_error = $2, updated_at = now() WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, message)
	return err
}

func (r *ReservationRepository) scanOne(row interface{ Scan(dest ...any) error }) (*ReservationEntity, error) {
	var entity ReservationEntity
	err := row.Scan(&entity.ID, &entity.Code, &entity.Status, &entity.PriceCents, &entity.Currency,
		&entity.GuestEmail, &entity.StripePaymentIntentID, &entity.StripePaymentMethodID,
		&entity.AmountReceivedCents, &entity.Paid, &entity.Refunded, &entity.RefundedAmountCents,
		&entity.LastPaymentError, &entity.CreatedAt, &entity.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &entity, nil
}
