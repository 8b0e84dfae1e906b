package db

import (
	"time"

	"github.com/google/uuid"
)

// Reservation statuses as stored. A reservation reaches "confirmed" through
// checkout completion and "cancelled" through a refund.
const (
	ReservationStatusPending   = "pending"
	ReservationStatusConfirmed = "confirmed"
	ReservationStatusCancelled = "cancelled"
)

type ReservationEntity struct {
	ID                    uuid.UUID
	Code                  string
	Status                string
	PriceCents            int64
	Currency              string
	GuestEmail            string
	StripePaymentIntentID *string
	StripePaymentMethodID *string
	AmountReceivedCents   int64
	Paid                  bool
	Refunded              bool
	RefundedAmountCents   int64
	LastPaymentError      *string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}
