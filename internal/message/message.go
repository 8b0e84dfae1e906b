package message

import (
	"time"

	"github.com/google/uuid"
)

// Notification kinds published for downstream consumers (mailer, calendar
// sync) after a webhook event has been applied.
const (
	KindReservationConfirmed = "reservation.confirmed"
	KindReservationRefunded  = "reservation.refunded"
)

type ReservationNotification struct {
	ID            uuid.UUID `json:"id"`
	ReservationID uuid.UUID `json:"reservationId"`
	Kind          string    `json:"kind"`
	AmountCents   int64     `json:"amountCents"`
	Currency      string    `json:"currency"`
	OccurredAt    time.Time `json:"occurredAt"`
}
