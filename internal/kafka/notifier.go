package kafka

import (
	"context"
	"encoding/json"
	"log/slog"

	"payment-webhook-service/internal/message"

	"github.com/VictoriaMetrics/metrics"
	"github.com/segmentio/kafka-go"
)

var (
	notificationsPublishedCounter = metrics.GetOrCreateCounter(`reservation_notifications_total{result="published"}`)
	notificationsFailedCounter    = metrics.GetOrCreateCounter(`reservation_notifications_total{result="publish_failed"}`)
)

// Notifier publishes reservation notifications for downstream consumers.
type Notifier struct {
	writer *kafka.Writer
	logger *slog.Logger
}

func NewNotifier(writer *kafka.Writer, logger *slog.Logger) *Notifier {
	return &Notifier{writer: writer, logger: logger}
}

func (n *Notifier) Publish(ctx context.Context, notification message.ReservationNotification) error {
	value, err := json.Marshal(notification)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		// Reservation ID as key so all notifications for one reservation stay ordered.
		Key:   []byte(notification.ReservationID.String()),
		Value: value,
	}

	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		notificationsFailedCounter.Inc()
		n.logger.ErrorContext(ctx, "Error publishing notification", "kind", notification.Kind, "error", err)
		return err
	}

	notificationsPublishedCounter.Inc()
	n.logger.InfoContext(ctx, "Published notification", "kind", notification.Kind, "reservationId", notification.ReservationID.String())
	return nil
}
