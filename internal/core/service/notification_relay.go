package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/cargo-tracking/internal/api/metrics"
	"github.com/99minutos/cargo-tracking/internal/core/domain"
	"github.com/99minutos/cargo-tracking/internal/core/ports"
)

// NotificationRelay delivers notifications from the notification layer to
// the receiver's personal hub channel.
type NotificationRelay struct {
	pusher ports.RealtimePusher
	log    zerolog.Logger
}

func NewNotificationRelay(pusher ports.RealtimePusher, log zerolog.Logger) *NotificationRelay {
	return &NotificationRelay{pusher: pusher, log: log}
}

// Handle pushes the preformatted text of n to user-<id>.
func (r *NotificationRelay) Handle(ctx context.Context, n domain.StatusNotification) error {
	if n.UserID == "" {
		metrics.NotificationsTotal.WithLabelValues("relay", "skipped").Inc()
		r.log.Warn().Int64("shipment_id", n.ShipmentID).Msg("notification without receiver, skipping")
		return nil
	}

	if err := r.pusher.SendToUser(ctx, n.UserID, domain.PushNotification, n.Text()); err != nil {
		metrics.NotificationsTotal.WithLabelValues("relay", "error").Inc()
		return fmt.Errorf("relay notification: %w", err)
	}

	metrics.NotificationsTotal.WithLabelValues("relay", "ok").Inc()
	r.log.Info().
		Str("user_id", n.UserID).
		Int64("shipment_id", n.ShipmentID).
		Str("status", string(n.NewStatus)).
		Msg("notification relayed")
	return nil
}
