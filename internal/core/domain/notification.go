package domain

import "fmt"

// outForDeliveryKm is the distance under which an in-transit shipment is
// announced as out for delivery.
const outForDeliveryKm = 3.0

// StatusNotifiedHeader marks a status update whose caller has already
// notified the receiver.
const StatusNotifiedHeader = "X-Status-Notified"

// StatusNotification is the message relayed to a receiver's personal channel.
type StatusNotification struct {
	UserID     string         `json:"userId"`
	ShipmentID int64          `json:"shipmentId"`
	NewStatus  ShipmentStatus `json:"newStatus"`
	Message    string         `json:"message"`
}

// FormatStatusNotification builds the human-readable text for a status change.
func FormatStatusNotification(status ShipmentStatus, distanceKm float64) string {
	switch status {
	case StatusDelivered:
		return "Your shipment has been delivered!"
	case StatusInTransit:
		if distanceKm < outForDeliveryKm {
			return fmt.Sprintf("Your shipment is out for delivery, %.1f km away.", distanceKm)
		}
		return fmt.Sprintf("Your shipment is on its way, %.1f km away.", distanceKm)
	default:
		return fmt.Sprintf("Your shipment status was updated: %s", status)
	}
}

// Text returns the message, falling back to a generic sentence when empty.
func (n StatusNotification) Text() string {
	if n.Message != "" {
		return n.Message
	}
	return fmt.Sprintf("Your shipment (ID: %d) status has been updated to: %s.", n.ShipmentID, n.NewStatus)
}
