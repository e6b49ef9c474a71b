package domain

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// EventType tags entries of the shipment event stream.
type EventType string

const (
	EventShipmentCreated       EventType = "ShipmentCreated"
	EventShipmentStatusChanged EventType = "ShipmentStatusChanged"
	EventShipmentDelivered     EventType = "ShipmentDelivered"
	EventUnknown               EventType = "Unknown"
)

// ParseEventType maps a raw tag to a known EventType, or EventUnknown.
func ParseEventType(s string) EventType {
	switch t := EventType(s); t {
	case EventShipmentCreated, EventShipmentStatusChanged, EventShipmentDelivered:
		return t
	default:
		return EventUnknown
	}
}

var ErrMalformedEvent = errors.New("malformed event")

// Stream entry field names.
const (
	fieldEventType      = "eventType"
	fieldShipmentID     = "shipmentId"
	fieldNewStatus      = "newStatus"
	fieldReceiverUserID = "receiverUserId"
	fieldTimestamp      = "timestamp"
)

// StatusChangeEvent is the durable record emitted when a shipment's status changes.
type StatusChangeEvent struct {
	Type           EventType
	ShipmentID     int64
	NewStatus      ShipmentStatus
	ReceiverUserID string
	Timestamp      time.Time
}

// Fields encodes the event as stream field-value pairs.
func (e StatusChangeEvent) Fields() map[string]any {
	return map[string]any{
		fieldEventType:      string(e.Type),
		fieldShipmentID:     strconv.FormatInt(e.ShipmentID, 10),
		fieldNewStatus:      string(e.NewStatus),
		fieldReceiverUserID: e.ReceiverUserID,
		fieldTimestamp:      e.Timestamp.UTC().Format(time.RFC3339Nano),
	}
}

// DecodeStatusChangeEvent parses stream field-value pairs. Unknown event
// types decode successfully with Type set to EventUnknown.
func DecodeStatusChangeEvent(values map[string]string) (StatusChangeEvent, error) {
	e := StatusChangeEvent{
		Type:           ParseEventType(values[fieldEventType]),
		NewStatus:      ShipmentStatus(values[fieldNewStatus]),
		ReceiverUserID: values[fieldReceiverUserID],
	}

	id, err := strconv.ParseInt(values[fieldShipmentID], 10, 64)
	if err != nil {
		return e, fmt.Errorf("%w: shipmentId %q", ErrMalformedEvent, values[fieldShipmentID])
	}
	e.ShipmentID = id

	if raw := values[fieldTimestamp]; raw != "" {
		ts, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return e, fmt.Errorf("%w: timestamp %q", ErrMalformedEvent, raw)
		}
		e.Timestamp = ts
	}

	return e, nil
}
