package domain

import (
	"errors"
	"fmt"
	"time"
)

// ShipmentStatus represents the lifecycle state of a shipment.
type ShipmentStatus string

const (
	StatusCreated   ShipmentStatus = "Created"
	StatusInTransit ShipmentStatus = "InTransit"
	StatusDelivered ShipmentStatus = "Delivered"
	StatusCancelled ShipmentStatus = "Cancelled"
)

var (
	ErrShipmentNotFound = errors.New("shipment not found")
	ErrInvalidStatus    = errors.New("invalid shipment status")
	ErrForbidden        = errors.New("access forbidden")
)

// ParseShipmentStatus validates s against the known statuses.
func ParseShipmentStatus(s string) (ShipmentStatus, error) {
	switch st := ShipmentStatus(s); st {
	case StatusCreated, StatusInTransit, StatusDelivered, StatusCancelled:
		return st, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

// IsTerminal reports whether no automatic transition may leave this status.
func (s ShipmentStatus) IsTerminal() bool {
	return s == StatusDelivered
}

// Coordinates represents a geographic point in degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
}

// ShipmentSnapshot is the slice of shipment state the tracking pipeline
// reads from the shipment-record service.
type ShipmentSnapshot struct {
	ID             int64
	SenderUserID   string
	ReceiverUserID string
	Receiver       Coordinates
	Status         ShipmentStatus
}

// Shipment is the record owned by the shipment service.
type Shipment struct {
	ID             int64          `json:"id" bson:"_id"`
	SenderUserID   string         `json:"senderUserId" bson:"sender_user_id"`
	ReceiverUserID string         `json:"receiverUserId" bson:"receiver_user_id"`
	Origin         Coordinates    `json:"origin" bson:"origin"`
	Destination    Coordinates    `json:"destination" bson:"destination"`
	Status         ShipmentStatus `json:"status" bson:"status"`
	CreatedAt      time.Time      `json:"createdAt" bson:"created_at"`
	UpdatedAt      time.Time      `json:"updatedAt" bson:"updated_at"`
}

// Snapshot projects the record into the view consumed by tracking.
func (s *Shipment) Snapshot() ShipmentSnapshot {
	return ShipmentSnapshot{
		ID:             s.ID,
		SenderUserID:   s.SenderUserID,
		ReceiverUserID: s.ReceiverUserID,
		Receiver:       s.Destination,
		Status:         s.Status,
	}
}

// StatusHistoryEntry records a single status change on a shipment.
type StatusHistoryEntry struct {
	ShipmentID int64          `json:"shipmentId" bson:"shipment_id"`
	Status     ShipmentStatus `json:"status" bson:"status"`
	ChangedAt  time.Time      `json:"changedAt" bson:"changed_at"`
}
