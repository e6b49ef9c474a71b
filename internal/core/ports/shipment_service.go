package ports

import (
	"context"

	"github.com/99minutos/cargo-tracking/internal/core/domain"
)

// CreateShipmentInput carries all data needed to create a new shipment.
type CreateShipmentInput struct {
	SenderUserID   string
	ReceiverUserID string
	Origin         domain.Coordinates
	Destination    domain.Coordinates
}

// ShipmentService manages shipment records.
type ShipmentService interface {
	CreateShipment(ctx context.Context, in CreateShipmentInput) (*domain.Shipment, error)
	GetShipment(ctx context.Context, id int64) (*domain.Shipment, error)
	// UpdateStatus sets the status and, when notify is set, announces an
	// actual change to the receiver.
	UpdateStatus(ctx context.Context, id int64, status string, notify bool) error
	AddStatusHistory(ctx context.Context, id int64, status string) error
	StatusHistory(ctx context.Context, id int64) ([]domain.StatusHistoryEntry, error)
	// RecordLocation runs the shipment-location proximity check against the
	// shipment's destination and applies a resulting transition.
	RecordLocation(ctx context.Context, id int64, at domain.Coordinates) (domain.Evaluation, error)
	IsDelivered(ctx context.Context, id int64) (bool, error)
}
