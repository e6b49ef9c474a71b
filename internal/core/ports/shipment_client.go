package ports

import (
	"context"

	"github.com/99minutos/cargo-tracking/internal/core/domain"
)

// ShipmentStateClient talks to the service that owns shipment records.
type ShipmentStateClient interface {
	// Get returns domain.ErrShipmentNotFound for unknown ids and wraps
	// domain.ErrDependencyUnavailable on transport failures.
	Get(ctx context.Context, shipmentID int64) (*domain.ShipmentSnapshot, error)
	// SetStatus persists a transition and then records status history.
	// A history failure is logged, not returned.
	SetStatus(ctx context.Context, shipmentID int64, status domain.ShipmentStatus) error
}
