package ports

import (
	"context"

	"github.com/99minutos/cargo-tracking/internal/core/domain"
)

// LocationHistoryRepository is the append-only location history store.
type LocationHistoryRepository interface {
	Append(ctx context.Context, rec *domain.LocationHistoryRecord) error
	// ListByShipment returns records newest first.
	ListByShipment(ctx context.Context, shipmentID int64, limit int64) ([]domain.LocationHistoryRecord, error)
}

// LocationCache holds the last known coordinate per shipment.
type LocationCache interface {
	Set(ctx context.Context, shipmentID int64, loc domain.LastLocation) error
	// Get returns domain.ErrLocationNotFound when nothing is cached.
	Get(ctx context.Context, shipmentID int64) (*domain.LastLocation, error)
}
