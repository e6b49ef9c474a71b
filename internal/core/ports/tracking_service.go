package ports

import (
	"context"
	"time"

	"github.com/99minutos/cargo-tracking/internal/core/domain"
)

// LocationUpdateInput is the DTO passed from the transport layer to TrackingService.
type LocationUpdateInput struct {
	ShipmentID int64
	Latitude   float64
	Longitude  float64
	Timestamp  time.Time // zero means "now"
}

// TrackingService orchestrates location ingestion and delivery detection.
type TrackingService interface {
	// UpdateLocation broadcasts, checks the shipment exists, records history
	// and runs the ingest proximity check.
	UpdateLocation(ctx context.Context, in LocationUpdateInput) error
	// RecordLocation records history first and then runs the location-service
	// proximity check. No broadcast is made.
	RecordLocation(ctx context.Context, in LocationUpdateInput) error
	History(ctx context.Context, shipmentID int64, limit int64) ([]domain.LocationHistoryRecord, error)
	LastLocation(ctx context.Context, shipmentID int64) (*domain.LastLocation, error)
}
