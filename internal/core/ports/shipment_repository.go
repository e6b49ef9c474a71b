package ports

import (
	"context"
	"time"

	"github.com/99minutos/cargo-tracking/internal/core/domain"
)

// ShipmentRepository defines persistence operations for shipments.
type ShipmentRepository interface {
	// Create assigns the next numeric id to s and inserts it.
	Create(ctx context.Context, s *domain.Shipment) error
	FindByID(ctx context.Context, id int64) (*domain.Shipment, error)
	UpdateStatus(ctx context.Context, id int64, status domain.ShipmentStatus, at time.Time) error
	AppendStatusHistory(ctx context.Context, entry domain.StatusHistoryEntry) error
	ListStatusHistory(ctx context.Context, id int64) ([]domain.StatusHistoryEntry, error)
}
