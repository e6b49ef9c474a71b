package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/cargo-tracking/internal/api/metrics"
	"github.com/99minutos/cargo-tracking/internal/core/domain"
	"github.com/99minutos/cargo-tracking/internal/core/ports"
)

// PositionRelay refreshes the last-known-location cache and pushes each raw
// position to the shipment's hub group. Every instance subscribes to the
// positions channel, so pushes stay local and never cross the backplane.
type PositionRelay struct {
	cache  ports.LocationCache
	pusher ports.LocalPusher
	log    zerolog.Logger
}

func NewPositionRelay(cache ports.LocationCache, pusher ports.LocalPusher, log zerolog.Logger) *PositionRelay {
	return &PositionRelay{cache: cache, pusher: pusher, log: log}
}

// HandlePosition satisfies ports.PositionHandler. A cache failure does not
// stop the push.
func (r *PositionRelay) HandlePosition(ctx context.Context, update domain.LocationUpdate) error {
	loc := domain.LastLocation{
		Latitude:  update.Latitude,
		Longitude: update.Longitude,
		UpdatedAt: update.Timestamp,
	}
	if err := r.cache.Set(ctx, update.ShipmentID, loc); err != nil {
		metrics.DependencyErrorsTotal.WithLabelValues("cache").Inc()
		r.log.Warn().Err(err).Int64("shipment_id", update.ShipmentID).Msg("last location cache update failed")
	}

	push := domain.LocationPush{
		ShipmentID: update.ShipmentID,
		Latitude:   update.Latitude,
		Longitude:  update.Longitude,
		UpdatedAt:  update.Timestamp,
	}
	if err := r.pusher.SendToGroupLocal(ctx, domain.ShipmentGroup(update.ShipmentID), domain.PushLocationUpdate, push); err != nil {
		return fmt.Errorf("relay position: %w", err)
	}

	metrics.PositionsRelayedTotal.Inc()
	return nil
}
