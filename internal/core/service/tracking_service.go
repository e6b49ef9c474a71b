package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/cargo-tracking/internal/api/metrics"
	"github.com/99minutos/cargo-tracking/internal/core/domain"
	"github.com/99minutos/cargo-tracking/internal/core/ports"
)

const (
	pathIngest  = "ingest"
	pathHistory = "history"

	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// TrackingDeps groups the collaborators of the tracking service.
type TrackingDeps struct {
	Positions ports.PositionPublisher
	History   ports.LocationHistoryRepository
	Shipments ports.ShipmentStateClient
	Events    ports.StatusEventPublisher
	Notifier  ports.Notifier
	Cache     ports.LocationCache

	// IngestThresholdKm applies to UpdateLocation, HistoryThresholdKm to RecordLocation.
	IngestThresholdKm  float64
	HistoryThresholdKm float64
}

type trackingService struct {
	positions ports.PositionPublisher
	history   ports.LocationHistoryRepository
	shipments ports.ShipmentStateClient
	events    ports.StatusEventPublisher
	notifier  ports.Notifier
	cache     ports.LocationCache

	ingest    domain.DeliveryEvaluator
	recording domain.DeliveryEvaluator

	now   func() time.Time
	newID func() string
	log   zerolog.Logger
}

// NewTrackingService returns a TrackingService implementation.
func NewTrackingService(deps TrackingDeps, log zerolog.Logger) ports.TrackingService {
	return &trackingService{
		positions: deps.Positions,
		history:   deps.History,
		shipments: deps.Shipments,
		events:    deps.Events,
		notifier:  deps.Notifier,
		cache:     deps.Cache,
		ingest:    domain.DeliveryEvaluator{ThresholdKm: deps.IngestThresholdKm},
		recording: domain.DeliveryEvaluator{ThresholdKm: deps.HistoryThresholdKm},
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
		log:       log,
	}
}

// UpdateLocation runs the ingest pipeline:
//  1. broadcast the raw update (best-effort)
//  2. fetch the shipment, rejecting unknown ids before anything is persisted
//  3. append history
//  4. evaluate proximity and apply a transition
//
// The lookup deliberately runs before the history append, unlike
// RecordLocation, so an update for an unknown shipment leaves no history
// record behind.
func (s *trackingService) UpdateLocation(ctx context.Context, in ports.LocationUpdateInput) (err error) {
	start := time.Now()
	defer func() { s.observe(pathIngest, start, err) }()

	update := s.toUpdate(in)

	if pubErr := s.positions.PublishPosition(ctx, update); pubErr != nil {
		metrics.DependencyErrorsTotal.WithLabelValues("broadcast").Inc()
		s.log.Warn().Err(pubErr).Int64("shipment_id", update.ShipmentID).Msg("position broadcast failed")
	}

	snap, err := s.shipments.Get(ctx, update.ShipmentID)
	if err != nil {
		return fmt.Errorf("update location: %w", err)
	}

	if err := s.appendHistory(ctx, update); err != nil {
		return fmt.Errorf("update location: %w", err)
	}

	if err := s.applyTransition(ctx, s.ingest, snap, update.Coordinates()); err != nil {
		return fmt.Errorf("update location: %w", err)
	}
	return nil
}

// RecordLocation appends history and only then looks the shipment up. An
// unknown or unreachable shipment leaves the history row in place.
func (s *trackingService) RecordLocation(ctx context.Context, in ports.LocationUpdateInput) (err error) {
	start := time.Now()
	defer func() { s.observe(pathHistory, start, err) }()

	update := s.toUpdate(in)

	if err := s.appendHistory(ctx, update); err != nil {
		return fmt.Errorf("record location: %w", err)
	}

	snap, err := s.shipments.Get(ctx, update.ShipmentID)
	if err != nil {
		s.log.Warn().Err(err).Int64("shipment_id", update.ShipmentID).Msg("history recorded without delivery check")
		return fmt.Errorf("record location: %w", err)
	}

	if err := s.applyTransition(ctx, s.recording, snap, update.Coordinates()); err != nil {
		return fmt.Errorf("record location: %w", err)
	}
	return nil
}

func (s *trackingService) History(ctx context.Context, shipmentID int64, limit int64) ([]domain.LocationHistoryRecord, error) {
	switch {
	case limit <= 0:
		limit = defaultHistoryLimit
	case limit > maxHistoryLimit:
		limit = maxHistoryLimit
	}

	records, err := s.history.ListByShipment(ctx, shipmentID, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return records, nil
}

func (s *trackingService) LastLocation(ctx context.Context, shipmentID int64) (*domain.LastLocation, error) {
	loc, err := s.cache.Get(ctx, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("last location: %w", err)
	}
	return loc, nil
}

func (s *trackingService) toUpdate(in ports.LocationUpdateInput) domain.LocationUpdate {
	ts := in.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}
	return domain.LocationUpdate{
		ShipmentID: in.ShipmentID,
		Latitude:   in.Latitude,
		Longitude:  in.Longitude,
		Timestamp:  ts.UTC(),
	}
}

func (s *trackingService) appendHistory(ctx context.Context, update domain.LocationUpdate) error {
	rec := &domain.LocationHistoryRecord{
		ID:         s.newID(),
		ShipmentID: update.ShipmentID,
		Latitude:   update.Latitude,
		Longitude:  update.Longitude,
		RecordedAt: update.Timestamp,
	}
	if err := s.history.Append(ctx, rec); err != nil {
		metrics.DependencyErrorsTotal.WithLabelValues("history").Inc()
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// applyTransition persists a recommended status change, appends the event and
// asks the notification layer to push a message. The event is appended even
// when the status update fails; the caller still gets the failure.
func (s *trackingService) applyTransition(
	ctx context.Context,
	ev domain.DeliveryEvaluator,
	snap *domain.ShipmentSnapshot,
	position domain.Coordinates,
) error {
	res := ev.Evaluate(position, snap.Receiver, snap.Status)
	if !res.Changed() {
		s.log.Debug().
			Int64("shipment_id", snap.ID).
			Str("status", string(snap.Status)).
			Float64("distance_km", res.DistanceKm).
			Msg("no status change")
		return nil
	}

	setErr := s.shipments.SetStatus(ctx, snap.ID, res.Recommended)
	if setErr != nil {
		s.log.Error().Err(setErr).Int64("shipment_id", snap.ID).Msg("status update failed")
	}

	event := domain.StatusChangeEvent{
		Type:           domain.EventShipmentStatusChanged,
		ShipmentID:     snap.ID,
		NewStatus:      res.Recommended,
		ReceiverUserID: snap.ReceiverUserID,
		Timestamp:      s.now(),
	}
	pubErr := s.events.Publish(ctx, event)
	if pubErr != nil {
		metrics.DependencyErrorsTotal.WithLabelValues("event_stream").Inc()
		s.log.Error().Err(pubErr).Int64("shipment_id", snap.ID).Msg("event publish failed")
	} else {
		metrics.EventsPublishedTotal.WithLabelValues(string(event.Type)).Inc()
	}

	if setErr != nil {
		return fmt.Errorf("set status: %w", setErr)
	}
	if pubErr != nil {
		return fmt.Errorf("publish event: %w", pubErr)
	}

	metrics.StatusTransitionsTotal.WithLabelValues(string(res.Recommended)).Inc()
	s.log.Info().
		Int64("shipment_id", snap.ID).
		Str("from", string(res.Current)).
		Str("to", string(res.Recommended)).
		Float64("distance_km", res.DistanceKm).
		Msg("shipment status changed")

	s.notify(ctx, snap, res)
	return nil
}

// notify is best-effort: the event stream is the second delivery path.
func (s *trackingService) notify(ctx context.Context, snap *domain.ShipmentSnapshot, res domain.Evaluation) {
	if snap.ReceiverUserID == "" {
		metrics.NotificationsTotal.WithLabelValues("publish", "skipped").Inc()
		return
	}

	n := domain.StatusNotification{
		UserID:     snap.ReceiverUserID,
		ShipmentID: snap.ID,
		NewStatus:  res.Recommended,
		Message:    domain.FormatStatusNotification(res.Recommended, res.DistanceKm),
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		metrics.NotificationsTotal.WithLabelValues("publish", "error").Inc()
		metrics.DependencyErrorsTotal.WithLabelValues("notifier").Inc()
		s.log.Warn().Err(err).Int64("shipment_id", snap.ID).Msg("notification publish failed")
		return
	}
	metrics.NotificationsTotal.WithLabelValues("publish", "ok").Inc()
}

func (s *trackingService) observe(path string, start time.Time, err error) {
	metrics.LocationUpdateDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())

	result := "accepted"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrShipmentNotFound):
		result = "not_found"
	default:
		result = "error"
	}
	metrics.LocationUpdatesTotal.WithLabelValues(path, result).Inc()
}
