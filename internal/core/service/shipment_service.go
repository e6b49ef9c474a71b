package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/cargo-tracking/internal/api/metrics"
	"github.com/99minutos/cargo-tracking/internal/core/domain"
	"github.com/99minutos/cargo-tracking/internal/core/ports"
)

// ShipmentService owns shipment records and their status history. Status
// changes it makes on its own are announced through the notifier.
type ShipmentService struct {
	repo      ports.ShipmentRepository
	notifier  ports.Notifier
	evaluator domain.DeliveryEvaluator
	now       func() time.Time
	logger    zerolog.Logger
}

// NewShipmentService returns a ShipmentService whose location check uses
// locationThresholdKm. A nil notifier disables notifications.
func NewShipmentService(repo ports.ShipmentRepository, notifier ports.Notifier, locationThresholdKm float64, logger zerolog.Logger) *ShipmentService {
	return &ShipmentService{
		repo:      repo,
		notifier:  notifier,
		evaluator: domain.DeliveryEvaluator{ThresholdKm: locationThresholdKm},
		now:       func() time.Time { return time.Now().UTC() },
		logger:    logger,
	}
}

// CreateShipment stores a new shipment in the Created status and records the
// first history entry.
func (s *ShipmentService) CreateShipment(ctx context.Context, input ports.CreateShipmentInput) (*domain.Shipment, error) {
	now := s.now()
	shipment := &domain.Shipment{
		SenderUserID:   input.SenderUserID,
		ReceiverUserID: input.ReceiverUserID,
		Origin:         input.Origin,
		Destination:    input.Destination,
		Status:         domain.StatusCreated,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, shipment); err != nil {
		s.logger.Error().Err(err).Msg("failed to create shipment")
		return nil, fmt.Errorf("create shipment: %w", err)
	}

	entry := domain.StatusHistoryEntry{ShipmentID: shipment.ID, Status: shipment.Status, ChangedAt: now}
	if err := s.repo.AppendStatusHistory(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Int64("shipment_id", shipment.ID).Msg("failed to record initial status")
	}

	s.logger.Info().Int64("shipment_id", shipment.ID).Str("receiver", input.ReceiverUserID).Msg("shipment created")
	s.notify(ctx, shipment, domain.StatusNotification{NewStatus: shipment.Status})
	return shipment, nil
}

func (s *ShipmentService) GetShipment(ctx context.Context, id int64) (*domain.Shipment, error) {
	shipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get shipment: %w", err)
	}
	return shipment, nil
}

// UpdateStatus sets the status without recording history; callers record
// history separately. With notify set, an actual change is announced to the
// receiver. Callers that announce the change themselves pass false.
func (s *ShipmentService) UpdateStatus(ctx context.Context, id int64, status string, notify bool) error {
	st, err := domain.ParseShipmentStatus(status)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	shipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if err := s.repo.UpdateStatus(ctx, id, st, s.now()); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	s.logger.Info().Int64("shipment_id", id).Str("status", status).Msg("shipment status updated")

	if notify && shipment.Status != st {
		shipment.Status = st
		s.notify(ctx, shipment, domain.StatusNotification{NewStatus: st})
	}
	return nil
}

func (s *ShipmentService) AddStatusHistory(ctx context.Context, id int64, status string) error {
	st, err := domain.ParseShipmentStatus(status)
	if err != nil {
		return fmt.Errorf("add status history: %w", err)
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return fmt.Errorf("add status history: %w", err)
	}
	entry := domain.StatusHistoryEntry{ShipmentID: id, Status: st, ChangedAt: s.now()}
	if err := s.repo.AppendStatusHistory(ctx, entry); err != nil {
		return fmt.Errorf("add status history: %w", err)
	}
	return nil
}

func (s *ShipmentService) StatusHistory(ctx context.Context, id int64) ([]domain.StatusHistoryEntry, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, fmt.Errorf("status history: %w", err)
	}
	entries, err := s.repo.ListStatusHistory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("status history: %w", err)
	}
	return entries, nil
}

// RecordLocation evaluates at against the shipment destination and applies
// the recommended status, recording history for it.
func (s *ShipmentService) RecordLocation(ctx context.Context, id int64, at domain.Coordinates) (domain.Evaluation, error) {
	shipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Evaluation{}, fmt.Errorf("record location: %w", err)
	}

	res := s.evaluator.Evaluate(at, shipment.Destination, shipment.Status)
	if !res.Changed() {
		return res, nil
	}

	now := s.now()
	if err := s.repo.UpdateStatus(ctx, id, res.Recommended, now); err != nil {
		return res, fmt.Errorf("record location: %w", err)
	}
	entry := domain.StatusHistoryEntry{ShipmentID: id, Status: res.Recommended, ChangedAt: now}
	if err := s.repo.AppendStatusHistory(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Int64("shipment_id", id).Msg("failed to record status history")
	}

	s.logger.Info().
		Int64("shipment_id", id).
		Str("status", string(res.Recommended)).
		Float64("distance_km", res.DistanceKm).
		Msg("status changed by location check")

	shipment.Status = res.Recommended
	s.notify(ctx, shipment, domain.StatusNotification{
		NewStatus: res.Recommended,
		Message:   domain.FormatStatusNotification(res.Recommended, res.DistanceKm),
	})
	return res, nil
}

func (s *ShipmentService) IsDelivered(ctx context.Context, id int64) (bool, error) {
	shipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("is delivered: %w", err)
	}
	return shipment.Status == domain.StatusDelivered, nil
}

// notify publishes n to the shipment's receiver. Failures are logged only.
func (s *ShipmentService) notify(ctx context.Context, shipment *domain.Shipment, n domain.StatusNotification) {
	if s.notifier == nil || shipment.ReceiverUserID == "" {
		metrics.NotificationsTotal.WithLabelValues("publish", "skipped").Inc()
		return
	}
	n.UserID = shipment.ReceiverUserID
	n.ShipmentID = shipment.ID
	if err := s.notifier.Notify(ctx, n); err != nil {
		metrics.NotificationsTotal.WithLabelValues("publish", "error").Inc()
		metrics.DependencyErrorsTotal.WithLabelValues("notifier").Inc()
		s.logger.Warn().Err(err).Int64("shipment_id", shipment.ID).Msg("notification publish failed")
		return
	}
	metrics.NotificationsTotal.WithLabelValues("publish", "ok").Inc()
}
