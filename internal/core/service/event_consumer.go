package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/juju/clock"
	"github.com/rs/zerolog"

	"github.com/99minutos/cargo-tracking/internal/api/metrics"
	"github.com/99minutos/cargo-tracking/internal/core/domain"
	"github.com/99minutos/cargo-tracking/internal/core/ports"
)

// ConsumerState is the lifecycle position of an EventConsumer.
type ConsumerState int32

const (
	ConsumerStarting ConsumerState = iota
	ConsumerEnsuringGroup
	ConsumerPolling
	ConsumerDispatching
	ConsumerStopped
)

func (s ConsumerState) String() string {
	switch s {
	case ConsumerStarting:
		return "starting"
	case ConsumerEnsuringGroup:
		return "ensuring_group"
	case ConsumerPolling:
		return "polling"
	case ConsumerDispatching:
		return "dispatching"
	case ConsumerStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

const (
	defaultBatchSize    = 10
	defaultPollInterval = 2 * time.Second
	dedupKeyPrefix      = "stream-entry:"
)

// EventConsumerConfig tunes the read loop.
type EventConsumerConfig struct {
	Consumer     string
	BatchSize    int64
	PollInterval time.Duration
	// ClaimWindow is how long an entry may stay pending before another
	// member claims it. Zero disables claiming.
	ClaimWindow time.Duration
}

// EventConsumer tails the shipment event stream with consumer-group
// semantics and forwards status changes to the real-time hub.
type EventConsumer struct {
	stream ports.EventStreamReader
	pusher ports.RealtimePusher
	dedup  ports.DedupStore
	cfg    EventConsumerConfig
	clock  clock.Clock
	log    zerolog.Logger

	state atomic.Int32
}

// NewEventConsumer returns a consumer. A nil clk means the wall clock.
func NewEventConsumer(
	stream ports.EventStreamReader,
	pusher ports.RealtimePusher,
	dedup ports.DedupStore,
	cfg EventConsumerConfig,
	clk clock.Clock,
	log zerolog.Logger,
) *EventConsumer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if clk == nil {
		clk = clock.WallClock
	}
	return &EventConsumer{
		stream: stream,
		pusher: pusher,
		dedup:  dedup,
		cfg:    cfg,
		clock:  clk,
		log:    log.With().Str("consumer", cfg.Consumer).Logger(),
	}
}

// State reports the current lifecycle state.
func (c *EventConsumer) State() ConsumerState {
	return ConsumerState(c.state.Load())
}

func (c *EventConsumer) setState(s ConsumerState) {
	c.state.Store(int32(s))
}

// Run blocks until ctx is cancelled. Cancellation is observed between
// batches; a batch in flight is finished first.
func (c *EventConsumer) Run(ctx context.Context) error {
	defer c.setState(ConsumerStopped)
	c.setState(ConsumerStarting)

	if !c.ensureGroup(ctx) {
		return nil
	}

	c.drainPending(ctx)

	var lastClaim time.Time
	for {
		if ctx.Err() != nil {
			c.log.Info().Msg("event consumer stopping")
			return nil
		}

		if c.cfg.ClaimWindow > 0 && c.clock.Now().Sub(lastClaim) >= c.cfg.ClaimWindow {
			c.claimIdle(ctx)
			lastClaim = c.clock.Now()
		}

		c.setState(ConsumerPolling)
		entries, err := c.stream.Read(ctx, c.cfg.Consumer, ports.StreamReadNew, c.cfg.BatchSize)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			metrics.DependencyErrorsTotal.WithLabelValues("event_stream").Inc()
			c.log.Error().Err(err).Msg("stream read failed")
			c.sleep(ctx)
			continue
		}

		c.processBatch(ctx, entries)

		if int64(len(entries)) < c.cfg.BatchSize {
			c.sleep(ctx)
		}
	}
}

// ensureGroup retries until the group exists or ctx is done.
func (c *EventConsumer) ensureGroup(ctx context.Context) bool {
	c.setState(ConsumerEnsuringGroup)
	for {
		created, err := c.stream.EnsureGroup(ctx)
		if err == nil {
			if created {
				c.log.Info().Msg("consumer group created")
			} else {
				c.log.Info().Msg("consumer group already exists")
			}
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		c.log.Error().Err(err).Msg("ensure consumer group failed")
		c.sleep(ctx)
	}
}

// drainPending re-reads entries delivered to this consumer before a restart
// and never acknowledged.
func (c *EventConsumer) drainPending(ctx context.Context) {
	cursor := "0"
	for ctx.Err() == nil {
		entries, err := c.stream.Read(ctx, c.cfg.Consumer, cursor, c.cfg.BatchSize)
		if err != nil {
			c.log.Error().Err(err).Msg("pending read failed")
			return
		}
		if len(entries) == 0 {
			return
		}
		c.log.Info().Int("entries", len(entries)).Msg("redelivering pending entries")
		c.processBatch(ctx, entries)
		cursor = entries[len(entries)-1].ID
	}
}

func (c *EventConsumer) claimIdle(ctx context.Context) {
	entries, err := c.stream.ClaimIdle(ctx, c.cfg.Consumer, c.cfg.ClaimWindow, c.cfg.BatchSize)
	if err != nil {
		c.log.Warn().Err(err).Msg("claim idle entries failed")
		return
	}
	if len(entries) == 0 {
		return
	}
	metrics.EventsClaimedTotal.Add(float64(len(entries)))
	c.log.Info().Int("entries", len(entries)).Msg("claimed idle entries")
	c.processBatch(ctx, entries)
}

func (c *EventConsumer) processBatch(ctx context.Context, entries []ports.StreamEntry) {
	if len(entries) == 0 {
		return
	}
	c.setState(ConsumerDispatching)
	batchCtx := context.WithoutCancel(ctx)
	for _, entry := range entries {
		c.handle(batchCtx, entry)
	}
}

// handle acknowledges an entry only after it was dispatched, or when it can
// never be dispatched (malformed). Dispatch failures leave it pending.
func (c *EventConsumer) handle(ctx context.Context, entry ports.StreamEntry) {
	log := c.log.With().Str("entry_id", entry.ID).Logger()

	if seen, err := c.dedup.Seen(ctx, dedupKeyPrefix+entry.ID); err != nil {
		log.Warn().Err(err).Msg("dedup check failed, dispatching anyway")
	} else if seen {
		metrics.EventsConsumedTotal.WithLabelValues("duplicate", "duplicate").Inc()
		log.Debug().Msg("entry already dispatched")
		c.ack(ctx, entry.ID, log)
		return
	}

	event, err := domain.DecodeStatusChangeEvent(entry.Values)
	if err != nil {
		metrics.EventsConsumedTotal.WithLabelValues("malformed", "acked").Inc()
		log.Warn().Err(err).Msg("dropping malformed entry")
		c.ack(ctx, entry.ID, log)
		return
	}

	if err := c.dispatch(ctx, event); err != nil {
		metrics.EventsConsumedTotal.WithLabelValues(string(event.Type), "dispatch_error").Inc()
		log.Error().Err(err).Int64("shipment_id", event.ShipmentID).Msg("dispatch failed, leaving entry pending")
		return
	}

	if err := c.dedup.Mark(ctx, dedupKeyPrefix+entry.ID); err != nil {
		log.Warn().Err(err).Msg("failed to set dedup key")
	}
	c.ack(ctx, entry.ID, log)
	metrics.EventsConsumedTotal.WithLabelValues(string(event.Type), "acked").Inc()
}

func (c *EventConsumer) dispatch(ctx context.Context, event domain.StatusChangeEvent) error {
	switch event.Type {
	case domain.EventShipmentStatusChanged:
		payload := domain.StatusPush{
			ShipmentID: event.ShipmentID,
			NewStatus:  event.NewStatus,
			Timestamp:  event.Timestamp,
		}
		var errs []error
		if err := c.pusher.SendToGroup(ctx, domain.ShipmentGroup(event.ShipmentID), domain.PushStatusUpdate, payload); err != nil {
			errs = append(errs, err)
		}
		if event.ReceiverUserID != "" {
			if err := c.pusher.SendToUser(ctx, event.ReceiverUserID, domain.PushStatusUpdate, payload); err != nil {
				errs = append(errs, err)
			}
		}
		if err := errors.Join(errs...); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrDispatch, err)
		}
		c.log.Info().
			Int64("shipment_id", event.ShipmentID).
			Str("status", string(event.NewStatus)).
			Msg("status change dispatched")

	case domain.EventShipmentCreated:
		c.log.Info().Int64("shipment_id", event.ShipmentID).Msg("shipment created")

	case domain.EventShipmentDelivered:
		c.log.Info().Int64("shipment_id", event.ShipmentID).Msg("shipment delivered")

	default:
		c.log.Warn().Int64("shipment_id", event.ShipmentID).Msg("unknown event type, skipping")
	}
	return nil
}

func (c *EventConsumer) ack(ctx context.Context, id string, log zerolog.Logger) {
	if err := c.stream.Ack(ctx, id); err != nil {
		metrics.DependencyErrorsTotal.WithLabelValues("event_stream").Inc()
		log.Error().Err(err).Msg("ack failed, entry will be redelivered")
	}
}

func (c *EventConsumer) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-c.clock.After(c.cfg.PollInterval):
	}
}
