package queue

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/99minutos/cargo-tracking/internal/api/metrics"
	"github.com/99minutos/cargo-tracking/internal/core/domain"
	"github.com/99minutos/cargo-tracking/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Dispatcher routes position updates to a fixed set of workers sharded on
// the shipment id, so updates of one shipment are handled in arrival order.
type Dispatcher struct {
	workers []chan domain.LocationUpdate
	handler ports.PositionHandler
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, handler ports.PositionHandler, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.LocationUpdate, numWorkers),
		handler: handler,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.LocationUpdate, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands update to the worker owning its shipment. It never blocks:
// when that worker's buffer is full the update is dropped and false is
// returned. Positions are at-most-once, so a newer one will follow.
func (d *Dispatcher) Enqueue(update domain.LocationUpdate) bool {
	idx := d.shardIndex(update.ShipmentID)
	select {
	case d.workers[idx] <- update:
		metrics.RelayQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return true
	default:
		metrics.PositionsDroppedTotal.WithLabelValues("queue_full").Inc()
		d.log.Warn().
			Int64("shipment_id", update.ShipmentID).
			Int("worker_id", idx).
			Msg("relay queue full, dropping position")
		return false
	}
}

// shardIndex maps a shipment id deterministically to a worker index.
func (d *Dispatcher) shardIndex(shipmentID int64) int {
	n := int64(len(d.workers))
	idx := shipmentID % n
	if idx < 0 {
		idx += n
	}
	return int(idx)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.LocationUpdate) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-ch:
			if !ok {
				return
			}
			metrics.RelayQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			if err := d.handler.HandlePosition(ctx, update); err != nil {
				d.log.Error().Err(err).
					Int64("shipment_id", update.ShipmentID).
					Int("worker_id", id).
					Msg("position relay failed")
			}
		}
	}
}
