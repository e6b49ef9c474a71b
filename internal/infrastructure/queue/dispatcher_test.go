package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/cargo-tracking/internal/core/domain"
)

type recordingHandler struct {
	mu      sync.Mutex
	updates []domain.LocationUpdate
	block   chan struct{}
}

func (h *recordingHandler) HandlePosition(_ context.Context, u domain.LocationUpdate) error {
	if h.block != nil {
		<-h.block
	}
	h.mu.Lock()
	h.updates = append(h.updates, u)
	h.mu.Unlock()
	return nil
}

func (h *recordingHandler) snapshot() []domain.LocationUpdate {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]domain.LocationUpdate(nil), h.updates...)
}

func TestDispatcher_PreservesPerShipmentOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := &recordingHandler{}
	d := NewDispatcher(4, h, zerolog.Nop())
	d.Start(ctx)

	for i := 0; i < 50; i++ {
		if !d.Enqueue(domain.LocationUpdate{ShipmentID: 7, Latitude: float64(i)}) {
			t.Fatalf("enqueue %d dropped", i)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(h.snapshot()) < 50 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	got := h.snapshot()
	if len(got) != 50 {
		t.Fatalf("expected 50 updates, got %d", len(got))
	}
	for i, u := range got {
		if u.Latitude != float64(i) {
			t.Fatalf("update %d out of order: latitude %v", i, u.Latitude)
		}
	}
}

func TestDispatcher_DropsWhenShardFull(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := &recordingHandler{block: make(chan struct{})}
	defer close(h.block)

	d := NewDispatcher(1, h, zerolog.Nop())
	d.Start(ctx)

	// one in flight inside the handler plus a full buffer
	accepted := 0
	for i := 0; i < channelBuffer+10; i++ {
		if d.Enqueue(domain.LocationUpdate{ShipmentID: 1}) {
			accepted++
		}
	}
	if accepted > channelBuffer+1 {
		t.Errorf("accepted %d updates, expected at most %d", accepted, channelBuffer+1)
	}
	if accepted < channelBuffer {
		t.Errorf("accepted %d updates, expected at least %d", accepted, channelBuffer)
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(0, &recordingHandler{}, zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
	for _, id := range []int64{0, 1, 42, -3, 99999} {
		a, b := d.shardIndex(id), d.shardIndex(id)
		if a != b || a < 0 || a >= defaultWorkers {
			t.Errorf("shardIndex(%d) = %d, %d", id, a, b)
		}
	}
}
