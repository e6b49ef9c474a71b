package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/cargo-tracking/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type fakeClient struct {
	id     string
	mu     sync.Mutex
	frames [][]byte
	full   bool
	closed bool
}

func (c *fakeClient) ID() string { return c.id }

func (c *fakeClient) Send(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.full {
		return false
	}
	c.frames = append(c.frames, frame)
	return true
}

func (c *fakeClient) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *fakeClient) received(t *testing.T) []Frame {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Frame, 0, len(c.frames))
	for _, raw := range c.frames {
		f, err := Decode(raw)
		if err != nil {
			t.Fatalf("decode frame: %v", err)
		}
		out = append(out, f)
	}
	return out
}

// memBackplane connects hubs in the same process.
type memBackplane struct {
	mu       sync.Mutex
	handlers []func(context.Context, []byte)
	err      error
}

func (b *memBackplane) Publish(ctx context.Context, _ string, payload []byte) error {
	if b.err != nil {
		return b.err
	}
	b.mu.Lock()
	handlers := append([]func(context.Context, []byte){}, b.handlers...)
	b.mu.Unlock()
	for _, h := range handlers {
		h(ctx, payload)
	}
	return nil
}

func (b *memBackplane) Subscribe(ctx context.Context, _ string, handler func(context.Context, []byte)) error {
	b.mu.Lock()
	b.handlers = append(b.handlers, handler)
	b.mu.Unlock()
	<-ctx.Done()
	return nil
}

func (b *memBackplane) subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers)
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestHub_RegisterAutoJoinsUserGroup(t *testing.T) {
	h := NewHub(zerolog.Nop())
	c := &fakeClient{id: "c1"}
	h.Register(c, "u1")

	if groups := h.Groups("c1"); len(groups) != 1 || groups[0] != "user-u1" {
		t.Fatalf("expected [user-u1], got %v", groups)
	}

	anon := &fakeClient{id: "c2"}
	h.Register(anon, "")
	if groups := h.Groups("c2"); len(groups) != 0 {
		t.Fatalf("expected anonymous connection in no groups, got %v", groups)
	}
}

func TestHub_JoinLeaveAndSend(t *testing.T) {
	h := NewHub(zerolog.Nop())
	c1 := &fakeClient{id: "c1"}
	c2 := &fakeClient{id: "c2"}
	h.Register(c1, "")
	h.Register(c2, "")

	if err := h.Join("c1", "shipment-1"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := h.Join("c2", "shipment-1"); err != nil {
		t.Fatalf("join: %v", err)
	}
	h.Leave("c2", "shipment-1")

	payload := domain.StatusPush{ShipmentID: 1, NewStatus: domain.StatusDelivered}
	if err := h.SendToGroup(context.Background(), "shipment-1", domain.PushStatusUpdate, payload); err != nil {
		t.Fatalf("send: %v", err)
	}

	got := c1.received(t)
	if len(got) != 1 || got[0].Type != domain.PushStatusUpdate {
		t.Fatalf("unexpected frames for c1: %+v", got)
	}
	var decoded domain.StatusPush
	if err := json.Unmarshal(got[0].Payload, &decoded); err != nil || decoded.NewStatus != domain.StatusDelivered {
		t.Fatalf("unexpected payload %s: %v", got[0].Payload, err)
	}
	if len(c2.received(t)) != 0 {
		t.Fatalf("expected c2 to receive nothing after leaving")
	}
}

func TestHub_JoinUnknownConnection(t *testing.T) {
	h := NewHub(zerolog.Nop())
	if err := h.Join("ghost", "shipment-1"); !errors.Is(err, ErrUnknownConnection) {
		t.Fatalf("expected ErrUnknownConnection, got %v", err)
	}
}

func TestHub_SendToUser(t *testing.T) {
	h := NewHub(zerolog.Nop())
	c := &fakeClient{id: "c1"}
	h.Register(c, "u7")

	if err := h.SendToUser(context.Background(), "u7", domain.PushNotification, "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}
	got := c.received(t)
	if len(got) != 1 || string(got[0].Payload) != `"hello"` {
		t.Fatalf("unexpected frames: %+v", got)
	}
}

func TestHub_UnregisterCleansMemberships(t *testing.T) {
	h := NewHub(zerolog.Nop())
	c := &fakeClient{id: "c1"}
	h.Register(c, "u1")
	_ = h.Join("c1", "shipment-3")

	h.Unregister("c1")

	if h.ConnectionCount() != 0 {
		t.Fatalf("expected no connections")
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.groups) != 0 || len(h.members) != 0 {
		t.Fatalf("expected empty registries, groups=%v members=%v", h.groups, h.members)
	}
}

func TestHub_DropsSlowClient(t *testing.T) {
	h := NewHub(zerolog.Nop())
	slow := &fakeClient{id: "slow", full: true}
	h.Register(slow, "u1")

	if err := h.SendToUser(context.Background(), "u1", domain.PushNotification, "x"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if h.ConnectionCount() != 0 || !slow.closed {
		t.Fatalf("expected slow client dropped and closed")
	}
}

func TestHub_BackplaneRelaysAcrossInstances(t *testing.T) {
	bp := &memBackplane{}
	a := NewHub(zerolog.Nop(), WithBackplane(bp, "hub"))
	b := NewHub(zerolog.Nop(), WithBackplane(bp, "hub"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = a.Run(ctx) }()
	go func() { _ = b.Run(ctx) }()
	for bp.subscribers() < 2 {
		time.Sleep(time.Millisecond)
	}

	onA := &fakeClient{id: "a1"}
	onB := &fakeClient{id: "b1"}
	a.Register(onA, "")
	b.Register(onB, "")
	_ = a.Join("a1", "shipment-5")
	_ = b.Join("b1", "shipment-5")

	if err := a.SendToGroup(ctx, "shipment-5", domain.PushLocationUpdate, domain.LocationPush{ShipmentID: 5}); err != nil {
		t.Fatalf("send: %v", err)
	}

	if n := len(onA.received(t)); n != 1 {
		t.Fatalf("expected origin member to get exactly 1 frame, got %d", n)
	}
	if n := len(onB.received(t)); n != 1 {
		t.Fatalf("expected remote member to get 1 frame, got %d", n)
	}
}

func TestHub_LocalSendSkipsBackplane(t *testing.T) {
	bp := &memBackplane{}
	a := NewHub(zerolog.Nop(), WithBackplane(bp, "hub"))
	b := NewHub(zerolog.Nop(), WithBackplane(bp, "hub"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = a.Run(ctx) }()
	go func() { _ = b.Run(ctx) }()
	for bp.subscribers() < 2 {
		time.Sleep(time.Millisecond)
	}

	viewer := &fakeClient{id: "b1"}
	b.Register(viewer, "")
	_ = b.Join("b1", "shipment-5")

	// Both instances see the same raw position and relay it.
	push := domain.LocationPush{ShipmentID: 5, Latitude: 19.4}
	for _, h := range []*Hub{a, b} {
		if err := h.SendToGroupLocal(ctx, "shipment-5", domain.PushLocationUpdate, push); err != nil {
			t.Fatalf("send: %v", err)
		}
	}

	got := viewer.received(t)
	if len(got) != 1 || got[0].Type != domain.PushLocationUpdate {
		t.Fatalf("expected exactly 1 location frame, got %+v", got)
	}
}

func TestHub_BackplaneFailureStillDeliversLocally(t *testing.T) {
	bp := &memBackplane{err: errors.New("redis down")}
	h := NewHub(zerolog.Nop(), WithBackplane(bp, "hub"))
	c := &fakeClient{id: "c1"}
	h.Register(c, "u1")

	if err := h.SendToUser(context.Background(), "u1", domain.PushNotification, "x"); err == nil {
		t.Fatalf("expected backplane error")
	}
	if len(c.received(t)) != 1 {
		t.Fatalf("expected local delivery despite backplane failure")
	}
}

func TestHub_ApplyCommands(t *testing.T) {
	h := NewHub(zerolog.Nop())
	h.Register(&fakeClient{id: "c1"}, "u1")

	if err := h.apply("c1", Command{Action: "join", ShipmentID: 8}); err != nil {
		t.Fatalf("join: %v", err)
	}
	groups := h.Groups("c1")
	sort.Strings(groups)
	if len(groups) != 2 || groups[0] != "shipment-8" || groups[1] != "user-u1" {
		t.Fatalf("unexpected groups %v", groups)
	}

	if err := h.apply("c1", Command{Action: "leave", ShipmentID: 8}); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if err := h.apply("c1", Command{Action: "spy", ShipmentID: 8}); !errors.Is(err, errUnknownAction) {
		t.Fatalf("expected errUnknownAction, got %v", err)
	}
	if err := h.apply("c1", Command{Action: "join"}); err == nil {
		t.Fatalf("expected error for missing shipment id")
	}
}
