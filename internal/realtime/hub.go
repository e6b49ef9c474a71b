// Package realtime implements the fan-out hub that pushes location and
// status events to connected clients grouped by shipment and by user.
//
// Membership is held in memory per process. When a Backplane is configured,
// every group send is also published on it so that other instances deliver
// the frame to their own local members.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/cargo-tracking/internal/api/metrics"
	"github.com/99minutos/cargo-tracking/internal/core/domain"
)

var ErrUnknownConnection = errors.New("unknown connection")

// Client is a single push connection.
type Client interface {
	ID() string
	// Send queues a frame without blocking. It returns false when the
	// client cannot keep up.
	Send(frame []byte) bool
	Close()
}

// Backplane relays group sends between hub instances.
type Backplane interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string, handler func(ctx context.Context, payload []byte)) error
}

// Frame is the wire envelope written to clients.
type Frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// relayEnvelope travels over the backplane.
type relayEnvelope struct {
	Origin string          `json:"origin"`
	Group  string          `json:"group"`
	Event  string          `json:"event"`
	Frame  json.RawMessage `json:"frame"`
}

type Option func(*Hub)

// WithBackplane relays group sends through bp on channel.
func WithBackplane(bp Backplane, channel string) Option {
	return func(h *Hub) {
		h.backplane = bp
		h.channel = channel
	}
}

// Hub is an in-process registry of connections and their group memberships.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]Client              // conn id -> client
	groups  map[string]map[string]struct{} // group -> conn ids
	members map[string]map[string]struct{} // conn id -> groups

	backplane  Backplane
	channel    string
	instanceID string
	log        zerolog.Logger
}

func NewHub(log zerolog.Logger, opts ...Option) *Hub {
	h := &Hub{
		clients:    make(map[string]Client),
		groups:     make(map[string]map[string]struct{}),
		members:    make(map[string]map[string]struct{}),
		instanceID: uuid.NewString(),
		log:        log,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register adds c and, when userID is set, joins it to user-<userID>.
func (h *Hub) Register(c Client, userID string) {
	h.mu.Lock()
	h.clients[c.ID()] = c
	h.members[c.ID()] = make(map[string]struct{})
	if userID != "" {
		h.joinLocked(c.ID(), domain.UserGroup(userID))
	}
	h.mu.Unlock()

	metrics.HubConnections.Inc()
	h.log.Debug().Str("conn_id", c.ID()).Str("user_id", userID).Msg("connection registered")
}

// Unregister removes the connection from every group it joined.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	_, ok := h.clients[connID]
	if ok {
		for group := range h.members[connID] {
			h.leaveLocked(connID, group)
		}
		delete(h.members, connID)
		delete(h.clients, connID)
	}
	h.mu.Unlock()

	if ok {
		metrics.HubConnections.Dec()
		h.log.Debug().Str("conn_id", connID).Msg("connection unregistered")
	}
}

func (h *Hub) Join(connID, group string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[connID]; !ok {
		return fmt.Errorf("join %s: %w", group, ErrUnknownConnection)
	}
	h.joinLocked(connID, group)
	return nil
}

func (h *Hub) Leave(connID, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(connID, group)
}

func (h *Hub) joinLocked(connID, group string) {
	conns, ok := h.groups[group]
	if !ok {
		conns = make(map[string]struct{})
		h.groups[group] = conns
	}
	conns[connID] = struct{}{}
	h.members[connID][group] = struct{}{}
}

func (h *Hub) leaveLocked(connID, group string) {
	if conns, ok := h.groups[group]; ok {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(h.groups, group)
		}
	}
	if groups, ok := h.members[connID]; ok {
		delete(groups, group)
	}
}

// Groups returns the groups connID belongs to.
func (h *Hub) Groups(connID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, 0, len(h.members[connID]))
	for g := range h.members[connID] {
		out = append(out, g)
	}
	return out
}

// ConnectionCount returns the number of local connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SendToGroup delivers event to local members of group and, with a
// backplane, publishes it for other instances. Only a backplane failure is
// returned; local members always receive the frame.
func (h *Hub) SendToGroup(ctx context.Context, group, event string, payload any) error {
	frame, err := encodeFrame(event, payload)
	if err != nil {
		return fmt.Errorf("send to %s: %w", group, err)
	}

	h.deliverLocal(group, event, frame)

	if h.backplane == nil {
		return nil
	}
	env, err := json.Marshal(relayEnvelope{Origin: h.instanceID, Group: group, Event: event, Frame: frame})
	if err != nil {
		return fmt.Errorf("send to %s: %w", group, err)
	}
	if err := h.backplane.Publish(ctx, h.channel, env); err != nil {
		return fmt.Errorf("send to %s: backplane: %w", group, err)
	}
	return nil
}

// SendToGroupLocal delivers event to local members of group only. Use it
// for events every instance already receives on its own.
func (h *Hub) SendToGroupLocal(_ context.Context, group, event string, payload any) error {
	frame, err := encodeFrame(event, payload)
	if err != nil {
		return fmt.Errorf("send to %s: %w", group, err)
	}
	h.deliverLocal(group, event, frame)
	return nil
}

// SendToUser delivers event to the personal group of userID.
func (h *Hub) SendToUser(ctx context.Context, userID, event string, payload any) error {
	return h.SendToGroup(ctx, domain.UserGroup(userID), event, payload)
}

// Run consumes the backplane until ctx is done. Without a backplane it
// returns immediately.
func (h *Hub) Run(ctx context.Context) error {
	if h.backplane == nil {
		return nil
	}
	return h.backplane.Subscribe(ctx, h.channel, h.handleRelay)
}

func (h *Hub) handleRelay(_ context.Context, payload []byte) {
	var env relayEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		h.log.Warn().Err(err).Msg("invalid backplane envelope")
		return
	}
	if env.Origin == h.instanceID {
		return
	}
	h.deliverLocal(env.Group, env.Event, env.Frame)
}

func (h *Hub) deliverLocal(group, event string, frame []byte) {
	h.mu.RLock()
	targets := make([]Client, 0, len(h.groups[group]))
	for connID := range h.groups[group] {
		targets = append(targets, h.clients[connID])
	}
	h.mu.RUnlock()

	var slow []Client
	for _, c := range targets {
		if c.Send(frame) {
			metrics.HubPushesTotal.WithLabelValues(event).Inc()
			continue
		}
		slow = append(slow, c)
	}

	for _, c := range slow {
		metrics.HubSlowClientsTotal.Inc()
		h.log.Warn().Str("conn_id", c.ID()).Str("group", group).Msg("dropping slow connection")
		h.Unregister(c.ID())
		c.Close()
	}
}

func encodeFrame(event string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", event, err)
	}
	return json.Marshal(Frame{Type: event, Payload: raw})
}
