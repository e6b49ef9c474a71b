package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/99minutos/cargo-tracking/internal/core/domain"
	"github.com/99minutos/cargo-tracking/internal/core/ports"
)

// groupStartID makes a new group see entries appended before it existed.
const groupStartID = "0"

// EventStream is the durable shipment event log backed by a Redis stream
// and a single consumer group.
type EventStream struct {
	client *redis.Client
	stream string
	group  string
}

func NewEventStream(client *redis.Client, stream, group string) *EventStream {
	return &EventStream{client: client, stream: stream, group: group}
}

// Publish appends e with XADD. Entries for the same shipment keep the order
// in which a single caller appends them.
func (s *EventStream) Publish(ctx context.Context, e domain.StatusChangeEvent) error {
	err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: e.Fields(),
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w: %w", s.stream, domain.ErrDependencyUnavailable, err)
	}
	return nil
}

func (s *EventStream) EnsureGroup(ctx context.Context) (bool, error) {
	err := s.client.XGroupCreateMkStream(ctx, s.stream, s.group, groupStartID).Err()
	switch {
	case err == nil:
		return true, nil
	case isBusyGroup(err):
		return false, nil
	default:
		return false, fmt.Errorf("xgroup create %s/%s: %w", s.stream, s.group, err)
	}
}

func (s *EventStream) Read(ctx context.Context, consumer, cursor string, count int64) ([]ports.StreamEntry, error) {
	res, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    s.group,
		Consumer: consumer,
		Streams:  []string{s.stream, cursor},
		Count:    count,
		Block:    -1, // never block; the consumer paces itself
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("xreadgroup %s: %w", s.stream, err)
	}

	var out []ports.StreamEntry
	for _, st := range res {
		out = append(out, toEntries(st.Messages)...)
	}
	return out, nil
}

func (s *EventStream) ClaimIdle(ctx context.Context, consumer string, minIdle time.Duration, count int64) ([]ports.StreamEntry, error) {
	msgs, _, err := s.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   s.stream,
		Group:    s.group,
		Consumer: consumer,
		MinIdle:  minIdle,
		Start:    "0-0",
		Count:    count,
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("xautoclaim %s: %w", s.stream, err)
	}
	return toEntries(msgs), nil
}

func (s *EventStream) Ack(ctx context.Context, id string) error {
	if err := s.client.XAck(ctx, s.stream, s.group, id).Err(); err != nil {
		return fmt.Errorf("xack %s: %w", id, err)
	}
	return nil
}

// toEntries flattens entry values to strings.
func toEntries(msgs []redis.XMessage) []ports.StreamEntry {
	out := make([]ports.StreamEntry, 0, len(msgs))
	for _, m := range msgs {
		values := make(map[string]string, len(m.Values))
		for k, v := range m.Values {
			values[k] = fmt.Sprint(v)
		}
		out = append(out, ports.StreamEntry{ID: m.ID, Values: values})
	}
	return out
}

func isBusyGroup(err error) bool {
	return strings.HasPrefix(err.Error(), "BUSYGROUP")
}
