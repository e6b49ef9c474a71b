package ports

import (
	"context"
	"time"

	"github.com/99minutos/cargo-tracking/internal/core/domain"
)

// PositionPublisher fans raw coordinates out to live viewers. Delivery is
// at-most-once.
type PositionPublisher interface {
	PublishPosition(ctx context.Context, update domain.LocationUpdate) error
}

// PositionHandler consumes raw coordinates from the broadcast channel.
type PositionHandler interface {
	HandlePosition(ctx context.Context, update domain.LocationUpdate) error
}

// StatusEventPublisher appends status-change events to the durable stream.
type StatusEventPublisher interface {
	Publish(ctx context.Context, event domain.StatusChangeEvent) error
}

// StreamEntry is one raw entry read from the durable event stream.
type StreamEntry struct {
	ID     string
	Values map[string]string
}

// StreamReadNew is the read cursor for entries never delivered to the group.
const StreamReadNew = ">"

// EventStreamReader exposes consumer-group reads over the event stream.
type EventStreamReader interface {
	// EnsureGroup creates the consumer group if missing. created is false
	// when the group already existed.
	EnsureGroup(ctx context.Context) (created bool, err error)
	// Read returns up to count entries after cursor. StreamReadNew reads
	// undelivered entries; any other id re-reads this consumer's pending ones.
	Read(ctx context.Context, consumer, cursor string, count int64) ([]StreamEntry, error)
	// ClaimIdle transfers entries pending longer than minIdle to consumer.
	ClaimIdle(ctx context.Context, consumer string, minIdle time.Duration, count int64) ([]StreamEntry, error)
	Ack(ctx context.Context, id string) error
}

// Notifier pushes a status notification through the notification layer.
type Notifier interface {
	Notify(ctx context.Context, n domain.StatusNotification) error
}

// RealtimePusher delivers named events to hub groups.
type RealtimePusher interface {
	SendToGroup(ctx context.Context, group, event string, payload any) error
	SendToUser(ctx context.Context, userID, event string, payload any) error
}

// LocalPusher delivers to hub group members on this instance only.
type LocalPusher interface {
	SendToGroupLocal(ctx context.Context, group, event string, payload any) error
}

// DedupStore remembers processed keys for a bounded time.
type DedupStore interface {
	Seen(ctx context.Context, key string) (bool, error)
	Mark(ctx context.Context, key string) error
}
