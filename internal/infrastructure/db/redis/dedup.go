package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = 24 * time.Hour

// DedupStore provides idempotency markers backed by Redis.
// Key format: dedup:<key>
type DedupStore struct {
	client *redis.Client
}

// NewDedupStore creates a DedupStore wrapping the given Redis client.
func NewDedupStore(client *redis.Client) *DedupStore {
	return &DedupStore{client: client}
}

// Seen reports whether key has already been marked.
func (d *DedupStore) Seen(ctx context.Context, key string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records key as processed (expires after dedupTTL).
func (d *DedupStore) Mark(ctx context.Context, key string) error {
	return d.client.Set(ctx, d.key(key), "1", dedupTTL).Err()
}

func (d *DedupStore) key(key string) string {
	return "dedup:" + key
}
