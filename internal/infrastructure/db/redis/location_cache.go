package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/99minutos/cargo-tracking/internal/core/domain"
)

// LocationCache stores the last known coordinate per shipment.
// Key format: shipment:<id>:location
type LocationCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLocationCache(client *redis.Client, ttl time.Duration) *LocationCache {
	return &LocationCache{client: client, ttl: ttl}
}

func (c *LocationCache) Set(ctx context.Context, shipmentID int64, loc domain.LastLocation) error {
	payload, err := json.Marshal(loc)
	if err != nil {
		return fmt.Errorf("encode location: %w", err)
	}
	if err := c.client.Set(ctx, c.key(shipmentID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache location: %w", err)
	}
	return nil
}

func (c *LocationCache) Get(ctx context.Context, shipmentID int64) (*domain.LastLocation, error) {
	raw, err := c.client.Get(ctx, c.key(shipmentID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrLocationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read cached location: %w", err)
	}

	var loc domain.LastLocation
	if err := json.Unmarshal(raw, &loc); err != nil {
		return nil, fmt.Errorf("decode cached location: %w", err)
	}
	return &loc, nil
}

func (c *LocationCache) key(shipmentID int64) string {
	return fmt.Sprintf("shipment:%d:location", shipmentID)
}
