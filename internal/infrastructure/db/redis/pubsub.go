package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/99minutos/cargo-tracking/internal/core/domain"
)

// PubSub is a fire-and-forget channel over Redis PUBLISH/SUBSCRIBE. It also
// satisfies realtime.Backplane.
type PubSub struct {
	client *redis.Client
	log    zerolog.Logger
}

func NewPubSub(client *redis.Client, log zerolog.Logger) *PubSub {
	return &PubSub{client: client, log: log}
}

func (p *PubSub) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w: %w", channel, domain.ErrDependencyUnavailable, err)
	}
	return nil
}

// Subscribe calls handler for every message on channel until ctx is done.
// go-redis re-subscribes transparently after reconnects.
func (p *PubSub) Subscribe(ctx context.Context, channel string, handler func(ctx context.Context, payload []byte)) error {
	sub := p.client.Subscribe(ctx, channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", channel, err)
	}
	p.log.Info().Str("channel", channel).Msg("subscribed")

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			handler(ctx, []byte(msg.Payload))
		}
	}
}

// PositionChannel publishes raw location updates as JSON on a fixed channel.
type PositionChannel struct {
	pubsub  *PubSub
	channel string
}

func NewPositionChannel(pubsub *PubSub, channel string) *PositionChannel {
	return &PositionChannel{pubsub: pubsub, channel: channel}
}

func (c *PositionChannel) PublishPosition(ctx context.Context, update domain.LocationUpdate) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("encode position: %w", err)
	}
	return c.pubsub.Publish(ctx, c.channel, payload)
}

// Subscribe decodes each message and passes it to handle. Undecodable
// payloads are logged and skipped.
func (c *PositionChannel) Subscribe(ctx context.Context, handle func(domain.LocationUpdate)) error {
	return c.pubsub.Subscribe(ctx, c.channel, func(_ context.Context, payload []byte) {
		var update domain.LocationUpdate
		if err := json.Unmarshal(payload, &update); err != nil {
			c.pubsub.log.Warn().Err(err).Str("channel", c.channel).Msg("invalid position payload")
			return
		}
		handle(update)
	})
}
