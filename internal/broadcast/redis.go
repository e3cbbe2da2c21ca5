package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"campusvote/internal/cache"
)

// RedisPublisher publishes events on a redis channel so every server process
// relays them to its own websocket clients.
type RedisPublisher struct {
	client  *cache.Client
	channel string
}

// Ensure RedisPublisher implements Publisher
var _ Publisher = (*RedisPublisher)(nil)

// NewRedisPublisher creates a publisher on the given channel.
func NewRedisPublisher(client *cache.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

// Publish encodes and sends the event.
func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload); err != nil {
		return fmt.Errorf("publish %s: %w", p.channel, err)
	}
	return nil
}

// Relay forwards events from a redis channel into a local Hub.
type Relay struct {
	client  *cache.Client
	channel string
	hub     *Hub
}

// NewRelay creates a relay from channel into hub.
func NewRelay(client *cache.Client, channel string, hub *Hub) *Relay {
	return &Relay{client: client, channel: channel, hub: hub}
}

// Run subscribes and forwards until ctx is done or the subscription fails.
func (r *Relay) Run(ctx context.Context) error {
	sub, err := r.client.Subscribe(ctx, r.channel)
	if err != nil {
		return err
	}
	defer sub.Close()

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return fmt.Errorf("relay %s: subscription closed", r.channel)
			}
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.Warn("dropping malformed broadcast event", "channel", r.channel, "error", err)
				continue
			}
			_ = r.hub.Publish(ctx, event)
		}
	}
}
