package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

type redisPubSub interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisPublisher publishes to "<prefix>:<type>" and "<prefix>:all".
type RedisPublisher struct {
	client redisPubSub
	prefix string
}

func NewRedisPublisher(client redisPubSub, prefix string) *RedisPublisher {
	if prefix == "" {
		prefix = "orders:events"
	}
	return &RedisPublisher{client: client, prefix: prefix}
}

func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	channels := []string{
		fmt.Sprintf("%s:%s", p.prefix, event.Type),
		p.prefix + ":all",
	}
	for _, channel := range channels {
		if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
			return fmt.Errorf("publish to %s: %w", channel, err)
		}
	}
	return nil
}
