package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

var errNoRedis = errors.New("redis is not configured")

// PublishRoomEvent publishes a room event to Redis Pub/Sub.
func (s *Service) PublishRoomEvent(ctx context.Context, channel string, payload []byte) error {
	if s.Redis == nil {
		return errNoRedis
	}
	return s.Redis.Publish(ctx, channel, payload).Err()
}

// SubscribeRoomEvents subscribes to every channel matching pattern.
func (s *Service) SubscribeRoomEvents(ctx context.Context, pattern string) *redis.PubSub {
	return s.Redis.PSubscribe(ctx, pattern)
}
