package chathub

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"penpal/backend/internal/models"

	"github.com/redis/go-redis/v9"
)

const roomChannelPrefix = "penpal:room:"

// EventBus carries room events between server instances.
type EventBus interface {
	PublishRoomEvent(ctx context.Context, channel string, payload []byte) error
	SubscribeRoomEvents(ctx context.Context, pattern string) *redis.PubSub
}

type envelope struct {
	RoomID    string       `json:"roomId"`
	Event     models.Event `json:"event"`
	ExcludeID string       `json:"excludeId,omitempty"`
}

// RedisRegistry keeps membership local and routes every broadcast through
// Redis Pub/Sub, so members connected to other instances receive it too.
// Listen must be running for any delivery to happen, including local.
type RedisRegistry struct {
	local *MemoryRegistry
	bus   EventBus
}

func NewRedisRegistry(bus EventBus) *RedisRegistry {
	return &RedisRegistry{local: NewMemoryRegistry(), bus: bus}
}

var _ Registry = (*RedisRegistry)(nil)

func (r *RedisRegistry) Join(roomID string, member Member)  { r.local.Join(roomID, member) }
func (r *RedisRegistry) Leave(roomID string, member Member) { r.local.Leave(roomID, member) }

func (r *RedisRegistry) Broadcast(ctx context.Context, roomID string, event models.Event, excludeID string) error {
	payload, err := json.Marshal(envelope{RoomID: roomID, Event: event, ExcludeID: excludeID})
	if err != nil {
		return fmt.Errorf("encode room event: %w", err)
	}
	if err := r.bus.PublishRoomEvent(ctx, roomChannelPrefix+roomID, payload); err != nil {
		log.Printf("ERROR: Failed to publish %s event for room %s: %v", event.Type, roomID, err)
		return err
	}
	return nil
}

// Listen delivers room events from Redis Pub/Sub to local members until ctx is done.
func (r *RedisRegistry) Listen(ctx context.Context) {
	pubsub := r.bus.SubscribeRoomEvents(ctx, roomChannelPrefix+"*")
	defer pubsub.Close()

	ch := pubsub.Channel()
	log.Printf("INFO: Listening for room events on %s*", roomChannelPrefix)

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			r.dispatch(ctx, []byte(msg.Payload))
		}
	}
}

func (r *RedisRegistry) dispatch(ctx context.Context, payload []byte) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		log.Printf("ERROR: Error unmarshalling Redis message: %v", err)
		return
	}
	_ = r.local.Broadcast(ctx, env.RoomID, env.Event, env.ExcludeID)
}
