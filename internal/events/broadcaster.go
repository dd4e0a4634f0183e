package events

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// escalationsChannel is the shared broadcast group every live connection
// subscribes to.
const escalationsChannel = "escalations"

// Broadcaster publishes events to the shared group and hands out
// per-connection subscriptions.
type Broadcaster interface {
	Publish(ctx context.Context, event Event) error
	// Subscribe returns a channel of inbound events and a cancel function
	// releasing the subscription. The channel is closed on cancel.
	Subscribe(ctx context.Context) (<-chan Event, func())
}

type redisBroadcaster struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisBroadcaster builds a Broadcaster over Redis pub/sub.
func NewRedisBroadcaster(client *redis.Client, logger *zap.Logger) Broadcaster {
	return &redisBroadcaster{client: client, logger: logger}
}

func (b *redisBroadcaster) Publish(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, escalationsChannel, payload).Err()
}

func (b *redisBroadcaster) Subscribe(ctx context.Context) (<-chan Event, func()) {
	subCtx, cancel := context.WithCancel(ctx)
	pubsub := b.client.Subscribe(subCtx, escalationsChannel)
	out := make(chan Event, 16)

	go func() {
		defer close(out)
		inbound := pubsub.Channel()
		for {
			select {
			case msg, ok := <-inbound:
				if !ok {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					b.logger.Warn("dropping malformed broadcast", zap.Error(err))
					continue
				}
				select {
				case out <- event:
				case <-subCtx.Done():
					return
				}
			case <-subCtx.Done():
				return
			}
		}
	}()

	return out, func() {
		cancel()
		_ = pubsub.Close()
	}
}
