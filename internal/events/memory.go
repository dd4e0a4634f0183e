package events

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// memoryBroadcaster is a process-local Broadcaster used in tests and when
// Redis is not configured. Delivery is fan-out to every live subscriber;
// slow subscribers drop events rather than block the publisher.
type memoryBroadcaster struct {
	mu          sync.RWMutex
	subscribers map[int]chan Event
	nextID      int
}

// NewMemoryBroadcaster creates an in-process broadcaster.
func NewMemoryBroadcaster() Broadcaster {
	return &memoryBroadcaster{subscribers: make(map[int]chan Event)}
}

func (b *memoryBroadcaster) Publish(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subscribers {
		select {
		case sub <- event:
		default:
		}
	}
	return nil
}

func (b *memoryBroadcaster) Subscribe(ctx context.Context) (<-chan Event, func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	sub := make(chan Event, 16)
	b.subscribers[id] = sub
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subscribers, id)
			b.mu.Unlock()
			close(sub)
		})
	}
	return sub, cancel
}
