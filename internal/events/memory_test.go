package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBroadcasterFansOut(t *testing.T) {
	b := NewMemoryBroadcaster()
	ctx := context.Background()

	first, cancelFirst := b.Subscribe(ctx)
	second, cancelSecond := b.Subscribe(ctx)
	defer cancelFirst()
	defer cancelSecond()

	require.NoError(t, b.Publish(ctx, Event{Kind: KindEscalationUpdate, TicketID: "t1"}))

	for _, sub := range []<-chan Event{first, second} {
		select {
		case event := <-sub:
			assert.Equal(t, KindEscalationUpdate, event.Kind)
			assert.Equal(t, "t1", event.TicketID)
			assert.NotEmpty(t, event.ID)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive event")
		}
	}
}

func TestMemoryBroadcasterCancelStopsDelivery(t *testing.T) {
	b := NewMemoryBroadcaster()
	ctx := context.Background()

	sub, cancel := b.Subscribe(ctx)
	cancel()

	_, open := <-sub
	assert.False(t, open)

	// Publishing after cancel must not panic or block.
	require.NoError(t, b.Publish(ctx, Event{Kind: KindTicketCreation, TicketID: "t2"}))
}
