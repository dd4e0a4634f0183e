package ws

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/escalation-service/internal/domain"
	"github.com/spec-kit/escalation-service/internal/repository"
)

func TestBuildSnapshotDeduplicatesByTicket(t *testing.T) {
	views := []repository.NotificationView{
		notificationFor("u1", "t2"),
		notificationFor("u1", "t2"),
		notificationFor("u1", "t1"),
	}
	views[0].Notification.NotificationType = domain.NotificationTypeEscalated

	payloads, count := BuildSnapshot(views, ElevatedScope{UserID: "u1"}, time.UTC)

	require.Len(t, payloads, 2)
	assert.Equal(t, 2, count)
	assert.Equal(t, "t2", payloads[0].Ticket.ID, "newest row for a ticket wins")
	assert.Equal(t, domain.NotificationTypeEscalated, payloads[0].NotificationType)
	assert.Equal(t, "t1", payloads[1].Ticket.ID)
}

func TestBuildSnapshotCapsListButCountsAllTickets(t *testing.T) {
	var views []repository.NotificationView
	for i := 0; i < 8; i++ {
		views = append(views, notificationFor("u1", fmt.Sprintf("t%d", i)))
	}

	payloads, count := BuildSnapshot(views, ElevatedScope{UserID: "u1"}, time.UTC)

	assert.Len(t, payloads, 5)
	assert.Equal(t, 8, count, "count covers every distinct ticket, not just the capped list")
}

func TestBuildSnapshotAppliesScope(t *testing.T) {
	visible := notificationFor("u1", "t1")
	visible.CustomerOverseerID = strPtr("u1")
	hidden := notificationFor("u1", "t2")

	payloads, count := BuildSnapshot(
		[]repository.NotificationView{visible, hidden},
		OverseerScope{UserID: "u1"},
		time.UTC,
	)

	require.Len(t, payloads, 1)
	assert.Equal(t, "t1", payloads[0].Ticket.ID)
	assert.Equal(t, 1, count)
}

func TestBuildSnapshotEmptyScope(t *testing.T) {
	payloads, count := BuildSnapshot(
		[]repository.NotificationView{notificationFor("u1", "t1")},
		EmptyScope{},
		time.UTC,
	)
	assert.Empty(t, payloads)
	assert.Zero(t, count)
}
