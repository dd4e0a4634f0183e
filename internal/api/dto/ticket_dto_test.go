package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/escalation-service/internal/domain"
)

func TestSerializeTicketFormatsLocalTime(t *testing.T) {
	loc, err := time.LoadLocation("Africa/Nairobi")
	require.NoError(t, err)

	created := time.Date(2024, time.January, 8, 6, 30, 0, 0, time.UTC)
	ticket := &domain.Ticket{
		ID:        "ticket-1",
		Title:     "ATM offline",
		Priority:  domain.TicketPriorityCritical,
		CreatedAt: created,
	}

	payload := SerializeTicket(ticket, loc)

	// 06:30 UTC is 09:30 in Nairobi.
	assert.Equal(t, "2024-01-08 09:30", payload.CreatedAt)
	assert.Equal(t, "Critical", payload.Priority)
	assert.Nil(t, payload.EscalatedAt)
	assert.False(t, payload.IsEscalated)
}

func TestSerializeTicketNotificationType(t *testing.T) {
	loc := time.UTC
	now := time.Now()
	assignee := "agent-1"

	escalated := &domain.Ticket{ID: "t1", EscalatedAt: &now, AssigneeID: &assignee, CreatedAt: now}
	assert.Equal(t, domain.NotificationTypeEscalated, SerializeTicket(escalated, loc).NotificationType)
	assert.True(t, SerializeTicket(escalated, loc).IsEscalated)

	unassigned := &domain.Ticket{ID: "t2", CreatedAt: now}
	assert.Equal(t, domain.NotificationTypeUnassigned, SerializeTicket(unassigned, loc).NotificationType)

	assigned := &domain.Ticket{ID: "t3", AssigneeID: &assignee, CreatedAt: now}
	assert.Equal(t, domain.NotificationTypeNew, SerializeTicket(assigned, loc).NotificationType)

	// The is_escalated flag alone marks the ticket escalated.
	flagged := &domain.Ticket{ID: "t4", IsEscalated: true, CreatedAt: now}
	assert.Equal(t, domain.NotificationTypeEscalated, SerializeTicket(flagged, loc).NotificationType)
}

func TestSerializeNotificationOverridesType(t *testing.T) {
	loc := time.UTC
	now := time.Now()
	ticket := &domain.Ticket{ID: "t1", EscalatedAt: &now, CreatedAt: now}
	record := &domain.UserNotification{
		ID:               "n1",
		TicketID:         "t1",
		NotificationType: domain.NotificationTypeUnassigned,
	}

	payload := SerializeNotification(record, ticket, loc)

	assert.Equal(t, "n1", payload.NotificationID)
	assert.Equal(t, domain.NotificationTypeUnassigned, payload.NotificationType)
	assert.Equal(t, domain.NotificationTypeUnassigned, payload.Ticket.NotificationType)
	assert.True(t, payload.Ticket.IsEscalated)
}
