package domain

import "time"

// NotificationType classifies a per-user delivery record.
type NotificationType string

const (
	NotificationTypeEscalated  NotificationType = "escalated"
	NotificationTypeUnassigned NotificationType = "unassigned"
	NotificationTypeNew        NotificationType = "new"
)

// UserNotification is a per-user delivery record for a ticket event. The
// fan-out layer only reads these; the UI marks them read.
type UserNotification struct {
	ID               string
	UserID           string
	TicketID         string
	NotificationType NotificationType
	IsRead           bool
	CreatedAt        time.Time
}
