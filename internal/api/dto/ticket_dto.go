package dto

import (
	"strings"
	"time"

	"github.com/spec-kit/escalation-service/internal/domain"
)

// timeLayout is the localized wall-clock format used on the live channel.
const timeLayout = "2006-01-02 15:04"

// TicketPayload is the ticket shape shared by every live-channel message.
type TicketPayload struct {
	ID               string                  `json:"id"`
	Title            string                  `json:"title"`
	Priority         string                  `json:"priority"`
	CreatedAt        string                  `json:"created_at"`
	EscalatedAt      *string                 `json:"escalated_at"`
	IsEscalated      bool                    `json:"is_escalated"`
	NotificationType domain.NotificationType `json:"notification_type"`
}

// NotificationPayload wraps a ticket payload with its delivery record.
type NotificationPayload struct {
	NotificationID   string                  `json:"notification_id"`
	IsRead           bool                    `json:"is_read"`
	NotificationType domain.NotificationType `json:"notification_type"`
	Ticket           TicketPayload           `json:"ticket"`
}

// NotificationsList is the snapshot message pushed on connect and after
// every visible event.
type NotificationsList struct {
	Type    string                `json:"type"`
	Tickets []NotificationPayload `json:"tickets"`
	Count   int                   `json:"count"`
}

// SerializeTicket converts a ticket for the live channel. Timestamps are
// localized wall-clock strings; notification_type is derived from the
// ticket state (escalated beats unassigned beats new).
func SerializeTicket(t *domain.Ticket, loc *time.Location) TicketPayload {
	createdAt := t.CreatedAt.In(loc).Format(timeLayout)

	var escalatedAt *string
	if t.EscalatedAt != nil {
		formatted := t.EscalatedAt.In(loc).Format(timeLayout)
		escalatedAt = &formatted
	}

	isEscalated := t.IsEscalated || escalatedAt != nil

	notifType := domain.NotificationTypeNew
	if isEscalated {
		notifType = domain.NotificationTypeEscalated
	} else if t.AssigneeID == nil {
		notifType = domain.NotificationTypeUnassigned
	}

	return TicketPayload{
		ID:               t.ID,
		Title:            t.Title,
		Priority:         priorityDisplay(t.Priority),
		CreatedAt:        createdAt,
		EscalatedAt:      escalatedAt,
		IsEscalated:      isEscalated,
		NotificationType: notifType,
	}
}

// SerializeNotification converts a delivery record, overriding the derived
// notification type with the per-user one stored on the record.
func SerializeNotification(n *domain.UserNotification, ticket *domain.Ticket, loc *time.Location) NotificationPayload {
	payload := SerializeTicket(ticket, loc)
	payload.NotificationType = n.NotificationType
	return NotificationPayload{
		NotificationID:   n.ID,
		IsRead:           n.IsRead,
		NotificationType: n.NotificationType,
		Ticket:           payload,
	}
}

// TicketCreateRequest carries ticket intake payloads. DueDate is RFC 3339.
type TicketCreateRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Zone        *string    `json:"zone"`
	CustomerID  *string    `json:"customer_id"`
	TerminalID  *string    `json:"terminal_id"`
	DueDate     *time.Time `json:"due_date"`
}

// TicketAssignRequest carries assignment payloads.
type TicketAssignRequest struct {
	AssigneeID string `json:"assignee_id"`
}

// TicketResponse is the REST shape of a ticket.
type TicketResponse struct {
	ID                     string     `json:"id"`
	Title                  string     `json:"title"`
	Description            string     `json:"description"`
	Status                 string     `json:"status"`
	Priority               string     `json:"priority"`
	Zone                   *string    `json:"zone"`
	CustomerID             *string    `json:"customer_id"`
	TerminalID             *string    `json:"terminal_id"`
	AssigneeID             *string    `json:"assignee_id"`
	CurrentEscalationLevel *string    `json:"current_escalation_level"`
	IsEscalated            bool       `json:"is_escalated"`
	IsSLABreached          bool       `json:"is_sla_breached"`
	CreatedAt              time.Time  `json:"created_at"`
	AssignedAt             *time.Time `json:"assigned_at"`
	EscalatedAt            *time.Time `json:"escalated_at"`
	DueDate                *time.Time `json:"due_date"`
	ResolvedAt             *time.Time `json:"resolved_at"`
}

// ToTicketResponse converts the domain ticket for REST responses.
func ToTicketResponse(t *domain.Ticket) TicketResponse {
	var level *string
	if t.CurrentEscalationLevel != nil {
		s := string(*t.CurrentEscalationLevel)
		level = &s
	}
	return TicketResponse{
		ID:                     t.ID,
		Title:                  t.Title,
		Description:            t.Description,
		Status:                 string(t.Status),
		Priority:               string(t.Priority),
		Zone:                   t.Zone,
		CustomerID:             t.CustomerID,
		TerminalID:             t.TerminalID,
		AssigneeID:             t.AssigneeID,
		CurrentEscalationLevel: level,
		IsEscalated:            t.IsEscalated,
		IsSLABreached:          t.IsSLABreached,
		CreatedAt:              t.CreatedAt,
		AssignedAt:             t.AssignedAt,
		EscalatedAt:            t.EscalatedAt,
		DueDate:                t.DueDate,
		ResolvedAt:             t.ResolvedAt,
	}
}

func priorityDisplay(priority domain.TicketPriority) string {
	if priority == "" {
		return ""
	}
	s := string(priority)
	return strings.ToUpper(s[:1]) + s[1:]
}
