package events

import (
	"time"

	"github.com/spec-kit/escalation-service/internal/api/dto"
)

// Kind enumerates the live-channel event identifiers. The values are the
// wire-level "type" fields pushed to connected clients.
type Kind string

const (
	KindTicketCreation        Kind = "ticket_creation"
	KindEscalationUpdate      Kind = "escalation_update"
	KindEscalationMessage     Kind = "escalation_message"
	KindUnassignedTicket      Kind = "unassigned_ticket_notification"
	KindNewTicketNotification Kind = "new_ticket_notification"
)

// EscalationMessage is the toast payload broadcast on a tier advance.
type EscalationMessage struct {
	TicketID    string `json:"ticket_id"`
	Title       string `json:"title"`
	Priority    string `json:"priority"`
	EscalatedAt string `json:"escalated_at"`
}

// Event is one broadcast on the shared escalations group. Ticket is set for
// ticket-carrying kinds; Message only for escalation_message.
type Event struct {
	ID        string             `json:"id"`
	Kind      Kind               `json:"type"`
	TicketID  string             `json:"ticket_id,omitempty"`
	Ticket    *dto.TicketPayload `json:"ticket,omitempty"`
	Message   *EscalationMessage `json:"message,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}
