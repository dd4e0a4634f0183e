package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
	TicketStatusCancelled  TicketStatus = "cancelled"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "low"
	TicketPriorityMedium   TicketPriority = "medium"
	TicketPriorityHigh     TicketPriority = "high"
	TicketPriorityCritical TicketPriority = "critical"
)

// Ticket is the aggregate for support requests. Zone is the name of the
// geographic bucket used to select escalation intervals; it is nullable at
// intake and defaulted by the evaluator.
type Ticket struct {
	ID                         string
	Title                      string
	Description                string
	Status                     TicketStatus
	Priority                   TicketPriority
	Zone                       *string
	CustomerID                 *string
	TerminalID                 *string
	RequesterID                *string
	AssigneeID                 *string
	CurrentEscalationLevel     *EscalationLevel
	IsEscalated                bool
	IsSLABreached              bool
	CreatedAt                  time.Time
	UpdatedAt                  time.Time
	AssignedAt                 *time.Time
	EscalatedAt                *time.Time
	DueDate                    *time.Time
	ResolvedAt                 *time.Time
	LastUnassignedNotification *time.Time
}

// EffectivePriority normalizes a missing priority to low, matching the
// escalation and watchdog tables.
func (t *Ticket) EffectivePriority() TicketPriority {
	if t.Priority == "" {
		return TicketPriorityLow
	}
	return t.Priority
}

// Assigned reports whether the ticket has both an assignee and an
// assignment timestamp. Escalation only runs on assigned tickets.
func (t *Ticket) Assigned() bool {
	return t.AssigneeID != nil && t.AssignedAt != nil
}
