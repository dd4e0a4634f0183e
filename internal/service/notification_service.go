package service

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/escalation-service/internal/config"
	"github.com/spec-kit/escalation-service/internal/domain"
	"github.com/spec-kit/escalation-service/internal/mail"
)

// NotificationService composes and sends the notification emails. Every
// send is best-effort: failures are logged at error level and never
// propagate, because the state change they report is already committed.
type NotificationService struct {
	mailer mail.Mailer
	logger *zap.Logger
	cfg    config.EscalationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(mailer mail.Mailer, logger *zap.Logger, cfg config.EscalationConfig) *NotificationService {
	return &NotificationService{mailer: mailer, logger: logger, cfg: cfg}
}

// SendEscalationNotice emails the recipients configured for the new tier.
func (n *NotificationService) SendEscalationNotice(ticket *domain.Ticket, toLevel domain.EscalationLevel) {
	subject := fmt.Sprintf("[Escalation Notice] Ticket #%s escalated to %s", ticket.ID, toLevel)
	body := fmt.Sprintf(
		"Ticket ID: %s\nTitle: %s\nPriority: %s\nNew Escalation Level: %s\nStatus: %s\nCreated At: %s\n\n"+
			"This ticket has been auto-escalated based on your escalation policy.\n\nPlease log in to review.",
		ticket.ID, ticket.Title, ticket.Priority, toLevel, ticket.Status, ticket.CreatedAt.Format("2006-01-02 15:04"))

	n.send(n.cfg.RecipientsFor(string(toLevel)), subject, body, "escalation notice", ticket.ID)
}

// SendUnassignedReminder emails the default recipients that a ticket still
// has no assignee.
func (n *NotificationService) SendUnassignedReminder(ticket *domain.Ticket) {
	priority := strings.ToUpper(string(ticket.EffectivePriority())[:1]) + string(ticket.EffectivePriority())[1:]
	subject := fmt.Sprintf("[Unassigned Ticket] Ticket #%s (%s Priority)", ticket.ID, priority)
	body := fmt.Sprintf(
		"Ticket #%s (%s priority) is still unassigned.\n\n- Created At: %s\n- Current Status: %s\n\n"+
			"Please assign this ticket as soon as possible.",
		ticket.ID, priority, ticket.CreatedAt.Format("2006-01-02 15:04"), ticket.Status)

	n.send(n.cfg.DefaultRecipients, subject, body, "unassigned reminder", ticket.ID)
}

// SendNewTicketNotice emails the default recipients about a new ticket.
func (n *NotificationService) SendNewTicketNotice(ticket *domain.Ticket) {
	subject := fmt.Sprintf("[New Ticket] Ticket #%s: %s", ticket.ID, ticket.Title)
	body := fmt.Sprintf(
		"A new ticket has been created.\n\nTicket ID: %s\nTitle: %s\nPriority: %s\nCreated At: %s",
		ticket.ID, ticket.Title, ticket.Priority, ticket.CreatedAt.Format("2006-01-02 15:04"))

	n.send(n.cfg.DefaultRecipients, subject, body, "new ticket notice", ticket.ID)
}

// SendAssignmentNotice emails the assignee that a ticket was assigned to them.
func (n *NotificationService) SendAssignmentNotice(ticket *domain.Ticket, assignee *domain.User) {
	subject := fmt.Sprintf("[Ticket Assigned] Ticket #%s: %s", ticket.ID, ticket.Title)
	body := fmt.Sprintf(
		"Ticket #%s has been assigned to you.\n\nTitle: %s\nPriority: %s\nStatus: %s",
		ticket.ID, ticket.Title, ticket.Priority, ticket.Status)

	n.send([]string{assignee.Email}, subject, body, "assignment notice", ticket.ID)
}

func (n *NotificationService) send(to []string, subject, body, kind, ticketID string) {
	if n.mailer == nil || len(to) == 0 {
		return
	}
	if err := n.mailer.Send(to, subject, body); err != nil {
		n.logger.Error("failed to send email",
			zap.String("kind", kind),
			zap.String("ticket_id", ticketID),
			zap.Error(err))
		return
	}
	n.logger.Info("email sent",
		zap.String("kind", kind),
		zap.String("ticket_id", ticketID),
		zap.Int("recipients", len(to)))
}
