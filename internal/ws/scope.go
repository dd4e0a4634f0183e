package ws

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/escalation-service/internal/domain"
	"github.com/spec-kit/escalation-service/internal/repository"
)

// Scope is the set of ticket notifications one connected user may receive.
// It is resolved once per connection from a closed set of role variants and
// evaluated as pure predicates afterwards.
type Scope interface {
	// AllowsNotification filters the user's own delivery records for the
	// unread snapshot.
	AllowsNotification(view repository.NotificationView) bool
	// AllowsTicket filters broadcast events that are not pre-filtered by
	// the sender, such as unassigned-ticket alerts.
	AllowsTicket(access *repository.TicketAccess) bool
}

// ElevatedScope sees every notification addressed to the user.
type ElevatedScope struct {
	UserID string
}

func (s ElevatedScope) AllowsNotification(view repository.NotificationView) bool {
	return view.Notification.UserID == s.UserID
}

func (s ElevatedScope) AllowsTicket(*repository.TicketAccess) bool {
	return true
}

// OverseerScope sees notifications for tickets of customers the user oversees.
type OverseerScope struct {
	UserID string
}

func (s OverseerScope) AllowsNotification(view repository.NotificationView) bool {
	return view.Notification.UserID == s.UserID &&
		view.CustomerOverseerID != nil && *view.CustomerOverseerID == s.UserID
}

func (s OverseerScope) AllowsTicket(access *repository.TicketAccess) bool {
	return access.CustomerOverseerID != nil && *access.CustomerOverseerID == s.UserID
}

// CustodianScope sees notifications for tickets of the one terminal the
// user is custodian of.
type CustodianScope struct {
	UserID     string
	TerminalID string
}

func (s CustodianScope) AllowsNotification(view repository.NotificationView) bool {
	return view.Notification.UserID == s.UserID &&
		view.Ticket.TerminalID != nil && *view.Ticket.TerminalID == s.TerminalID &&
		view.TerminalCustodianID != nil && *view.TerminalCustodianID == s.UserID
}

func (s CustodianScope) AllowsTicket(access *repository.TicketAccess) bool {
	return access.Ticket.TerminalID != nil && *access.Ticket.TerminalID == s.TerminalID &&
		access.TerminalCustodianID != nil && *access.TerminalCustodianID == s.UserID
}

// EmptyScope sees nothing.
type EmptyScope struct{}

func (EmptyScope) AllowsNotification(repository.NotificationView) bool { return false }

func (EmptyScope) AllowsTicket(*repository.TicketAccess) bool { return false }

// ResolveScope picks the visibility variant for a user, checked in
// precedence order: elevated, overseer, custodian, empty.
func ResolveScope(ctx context.Context, user *domain.User, users repository.UserRepository) (Scope, error) {
	if user.Elevated() {
		return ElevatedScope{UserID: user.ID}, nil
	}

	oversees, err := users.OverseesAnyCustomer(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if oversees {
		return OverseerScope{UserID: user.ID}, nil
	}

	if user.TerminalID != nil {
		terminal, err := users.GetTerminal(ctx, *user.TerminalID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return EmptyScope{}, nil
			}
			return nil, err
		}
		if terminal.CustodianID != nil && *terminal.CustodianID == user.ID {
			return CustodianScope{UserID: user.ID, TerminalID: terminal.ID}, nil
		}
	}

	return EmptyScope{}, nil
}
