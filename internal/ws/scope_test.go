package ws

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/escalation-service/internal/domain"
	"github.com/spec-kit/escalation-service/internal/repository"
)

type fakeUserRepo struct {
	repository.UserRepository

	oversees    bool
	overseesErr error
	terminal    *domain.Terminal
	terminalErr error
}

func (f *fakeUserRepo) OverseesAnyCustomer(context.Context, string) (bool, error) {
	return f.oversees, f.overseesErr
}

func (f *fakeUserRepo) GetTerminal(context.Context, string) (*domain.Terminal, error) {
	return f.terminal, f.terminalErr
}

func strPtr(s string) *string { return &s }

func notificationFor(userID, ticketID string) repository.NotificationView {
	return repository.NotificationView{
		Notification: domain.UserNotification{
			ID:               "n-" + ticketID,
			UserID:           userID,
			TicketID:         ticketID,
			NotificationType: domain.NotificationTypeNew,
		},
		Ticket: domain.Ticket{ID: ticketID, Title: "ticket " + ticketID, Priority: domain.TicketPriorityLow},
	}
}

func TestResolveScopePrecedence(t *testing.T) {
	ctx := context.Background()

	t.Run("superuser is elevated", func(t *testing.T) {
		user := &domain.User{ID: "u1", IsSuperuser: true}
		scope, err := ResolveScope(ctx, user, &fakeUserRepo{})
		require.NoError(t, err)
		assert.Equal(t, ElevatedScope{UserID: "u1"}, scope)
	})

	t.Run("privileged group is elevated", func(t *testing.T) {
		user := &domain.User{ID: "u1", Groups: []string{domain.GroupManager}}
		scope, err := ResolveScope(ctx, user, &fakeUserRepo{})
		require.NoError(t, err)
		assert.Equal(t, ElevatedScope{UserID: "u1"}, scope)
	})

	t.Run("overseer beats custodian", func(t *testing.T) {
		user := &domain.User{ID: "u1", TerminalID: strPtr("t1")}
		repo := &fakeUserRepo{
			oversees: true,
			terminal: &domain.Terminal{ID: "t1", CustodianID: strPtr("u1")},
		}
		scope, err := ResolveScope(ctx, user, repo)
		require.NoError(t, err)
		assert.Equal(t, OverseerScope{UserID: "u1"}, scope)
	})

	t.Run("custodian of own terminal", func(t *testing.T) {
		user := &domain.User{ID: "u1", TerminalID: strPtr("t1")}
		repo := &fakeUserRepo{terminal: &domain.Terminal{ID: "t1", CustodianID: strPtr("u1")}}
		scope, err := ResolveScope(ctx, user, repo)
		require.NoError(t, err)
		assert.Equal(t, CustodianScope{UserID: "u1", TerminalID: "t1"}, scope)
	})

	t.Run("terminal custodian mismatch falls to empty", func(t *testing.T) {
		user := &domain.User{ID: "u1", TerminalID: strPtr("t1")}
		repo := &fakeUserRepo{terminal: &domain.Terminal{ID: "t1", CustodianID: strPtr("someone-else")}}
		scope, err := ResolveScope(ctx, user, repo)
		require.NoError(t, err)
		assert.Equal(t, EmptyScope{}, scope)
	})

	t.Run("missing terminal falls to empty", func(t *testing.T) {
		user := &domain.User{ID: "u1", TerminalID: strPtr("gone")}
		repo := &fakeUserRepo{terminalErr: pgx.ErrNoRows}
		scope, err := ResolveScope(ctx, user, repo)
		require.NoError(t, err)
		assert.Equal(t, EmptyScope{}, scope)
	})

	t.Run("plain user is empty", func(t *testing.T) {
		user := &domain.User{ID: "u1"}
		scope, err := ResolveScope(ctx, user, &fakeUserRepo{})
		require.NoError(t, err)
		assert.Equal(t, EmptyScope{}, scope)
	})
}

func TestElevatedScope(t *testing.T) {
	scope := ElevatedScope{UserID: "u1"}

	assert.True(t, scope.AllowsNotification(notificationFor("u1", "t1")))
	assert.False(t, scope.AllowsNotification(notificationFor("other", "t1")))
	assert.True(t, scope.AllowsTicket(&repository.TicketAccess{Ticket: domain.Ticket{ID: "t1"}}))
}

func TestOverseerScope(t *testing.T) {
	scope := OverseerScope{UserID: "u1"}

	view := notificationFor("u1", "t1")
	assert.False(t, scope.AllowsNotification(view), "no overseer on ticket customer")

	view.CustomerOverseerID = strPtr("u1")
	assert.True(t, scope.AllowsNotification(view))

	view.CustomerOverseerID = strPtr("u2")
	assert.False(t, scope.AllowsNotification(view))

	access := &repository.TicketAccess{Ticket: domain.Ticket{ID: "t1"}}
	assert.False(t, scope.AllowsTicket(access))
	access.CustomerOverseerID = strPtr("u1")
	assert.True(t, scope.AllowsTicket(access))
}

func TestCustodianScope(t *testing.T) {
	scope := CustodianScope{UserID: "u1", TerminalID: "term-1"}

	view := notificationFor("u1", "t1")
	view.Ticket.TerminalID = strPtr("term-1")
	view.TerminalCustodianID = strPtr("u1")
	assert.True(t, scope.AllowsNotification(view))

	foreign := notificationFor("u1", "t2")
	foreign.Ticket.TerminalID = strPtr("term-2")
	foreign.TerminalCustodianID = strPtr("u1")
	assert.False(t, scope.AllowsNotification(foreign), "other terminal stays invisible")

	access := &repository.TicketAccess{Ticket: domain.Ticket{ID: "t1", TerminalID: strPtr("term-1")}}
	assert.False(t, scope.AllowsTicket(access), "custodian link must match")
	access.TerminalCustodianID = strPtr("u1")
	assert.True(t, scope.AllowsTicket(access))

	foreignAccess := &repository.TicketAccess{
		Ticket:              domain.Ticket{ID: "t2", TerminalID: strPtr("term-2")},
		TerminalCustodianID: strPtr("u1"),
	}
	assert.False(t, scope.AllowsTicket(foreignAccess))
}

func TestEmptyScope(t *testing.T) {
	scope := EmptyScope{}
	assert.False(t, scope.AllowsNotification(notificationFor("u1", "t1")))
	assert.False(t, scope.AllowsTicket(&repository.TicketAccess{Ticket: domain.Ticket{ID: "t1"}}))
}
