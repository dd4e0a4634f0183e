package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/escalation-service/internal/config"
	"github.com/spec-kit/escalation-service/internal/domain"
	"github.com/spec-kit/escalation-service/internal/events"
	"github.com/spec-kit/escalation-service/internal/repository"
)

type stubTicketStore struct {
	repository.TicketRepository

	created []*domain.Ticket
}

func (s *stubTicketStore) Create(_ context.Context, ticket *domain.Ticket) error {
	ticket.ID = fmt.Sprintf("t%d", len(s.created)+1)
	ticket.CreatedAt = time.Now()
	s.created = append(s.created, ticket)
	return nil
}

type stubUserDirectory struct {
	repository.UserRepository

	recipients []string
}

func (s *stubUserDirectory) ListRecipientsForTicket(context.Context, *string, *string) ([]string, error) {
	return s.recipients, nil
}

type stubNotificationStore struct {
	repository.NotificationRepository

	created []*domain.UserNotification
}

func (s *stubNotificationStore) Create(_ context.Context, notification *domain.UserNotification) error {
	s.created = append(s.created, notification)
	return nil
}

func newTicketFixture(tickets *stubTicketStore, users *stubUserDirectory, notifications *stubNotificationStore) (*TicketService, events.Broadcaster) {
	broadcaster := events.NewMemoryBroadcaster()
	notifier := NewNotificationService(&fakeMailer{}, zap.NewNop(), config.EscalationConfig{
		DefaultRecipients: []string{"ops@example.com"},
	})
	svc := NewTicketService(TicketDependencies{
		TicketRepo:       tickets,
		UserRepo:         users,
		NotificationRepo: notifications,
		Notifier:         notifier,
		Broadcaster:      broadcaster,
		Logger:           zap.NewNop(),
		Location:         time.UTC,
	})
	return svc, broadcaster
}

func TestCreateTicketTreatsBlankZoneAsUnset(t *testing.T) {
	tickets := &stubTicketStore{}
	svc, _ := newTicketFixture(tickets, &stubUserDirectory{}, &stubNotificationStore{})

	blank := "  "
	ticket, err := svc.CreateTicket(context.Background(), "requester-1", TicketCreateInput{
		Title: "card reader offline",
		Zone:  &blank,
	})
	require.NoError(t, err)

	assert.Nil(t, ticket.Zone, "blank zone must be stored as NULL so the sweep can default it")
	assert.Equal(t, domain.TicketPriorityLow, ticket.Priority)
	require.Len(t, tickets.created, 1)
	assert.Nil(t, tickets.created[0].Zone)
}

func TestCreateTicketKeepsExplicitZone(t *testing.T) {
	tickets := &stubTicketStore{}
	svc, _ := newTicketFixture(tickets, &stubUserDirectory{}, &stubNotificationStore{})

	zone := "Zone C"
	ticket, err := svc.CreateTicket(context.Background(), "requester-1", TicketCreateInput{
		Title:    "card reader offline",
		Priority: domain.TicketPriorityHigh,
		Zone:     &zone,
	})
	require.NoError(t, err)

	require.NotNil(t, ticket.Zone)
	assert.Equal(t, "Zone C", *ticket.Zone)
}

func TestCreateTicketFansOutToRecipients(t *testing.T) {
	tickets := &stubTicketStore{}
	notifications := &stubNotificationStore{}
	svc, broadcaster := newTicketFixture(tickets, &stubUserDirectory{recipients: []string{"u1", "u2"}}, notifications)

	inbound, cancel := broadcaster.Subscribe(context.Background())
	defer cancel()

	ticket, err := svc.CreateTicket(context.Background(), "requester-1", TicketCreateInput{Title: "new ticket"})
	require.NoError(t, err)

	require.Len(t, notifications.created, 2)
	for _, record := range notifications.created {
		assert.Equal(t, ticket.ID, record.TicketID)
		assert.Equal(t, domain.NotificationTypeNew, record.NotificationType)
	}

	kinds := map[events.Kind]bool{}
	for i := 0; i < 2; i++ {
		select {
		case event := <-inbound:
			kinds[event.Kind] = true
			require.NotNil(t, event.Ticket)
			assert.Equal(t, ticket.ID, event.Ticket.ID)
		case <-time.After(time.Second):
			t.Fatal("expected creation broadcast")
		}
	}
	assert.True(t, kinds[events.KindTicketCreation])
	assert.True(t, kinds[events.KindNewTicketNotification])
}
