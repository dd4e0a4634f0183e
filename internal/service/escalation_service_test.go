package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/escalation-service/internal/config"
	"github.com/spec-kit/escalation-service/internal/domain"
	"github.com/spec-kit/escalation-service/internal/escalation"
	"github.com/spec-kit/escalation-service/internal/events"
	"github.com/spec-kit/escalation-service/internal/observability"
	"github.com/spec-kit/escalation-service/internal/repository"
)

type fakeTicketRepo struct {
	repository.TicketRepository

	sweepTickets []domain.Ticket
	sweepErr     error

	appliedTo     []string
	appliedUpdate repository.EscalationUpdate
	applyErr      error

	zoneSet       map[string]string
	unassignedHit map[string]time.Time
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{
		zoneSet:       make(map[string]string),
		unassignedHit: make(map[string]time.Time),
	}
}

func (f *fakeTicketRepo) ListForSweep(context.Context) ([]domain.Ticket, error) {
	return f.sweepTickets, f.sweepErr
}

func (f *fakeTicketRepo) SetZone(_ context.Context, ticketID, zone string) error {
	f.zoneSet[ticketID] = zone
	return nil
}

func (f *fakeTicketRepo) SetUnassignedNotifiedAt(_ context.Context, ticketID string, at time.Time) error {
	f.unassignedHit[ticketID] = at
	return nil
}

func (f *fakeTicketRepo) ApplyEscalation(_ context.Context, ticketID string, update repository.EscalationUpdate) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	f.appliedTo = append(f.appliedTo, ticketID)
	f.appliedUpdate = update
	return nil
}

type fakeMailer struct {
	sent []struct {
		To      []string
		Subject string
	}
}

func (f *fakeMailer) Send(to []string, subject, _ string) error {
	f.sent = append(f.sent, struct {
		To      []string
		Subject string
	}{To: to, Subject: subject})
	return nil
}

func newSweepFixture(t *testing.T, repo *fakeTicketRepo, mailer *fakeMailer) (*EscalationService, events.Broadcaster) {
	t.Helper()

	hours, err := escalation.NewWorkingHours("Africa/Nairobi")
	require.NoError(t, err)
	policy := escalation.DefaultPolicy()

	broadcaster := events.NewMemoryBroadcaster()
	notifier := NewNotificationService(mailer, zap.NewNop(), config.EscalationConfig{
		DefaultRecipients: []string{"ops@example.com"},
		TierRecipients:    map[string][]string{"Tier 2": {"tier2@example.com"}},
	})

	svc := NewEscalationService(EscalationDependencies{
		TicketRepo:  repo,
		Evaluator:   escalation.NewEvaluator(policy, hours),
		Watchdog:    escalation.NewWatchdog(policy),
		Notifier:    notifier,
		Broadcaster: broadcaster,
		Metrics:     observability.NewSweepMetrics(),
		Logger:      zap.NewNop(),
		Location:    hours.Location(),
	})
	return svc, broadcaster
}

// nairobiBusinessHour returns a Wednesday at 10:00 in the sweep timezone.
func nairobiBusinessHour(t *testing.T) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("Africa/Nairobi")
	require.NoError(t, err)
	return time.Date(2025, time.March, 12, 10, 0, 0, 0, loc)
}

func assignedTicket(id string, zone string, priority domain.TicketPriority, assignedAt time.Time) domain.Ticket {
	assignee := "agent-1"
	at := assignedAt
	return domain.Ticket{
		ID:         id,
		Title:      "printer down",
		Status:     domain.TicketStatusInProgress,
		Priority:   priority,
		Zone:       &zone,
		AssigneeID: &assignee,
		AssignedAt: &at,
		CreatedAt:  assignedAt.Add(-time.Hour),
	}
}

func TestEvaluateTicketAppliesAdvance(t *testing.T) {
	repo := newFakeTicketRepo()
	mailer := &fakeMailer{}
	svc, broadcaster := newSweepFixture(t, repo, mailer)

	now := nairobiBusinessHour(t)
	ticket := assignedTicket("t1", "Zone A", domain.TicketPriorityCritical, now.Add(-3*time.Minute))

	inbound, cancel := broadcaster.Subscribe(context.Background())
	defer cancel()

	require.NoError(t, svc.evaluateTicket(context.Background(), &ticket, now))

	require.Equal(t, []string{"t1"}, repo.appliedTo)
	assert.Equal(t, domain.Tier1, repo.appliedUpdate.FromLevel)
	assert.Equal(t, domain.Tier2, repo.appliedUpdate.ToLevel)
	assert.Equal(t, now, repo.appliedUpdate.EscalatedAt)
	assert.Contains(t, repo.appliedUpdate.HistoryNote, "critical")

	require.NotNil(t, ticket.CurrentEscalationLevel)
	assert.Equal(t, domain.Tier2, *ticket.CurrentEscalationLevel)
	assert.True(t, ticket.IsEscalated)

	select {
	case event := <-inbound:
		assert.Equal(t, events.KindEscalationMessage, event.Kind)
		require.NotNil(t, event.Message)
		assert.Equal(t, "t1", event.Message.TicketID)
	case <-time.After(time.Second):
		t.Fatal("expected escalation broadcast")
	}

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []string{"tier2@example.com"}, mailer.sent[0].To)
}

func TestEvaluateTicketDefaultsMissingZone(t *testing.T) {
	repo := newFakeTicketRepo()
	svc, _ := newSweepFixture(t, repo, &fakeMailer{})

	now := nairobiBusinessHour(t)
	ticket := assignedTicket("t1", "", domain.TicketPriorityLow, now.Add(-time.Minute))
	ticket.Zone = nil

	require.NoError(t, svc.evaluateTicket(context.Background(), &ticket, now))

	assert.Equal(t, "Zone A", repo.zoneSet["t1"])
	assert.Empty(t, repo.appliedTo, "one minute in, low priority is not due")
}

func TestRunSweepAlertsUnassignedTicket(t *testing.T) {
	repo := newFakeTicketRepo()
	mailer := &fakeMailer{}
	svc, broadcaster := newSweepFixture(t, repo, mailer)

	repo.sweepTickets = []domain.Ticket{{
		ID:        "t9",
		Title:     "no owner",
		Status:    domain.TicketStatusOpen,
		Priority:  domain.TicketPriorityLow,
		CreatedAt: time.Now().Add(-30 * time.Minute),
	}}

	inbound, cancel := broadcaster.Subscribe(context.Background())
	defer cancel()

	require.NoError(t, svc.RunSweep(context.Background()))

	_, alerted := repo.unassignedHit["t9"]
	assert.True(t, alerted, "alert timestamp must be persisted")

	select {
	case event := <-inbound:
		assert.Equal(t, events.KindUnassignedTicket, event.Kind)
		require.NotNil(t, event.Ticket)
		assert.Equal(t, "t9", event.Ticket.ID)
	case <-time.After(time.Second):
		t.Fatal("expected unassigned broadcast")
	}

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []string{"ops@example.com"}, mailer.sent[0].To)
}

func TestRunSweepSurvivesTicketFailure(t *testing.T) {
	repo := newFakeTicketRepo()
	repo.applyErr = errors.New("db down")
	svc, _ := newSweepFixture(t, repo, &fakeMailer{})

	now := nairobiBusinessHour(t)
	repo.sweepTickets = []domain.Ticket{
		assignedTicket("t1", "Zone A", domain.TicketPriorityCritical, now.Add(-3*time.Minute)),
	}

	assert.NoError(t, svc.RunSweep(context.Background()), "per-ticket failure must not fail the sweep")
}
