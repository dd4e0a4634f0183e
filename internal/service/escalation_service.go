package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/escalation-service/internal/api/dto"
	"github.com/spec-kit/escalation-service/internal/domain"
	"github.com/spec-kit/escalation-service/internal/escalation"
	"github.com/spec-kit/escalation-service/internal/events"
	"github.com/spec-kit/escalation-service/internal/observability"
	"github.com/spec-kit/escalation-service/internal/repository"
)

// EscalationService runs the periodic sweep over open tickets: assigned
// tickets go through the escalation evaluator, unassigned ones through the
// watchdog. One ticket's failure never stops the batch.
type EscalationService struct {
	tickets     repository.TicketRepository
	evaluator   *escalation.Evaluator
	watchdog    *escalation.Watchdog
	notifier    *NotificationService
	broadcaster events.Broadcaster
	metrics     *observability.SweepMetrics
	logger      *zap.Logger
	loc         *time.Location
}

// EscalationDependencies bundles collaborators for the sweep.
type EscalationDependencies struct {
	TicketRepo  repository.TicketRepository
	Evaluator   *escalation.Evaluator
	Watchdog    *escalation.Watchdog
	Notifier    *NotificationService
	Broadcaster events.Broadcaster
	Metrics     *observability.SweepMetrics
	Logger      *zap.Logger
	Location    *time.Location
}

// NewEscalationService constructs the service.
func NewEscalationService(deps EscalationDependencies) *EscalationService {
	return &EscalationService{
		tickets:     deps.TicketRepo,
		evaluator:   deps.Evaluator,
		watchdog:    deps.Watchdog,
		notifier:    deps.Notifier,
		broadcaster: deps.Broadcaster,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
		loc:         deps.Location,
	}
}

// RunSweep processes every open/in_progress ticket once. Per-ticket errors
// are logged and counted; the sweep itself only fails when the candidate
// list cannot be loaded.
func (s *EscalationService) RunSweep(ctx context.Context) error {
	start := time.Now()
	tickets, err := s.tickets.ListForSweep(ctx)
	if err != nil {
		return fmt.Errorf("list sweep candidates: %w", err)
	}

	now := time.Now()
	for i := range tickets {
		ticket := &tickets[i]
		var err error
		if ticket.AssigneeID != nil {
			err = s.evaluateTicket(ctx, ticket, now)
		} else {
			err = s.checkUnassigned(ctx, ticket, now)
		}
		if err != nil {
			s.metrics.RecordFailure()
			s.logger.Error("ticket sweep failed",
				zap.String("ticket_id", ticket.ID),
				zap.Error(err))
		}
	}

	s.metrics.RecordSweep(time.Since(start))
	s.logger.Info("escalation sweep finished",
		zap.Int("tickets", len(tickets)),
		zap.Duration("duration", time.Since(start)))
	return nil
}

func (s *EscalationService) evaluateTicket(ctx context.Context, ticket *domain.Ticket, now time.Time) error {
	decision := s.evaluator.Evaluate(ticket, now)

	if decision.AssignDefaultZone {
		s.logger.Warn("ticket has no zone, defaulting",
			zap.String("ticket_id", ticket.ID),
			zap.String("zone", decision.Zone))
		if err := s.tickets.SetZone(ctx, ticket.ID, decision.Zone); err != nil {
			return fmt.Errorf("assign default zone: %w", err)
		}
		zone := decision.Zone
		ticket.Zone = &zone
	}

	if !decision.Advance {
		s.logger.Info("escalation skipped",
			zap.String("ticket_id", ticket.ID),
			zap.String("reason", string(decision.Reason)))
		return nil
	}

	note := fmt.Sprintf("Auto-escalated at %s priority in %s.", ticket.EffectivePriority(), decision.Zone)
	update := repository.EscalationUpdate{
		FromLevel:     decision.FromLevel,
		ToLevel:       decision.ToLevel,
		EscalatedAt:   now,
		MarkSLABreach: decision.MarkSLABreached,
		HistoryNote:   note,
	}
	if err := s.tickets.ApplyEscalation(ctx, ticket.ID, update); err != nil {
		return fmt.Errorf("apply escalation: %w", err)
	}

	level := decision.ToLevel
	ticket.CurrentEscalationLevel = &level
	ticket.IsEscalated = true
	escalatedAt := now
	ticket.EscalatedAt = &escalatedAt
	if decision.MarkSLABreached {
		ticket.IsSLABreached = true
		s.logger.Info("SLA breach detected", zap.String("ticket_id", ticket.ID))
	}

	s.metrics.RecordEscalation()
	s.logger.Info("ticket escalated",
		zap.String("ticket_id", ticket.ID),
		zap.String("from", string(decision.FromLevel)),
		zap.String("to", string(decision.ToLevel)))

	// The transition is committed; delivery is best-effort from here on.
	s.notifier.SendEscalationNotice(ticket, decision.ToLevel)
	s.broadcastEscalation(ctx, ticket)
	return nil
}

func (s *EscalationService) checkUnassigned(ctx context.Context, ticket *domain.Ticket, now time.Time) error {
	if !s.watchdog.ShouldAlert(ticket, now) {
		return nil
	}

	payload := dto.SerializeTicket(ticket, s.loc)
	if err := s.broadcaster.Publish(ctx, events.Event{
		Kind:      events.KindUnassignedTicket,
		TicketID:  ticket.ID,
		Ticket:    &payload,
		Timestamp: now,
	}); err != nil {
		s.logger.Error("failed to broadcast unassigned alert",
			zap.String("ticket_id", ticket.ID),
			zap.Error(err))
	}

	s.notifier.SendUnassignedReminder(ticket)

	if err := s.tickets.SetUnassignedNotifiedAt(ctx, ticket.ID, now); err != nil {
		return fmt.Errorf("persist unassigned alert timestamp: %w", err)
	}
	alertedAt := now
	ticket.LastUnassignedNotification = &alertedAt

	s.metrics.RecordUnassignedAlert()
	s.logger.Info("unassigned ticket alert sent", zap.String("ticket_id", ticket.ID))
	return nil
}

func (s *EscalationService) broadcastEscalation(ctx context.Context, ticket *domain.Ticket) {
	escalatedAt := ""
	if ticket.EscalatedAt != nil {
		escalatedAt = ticket.EscalatedAt.In(s.loc).Format("2006-01-02 15:04")
	}
	event := events.Event{
		Kind:     events.KindEscalationMessage,
		TicketID: ticket.ID,
		Message: &events.EscalationMessage{
			TicketID:    ticket.ID,
			Title:       ticket.Title,
			Priority:    string(ticket.Priority),
			EscalatedAt: escalatedAt,
		},
		Timestamp: time.Now(),
	}
	if err := s.broadcaster.Publish(ctx, event); err != nil {
		s.logger.Error("failed to broadcast escalation",
			zap.String("ticket_id", ticket.ID),
			zap.Error(err))
	}
}
