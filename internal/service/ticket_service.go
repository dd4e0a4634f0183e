package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/escalation-service/internal/api/dto"
	"github.com/spec-kit/escalation-service/internal/domain"
	"github.com/spec-kit/escalation-service/internal/events"
	"github.com/spec-kit/escalation-service/internal/repository"
	apperrors "github.com/spec-kit/escalation-service/pkg/util"
)

// TicketService coordinates ticket intake, assignment and resolution.
type TicketService struct {
	tickets       repository.TicketRepository
	users         repository.UserRepository
	notifications repository.NotificationRepository
	notifier      *NotificationService
	broadcaster   events.Broadcaster
	logger        *zap.Logger
	loc           *time.Location
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo       repository.TicketRepository
	UserRepo         repository.UserRepository
	NotificationRepo repository.NotificationRepository
	Notifier         *NotificationService
	Broadcaster      events.Broadcaster
	Logger           *zap.Logger
	Location         *time.Location
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	Zone        *string
	CustomerID  *string
	TerminalID  *string
	DueDate     *time.Time
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:       deps.TicketRepo,
		users:         deps.UserRepo,
		notifications: deps.NotificationRepo,
		notifier:      deps.Notifier,
		broadcaster:   deps.Broadcaster,
		logger:        deps.Logger,
		loc:           deps.Location,
	}
}

// CreateTicket creates a ticket, writes delivery records for every in-scope
// user and fans out the creation events.
func (s *TicketService) CreateTicket(ctx context.Context, requesterID string, input TicketCreateInput) (*domain.Ticket, error) {
	zone := input.Zone
	if zone != nil && strings.TrimSpace(*zone) == "" {
		zone = nil
	}

	ticket := &domain.Ticket{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Status:      domain.TicketStatusOpen,
		Priority:    input.Priority,
		Zone:        zone,
		CustomerID:  input.CustomerID,
		TerminalID:  input.TerminalID,
		RequesterID: &requesterID,
		DueDate:     input.DueDate,
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityLow
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.createDeliveryRecords(ctx, ticket)
	s.publishCreation(ctx, ticket)
	s.notifier.SendNewTicketNotice(ticket)
	return ticket, nil
}

// AssignTicket sets the assignee and assignment timestamp, moving the
// ticket in progress. Escalation countdowns start from assigned_at.
func (s *TicketService) AssignTicket(ctx context.Context, ticketID, assigneeID string) (*domain.Ticket, error) {
	assignee, err := s.users.GetByID(ctx, assigneeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": assigneeID})
		}
		return nil, apperrors.MapError(err)
	}

	if err := s.tickets.Assign(ctx, ticketID, assignee.ID, time.Now()); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewConflict("ticket not open for assignment", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.notifier.SendAssignmentNotice(ticket, assignee)
	return ticket, nil
}

// ResolveTicket marks the ticket resolved, stopping SLA breach marking.
func (s *TicketService) ResolveTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	if err := s.tickets.Resolve(ctx, ticketID, time.Now()); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewConflict("ticket not open for resolution", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// GetTicket fetches one ticket.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) createDeliveryRecords(ctx context.Context, ticket *domain.Ticket) {
	recipients, err := s.users.ListRecipientsForTicket(ctx, ticket.CustomerID, ticket.TerminalID)
	if err != nil {
		s.logger.Error("failed to resolve notification recipients",
			zap.String("ticket_id", ticket.ID),
			zap.Error(err))
		return
	}
	for _, userID := range recipients {
		record := &domain.UserNotification{
			UserID:           userID,
			TicketID:         ticket.ID,
			NotificationType: domain.NotificationTypeNew,
		}
		if err := s.notifications.Create(ctx, record); err != nil {
			s.logger.Error("failed to create delivery record",
				zap.String("ticket_id", ticket.ID),
				zap.String("user_id", userID),
				zap.Error(err))
		}
	}
}

func (s *TicketService) publishCreation(ctx context.Context, ticket *domain.Ticket) {
	payload := dto.SerializeTicket(ticket, s.loc)
	for _, kind := range []events.Kind{events.KindTicketCreation, events.KindNewTicketNotification} {
		event := events.Event{
			Kind:      kind,
			TicketID:  ticket.ID,
			Ticket:    &payload,
			Timestamp: time.Now(),
		}
		if err := s.broadcaster.Publish(ctx, event); err != nil {
			s.logger.Error("failed to broadcast ticket creation",
				zap.String("ticket_id", ticket.ID),
				zap.Error(err))
		}
	}
}
