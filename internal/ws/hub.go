package ws

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/escalation-service/internal/api/dto"
	"github.com/spec-kit/escalation-service/internal/domain"
	"github.com/spec-kit/escalation-service/internal/events"
	"github.com/spec-kit/escalation-service/internal/repository"
)

// snapshotType is the wire "type" of the unread snapshot message.
const snapshotType = "notifications_list"

// Hub serves live notification connections. Each connection resolves its
// visibility scope once, receives the unread snapshot, then consumes the
// shared broadcast stream until the client disconnects.
type Hub struct {
	broadcaster   events.Broadcaster
	notifications repository.NotificationRepository
	tickets       repository.TicketRepository
	users         repository.UserRepository
	logger        *zap.Logger
	loc           *time.Location
}

// NewHub constructs the hub.
func NewHub(
	broadcaster events.Broadcaster,
	notifications repository.NotificationRepository,
	tickets repository.TicketRepository,
	users repository.UserRepository,
	logger *zap.Logger,
	loc *time.Location,
) *Hub {
	return &Hub{
		broadcaster:   broadcaster,
		notifications: notifications,
		tickets:       tickets,
		users:         users,
		logger:        logger,
		loc:           loc,
	}
}

type ticketMessage struct {
	Type   events.Kind        `json:"type"`
	Ticket *dto.TicketPayload `json:"ticket"`
}

type toastMessage struct {
	Type    events.Kind `json:"type"`
	Message string      `json:"message"`
}

// Serve runs one websocket connection to completion. All writes happen on
// the calling goroutine; a reader goroutine only watches for disconnect.
func (h *Hub) Serve(conn *websocket.Conn, user *domain.User) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer conn.Close()

	logger := h.logger.With(zap.String("user_id", user.ID))

	scope, err := ResolveScope(ctx, user, h.users)
	if err != nil {
		logger.Error("failed to resolve notification scope", zap.Error(err))
		return
	}

	sess := &session{
		hub:    h,
		conn:   conn,
		userID: user.ID,
		scope:  scope,
		logger: logger,
	}

	inbound, unsubscribe := h.broadcaster.Subscribe(ctx)
	defer unsubscribe()

	if err := sess.pushSnapshot(ctx); err != nil {
		logger.Warn("failed to push unread snapshot", zap.Error(err))
		return
	}

	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-inbound:
			if !ok {
				return
			}
			if err := sess.handle(ctx, event); err != nil {
				logger.Warn("closing live connection", zap.Error(err))
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// session is the per-connection state.
type session struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	scope  Scope
	logger *zap.Logger
}

func (s *session) handle(ctx context.Context, event events.Event) error {
	switch event.Kind {
	case events.KindTicketCreation, events.KindNewTicketNotification:
		if event.Ticket == nil {
			return nil
		}
		if err := s.conn.WriteJSON(ticketMessage{Type: event.Kind, Ticket: event.Ticket}); err != nil {
			return err
		}
		return s.pushSnapshot(ctx)

	case events.KindEscalationUpdate:
		return s.pushSnapshot(ctx)

	case events.KindEscalationMessage:
		if event.Message != nil {
			toast, err := json.Marshal(event.Message)
			if err != nil {
				return err
			}
			if err := s.conn.WriteJSON(toastMessage{Type: event.Kind, Message: string(toast)}); err != nil {
				return err
			}
		}
		return s.pushSnapshot(ctx)

	case events.KindUnassignedTicket:
		return s.handleUnassigned(ctx, event)

	default:
		s.logger.Debug("ignoring unknown event kind", zap.String("kind", string(event.Kind)))
		return nil
	}
}

// handleUnassigned re-checks ticket visibility at delivery time. Unassigned
// alerts are broadcast unfiltered, so every connection applies its own scope
// against a fresh read of the ticket.
func (s *session) handleUnassigned(ctx context.Context, event events.Event) error {
	access, err := s.hub.tickets.GetAccessByID(ctx, event.TicketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		s.logger.Warn("failed to check unassigned ticket access",
			zap.String("ticket_id", event.TicketID),
			zap.Error(err))
		return nil
	}
	if !s.scope.AllowsTicket(access) {
		return nil
	}

	payload := dto.SerializeTicket(&access.Ticket, s.hub.loc)
	if err := s.conn.WriteJSON(ticketMessage{Type: events.KindUnassignedTicket, Ticket: &payload}); err != nil {
		return err
	}
	return s.pushSnapshot(ctx)
}

// pushSnapshot sends the scoped unread notification list with its
// distinct-ticket count.
func (s *session) pushSnapshot(ctx context.Context) error {
	views, err := s.hub.notifications.ListUnreadByUser(ctx, s.userID)
	if err != nil {
		return err
	}
	payloads, count := BuildSnapshot(views, s.scope, s.hub.loc)
	return s.conn.WriteJSON(dto.NotificationsList{
		Type:    snapshotType,
		Tickets: payloads,
		Count:   count,
	})
}
