package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/escalation-service/internal/api/dto"
	"github.com/spec-kit/escalation-service/internal/auth"
	"github.com/spec-kit/escalation-service/internal/repository"
	"github.com/spec-kit/escalation-service/internal/ws"
	apperrors "github.com/spec-kit/escalation-service/pkg/util"
)

// NotificationsHandler exposes the REST view over per-user delivery records.
// It applies the same visibility scope as the live channel so both surfaces
// agree on what a user may see.
type NotificationsHandler struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	loc           *time.Location
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notifications repository.NotificationRepository, users repository.UserRepository, loc *time.Location) *NotificationsHandler {
	return &NotificationsHandler{notifications: notifications, users: users, loc: loc}
}

// ListUnread handles GET /notifications.
func (h *NotificationsHandler) ListUnread(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	scope, err := ws.ResolveScope(c.Context(), user, h.users)
	if err != nil {
		return apperrors.MapError(err)
	}

	views, err := h.notifications.ListUnreadByUser(c.Context(), user.ID)
	if err != nil {
		return apperrors.MapError(err)
	}

	payloads, count := ws.BuildSnapshot(views, scope, h.loc)
	return c.JSON(dto.NotificationsList{
		Type:    "notifications_list",
		Tickets: payloads,
		Count:   count,
	})
}

// MarkRead handles POST /notifications/:id/read.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	if err := h.notifications.MarkRead(c.Context(), c.Params("id"), user.ID); err != nil {
		return apperrors.MapError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
