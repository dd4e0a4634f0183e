package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/escalation-service/internal/api/dto"
	"github.com/spec-kit/escalation-service/internal/auth"
	"github.com/spec-kit/escalation-service/internal/domain"
	"github.com/spec-kit/escalation-service/internal/repository"
	"github.com/spec-kit/escalation-service/internal/service"
	apperrors "github.com/spec-kit/escalation-service/pkg/util"
)

// TicketsHandler exposes ticket intake and lifecycle endpoints.
type TicketsHandler struct {
	tickets *service.TicketService
	history repository.EscalationHistoryRepository
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, history repository.EscalationHistoryRepository) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, history: history}
}

// Create handles POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.TicketCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Title == "" {
		return apperrors.NewValidationError("title required", nil)
	}
	priority := domain.TicketPriority(req.Priority)
	switch priority {
	case "", domain.TicketPriorityLow, domain.TicketPriorityMedium, domain.TicketPriorityHigh, domain.TicketPriorityCritical:
	default:
		return apperrors.NewValidationError("unknown priority", map[string]any{"priority": req.Priority})
	}

	ticket, err := h.tickets.CreateTicket(c.Context(), user.ID, service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    priority,
		Zone:        req.Zone,
		CustomerID:  req.CustomerID,
		TerminalID:  req.TerminalID,
		DueDate:     req.DueDate,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.ToTicketResponse(ticket)})
}

// Get handles GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	ticket, err := h.tickets.GetTicket(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ToTicketResponse(ticket)})
}

// Assign handles POST /tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	var req dto.TicketAssignRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.AssigneeID == "" {
		return apperrors.NewValidationError("assignee_id required", nil)
	}

	ticket, err := h.tickets.AssignTicket(c.Context(), c.Params("id"), req.AssigneeID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ToTicketResponse(ticket)})
}

// Resolve handles POST /tickets/:id/resolve.
func (h *TicketsHandler) Resolve(c *fiber.Ctx) error {
	ticket, err := h.tickets.ResolveTicket(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ToTicketResponse(ticket)})
}

// History handles GET /tickets/:id/escalations.
func (h *TicketsHandler) History(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	records, err := h.history.ListByTicket(c.Context(), c.Params("id"), limit, offset)
	if err != nil {
		return apperrors.MapError(err)
	}

	out := make([]fiber.Map, 0, len(records))
	for _, record := range records {
		out = append(out, fiber.Map{
			"id":         record.ID,
			"ticket_id":  record.TicketID,
			"from_level": record.FromLevel,
			"to_level":   record.ToLevel,
			"note":       record.Note,
			"created_at": record.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": out})
}
