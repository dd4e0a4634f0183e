package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/escalation-service/internal/observability"
)

// OpsHandler exposes sweep counters for operators.
type OpsHandler struct {
	metrics *observability.SweepMetrics
}

// NewOpsHandler constructs handler.
func NewOpsHandler(metrics *observability.SweepMetrics) *OpsHandler {
	return &OpsHandler{metrics: metrics}
}

// SweepMetrics handles GET /ops/escalations/metrics.
func (h *OpsHandler) SweepMetrics(c *fiber.Ctx) error {
	sweeps, escalations, alerts, failures := h.metrics.Snapshot()
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"sweeps":            sweeps,
			"escalations":       escalations,
			"unassigned_alerts": alerts,
			"failures":          failures,
		},
	})
}
