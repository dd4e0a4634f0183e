package http

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/escalation-service/internal/api/http/handlers"
	"github.com/spec-kit/escalation-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Notifications  *handlers.NotificationsHandler
	Ops            *handlers.OpsHandler
	WS             *handlers.WSHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/users/register", cfg.Users.Register)
	authGroup.Post("/users/login", cfg.Users.Login)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	tickets.Post("/", cfg.Tickets.Create)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Get("/:id/escalations", cfg.Tickets.History)
	tickets.Post("/:id/assign", auth.RequireElevated(), cfg.Tickets.Assign)
	tickets.Post("/:id/resolve", auth.RequireElevated(), cfg.Tickets.Resolve)

	notifications := app.Group("/notifications", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	notifications.Get("/", cfg.Notifications.ListUnread)
	notifications.Post("/:id/read", cfg.Notifications.MarkRead)

	ops := app.Group("/ops", cfg.AuthMiddleware.Handle, auth.RequireElevated())
	ops.Get("/escalations/metrics", cfg.Ops.SweepMetrics)

	app.Get("/ws/notifications",
		cfg.AuthMiddleware.Handle,
		cfg.WS.Upgrade,
		websocket.New(cfg.WS.Serve))
}
