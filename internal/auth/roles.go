package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// RequireElevated restricts a route to superusers and privileged group
// members.
func RequireElevated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := UserFromContext(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		if !user.Elevated() {
			return fiber.NewError(http.StatusForbidden, "elevated role required")
		}
		return c.Next()
	}
}

// RequireAuthenticated ensures a caller is logged in.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := UserFromContext(c); !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		return c.Next()
	}
}
