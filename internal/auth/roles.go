package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// RequireAuth ensures a user is authenticated.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.User == nil {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		return c.Next()
	}
}

// RequireStaff ensures the authenticated user holds the staff flag.
func RequireStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.User == nil {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		if !principal.User.IsStaff {
			return fiber.NewError(http.StatusForbidden, "staff required")
		}
		return c.Next()
	}
}
