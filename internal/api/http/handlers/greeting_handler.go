package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/token-service/internal/auth"
)

// GreetingHandler serves the sample protected routes.
type GreetingHandler struct{}

func NewGreetingHandler() *GreetingHandler {
	return &GreetingHandler{}
}

// User handles GET /api/user.
func (h *GreetingHandler) User(c *fiber.Ctx) error {
	return h.greet(c, "Hello User: ")
}

// Admin handles GET /api/admin.
func (h *GreetingHandler) Admin(c *fiber.Ctx) error {
	return h.greet(c, "Hello Admin: ")
}

func (h *GreetingHandler) greet(c *fiber.Ctx, prefix string) error {
	principal, ok := auth.PrincipalFromContext(c.UserContext())
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}
	return c.SendString(prefix + principal.Username)
}
