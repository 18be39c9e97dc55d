package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// RequireAuthority ensures the principal holds at least one of the allowed authorities.
func RequireAuthority(allowed ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromCtx(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		for _, authority := range allowed {
			if principal.HasAuthority(authority) {
				return c.Next()
			}
		}
		return fiber.NewError(http.StatusForbidden, "insufficient authority")
	}
}

// RequireAuthenticated ensures a principal was attached by the auth middleware.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromCtx(c); !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		return c.Next()
	}
}
