package middleware

import (
	"blog/internal/models"

	"github.com/gofiber/fiber/v2"
)

// RequireRole only lets requesters holding one of roles through.
// It must run after AuthRequired.
func RequireRole(roles ...models.Role) fiber.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		requester := RequesterFrom(c)
		if requester == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication required",
			})
		}
		if _, ok := allowed[requester.Role]; !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Access forbidden",
			})
		}
		return c.Next()
	}
}
