package middleware

import (
	"strings"

	"blog/internal/authz"
	"blog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const requesterKey = "requester"

// AuthRequired is a Fiber middleware that resolves the bearer token to a
// stored user and stores the resulting authz.Requester for later handlers.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		requester, err := authService.ResolveRequester(c.UserContext(), parts[1])
		if err != nil {
			log.Debug().Err(err).Str("path", c.Path()).Msg("token rejected")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		}

		c.Locals(requesterKey, requester)
		return c.Next()
	}
}

// RequesterFrom returns the requester stored by AuthRequired, or nil.
func RequesterFrom(c *fiber.Ctx) *authz.Requester {
	requester, _ := c.Locals(requesterKey).(*authz.Requester)
	return requester
}

// SetRequester stores requester on c. Tests use it to bypass token parsing.
func SetRequester(c *fiber.Ctx, requester *authz.Requester) {
	c.Locals(requesterKey, requester)
}
