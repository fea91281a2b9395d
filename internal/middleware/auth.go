package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/litterscan/backend/internal/dto"
	"github.com/litterscan/backend/internal/services"
	"github.com/litterscan/backend/internal/session"
)

// Protected verifies the bearer token on every request through the token
// service and attaches the resulting principal. A missing header, a
// malformed header and every verification failure all produce the same
// opaque 401.
func Protected(tokens *services.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, ok := session.BearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return unauthorized(c)
		}

		principal, err := tokens.Verify(raw)
		if err != nil {
			return unauthorized(c)
		}

		session.Store(c, principal)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error:   true,
		Message: "Unauthorized: invalid or expired token",
	})
}
