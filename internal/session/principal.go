package session

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const localsKey = "principal"

var ErrNoPrincipal = errors.New("no principal in request context")

// Principal is the verified identity attached to a request after the
// bearer token checks out. It lives for one request only.
type Principal struct {
	UserID   uuid.UUID
	Username string
}

// BearerToken extracts the raw token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if raw == "" {
		return "", false
	}
	return raw, true
}

// Store attaches the principal to the Fiber request context.
func Store(c *fiber.Ctx, p Principal) {
	c.Locals(localsKey, p)
}

// FromContext retrieves the principal set by the auth middleware.
func FromContext(c *fiber.Ctx) (Principal, error) {
	p, ok := c.Locals(localsKey).(Principal)
	if !ok {
		return Principal{}, ErrNoPrincipal
	}
	return p, nil
}
