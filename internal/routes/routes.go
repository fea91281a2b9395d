package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/litterscan/backend/internal/handlers"
	"github.com/litterscan/backend/internal/middleware"
	"github.com/litterscan/backend/internal/services"
)

func Setup(
	app *fiber.App,
	tokens *services.TokenService,
	authHandler *handlers.AuthHandler,
	litterHandler *handlers.LitterHandler,
	healthHandler *handlers.HealthHandler,
) {
	// Liveness probe outside the versioned prefix
	app.Get("/alive", healthHandler.Alive)

	v1 := app.Group("/v1")

	// General API rate limiter: 60 req/min per IP
	v1.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	v1.Get("/health", healthHandler.Check)

	// Auth-specific rate limit: 10 req/min per IP (stricter)
	auth := v1.Group("/public/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/signup", authHandler.Signup)
	auth.Post("/signin", authHandler.Signin)

	protected := v1.Group("/protected", middleware.Protected(tokens))
	protected.Post("/litter", litterHandler.Create)
	protected.Get("/litter", litterHandler.List)
}
