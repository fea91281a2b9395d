package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/litterscan/backend/internal/database"
	"github.com/litterscan/backend/internal/dto"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Alive is the bare liveness probe.
func (h *HealthHandler) Alive(c *fiber.Ctx) error {
	return c.SendString("alive")
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := database.Ping(); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
	})
}
