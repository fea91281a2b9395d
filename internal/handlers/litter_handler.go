package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/litterscan/backend/internal/dto"
	"github.com/litterscan/backend/internal/services"
	"github.com/litterscan/backend/internal/session"
)

type LitterHandler struct {
	litterService *services.LitterService
}

func NewLitterHandler(litterService *services.LitterService) *LitterHandler {
	return &LitterHandler{litterService: litterService}
}

// Create returns the new report id as soon as the report is persisted;
// enrichment happens out of band.
func (h *LitterHandler) Create(c *fiber.Ctx) error {
	principal, err := session.FromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.CreateLitterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if len(req.File) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Photo is required",
		})
	}

	id, err := h.litterService.Create(c.Context(), principal.UserID, req.Lat, req.Lng, req.File, req.Type)
	if err != nil {
		if errors.Is(err, services.ErrOwnerNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	return c.JSON(dto.CreateLitterResponse{ID: id.String()})
}

func (h *LitterHandler) List(c *fiber.Ctx) error {
	principal, err := session.FromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	reports, err := h.litterService.List(c.Context(), principal.UserID)
	if err != nil {
		if errors.Is(err, services.ErrOwnerNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	out := make([]dto.LitterResponse, 0, len(reports))
	for _, r := range reports {
		out = append(out, dto.LitterResponseFrom(r))
	}
	return c.JSON(out)
}
