package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/adwola-api/internal/models"
	"github.com/maheshrc27/adwola-api/internal/service"
	"github.com/maheshrc27/adwola-api/internal/transfer"
)

const IdempotencyHeader = "Idempotency-Key"

type BriefHandler struct {
	s service.BriefService
}

func NewBriefHandler(service service.BriefService) *BriefHandler {
	return &BriefHandler{s: service}
}

func (h *BriefHandler) CreateBrief(c *fiber.Ctx) error {
	var bc transfer.BriefCreation
	if err := c.BodyParser(&bc); err != nil {
		slog.InfoContext(c.UserContext(), err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	result, err := h.s.CreateBrief(c.UserContext(), GetUserID(c), &bc, c.Get(IdempotencyHeader))
	if err != nil {
		return respondError(c, err)
	}

	// async runs and replays of a run still in flight
	if result.Status == models.BriefStatusProcessing {
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"success":  true,
			"brief_id": result.BriefID,
			"status":   result.Status,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":         true,
		"brief_id":        result.BriefID,
		"posts_generated": result.PostsGenerated,
		"status":          result.Status,
	})
}

func (h *BriefHandler) GetBrief(c *fiber.Ctx) error {
	details, err := h.s.GetBrief(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"brief":   details.Brief,
		"posts":   details.Posts,
	})
}
