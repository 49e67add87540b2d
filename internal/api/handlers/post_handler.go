package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/adwola-api/internal/service"
	"github.com/maheshrc27/adwola-api/internal/transfer"
)

type PostHandler struct {
	s service.PostService
}

func NewPostHandler(service service.PostService) *PostHandler {
	return &PostHandler{s: service}
}

func (h *PostHandler) RegeneratePost(c *fiber.Ctx) error {
	var req transfer.RegenerateRequest
	if err := c.BodyParser(&req); err != nil {
		slog.InfoContext(c.UserContext(), err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	post, err := h.s.RegeneratePost(c.UserContext(), GetUserID(c), req.PostID)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"post":    post,
	})
}
