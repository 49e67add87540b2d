package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/adwola-api/internal/models"
)

func GetUserID(c *fiber.Ctx) string {
	userID, _ := c.Locals("user_id").(string)
	return userID
}

var statusByCode = map[string]int{
	models.CodeUnauthorized:       fiber.StatusUnauthorized,
	models.CodeValidation:         fiber.StatusBadRequest,
	models.CodeNotFound:           fiber.StatusNotFound,
	models.CodeForbidden:          fiber.StatusForbidden,
	models.CodeUsageLimitExceeded: fiber.StatusTooManyRequests,
	models.CodeUsageUnavailable:   fiber.StatusServiceUnavailable,
	models.CodeConflict:           fiber.StatusConflict,
	models.CodeMalformedStrategy:  fiber.StatusInternalServerError,
	models.CodeUpstreamAI:         fiber.StatusInternalServerError,
	models.CodeBriefFailed:        fiber.StatusInternalServerError,
}

// respondError writes err as {"error": message} with the status of its code.
// Errors without a code are answered with 500 and their raw message.
func respondError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		slog.ErrorContext(c.UserContext(), "request failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	status, ok := statusByCode[appErr.Code]
	if !ok {
		status = fiber.StatusInternalServerError
	}
	if status >= fiber.StatusInternalServerError {
		slog.ErrorContext(c.UserContext(), "request failed", "code", appErr.Code, "error", err)
	}

	body := fiber.Map{"error": appErr.Message}
	if status == fiber.StatusInternalServerError {
		body["error"] = err.Error()
	}
	if appErr.Code == models.CodeUsageLimitExceeded {
		body["code"] = appErr.Code
		body["upgradeRequired"] = true
	}
	for k, v := range appErr.Details {
		body[k] = v
	}

	return c.Status(status).JSON(body)
}
