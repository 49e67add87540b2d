package middleware

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/adwola-api/internal/observability"
	"github.com/maheshrc27/adwola-api/pkg/utils"
)

type AuthMiddleware struct {
	verifier utils.TokenVerifier
}

func NewAuthMiddleware(verifier utils.TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// AuthMiddleware resolves the bearer token to a user id stored in
// c.Locals("user_id") and in the request context.
func (m *AuthMiddleware) AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := utils.ExtractBearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		claims, err := m.verifier.Verify(tokenString)
		if err != nil {
			slog.InfoContext(c.UserContext(), "token validation failed", "error", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		c.Locals("user_id", claims.Subject)
		c.SetUserContext(observability.WithUserID(c.UserContext(), claims.Subject))
		return c.Next()
	}
}
