package middleware

import (
	"context"
	"strings"

	"fintrack/internal/models"
	"fintrack/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const userKey = "user"

// Authenticator resolves a bearer token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, sessionToken string) (*models.User, error)
}

// AuthRequired is a Fiber middleware to check for a valid session token. The
// live user record is stored in the context for subsequent handlers.
func AuthRequired(auth Authenticator, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(models.MessageResponse{
				Message: "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(models.MessageResponse{
				Message: "Authorization header format must be 'Bearer <token>'",
			})
		}

		user, err := auth.Authenticate(c.UserContext(), parts[1])
		if err != nil {
			log.Debug("session rejected", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(models.MessageResponse{
				Message: services.ErrInvalidCredentials,
			})
		}

		c.Locals(userKey, user)
		return c.Next()
	}
}

// CurrentUser returns the user stored by AuthRequired, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}
