package middleware

import (
	"github.com/gofiber/fiber/v2"

	"trackpoint/backend/config"
	"trackpoint/backend/utils"
)

// AuthMiddleware rejects requests without a valid bearer token and stores
// the authenticated user id under "user_id".
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return err
		}
		c.Locals("user_id", userID)
		return c.Next()
	}
}
