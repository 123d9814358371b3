package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const LocalUserID = "user_id"

// Middleware stores the bearer token's user id in locals. Invalid tokens
// are rejected; a missing token is rejected only when required is set.
func Middleware(svc *Service, required bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := parseBearer(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			if required {
				return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
			}
			return c.Next()
		}

		userID, err := svc.ValidateToken(token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		c.Locals(LocalUserID, userID)
		return c.Next()
	}
}

// UserID returns the authenticated user id, if any.
func UserID(c *fiber.Ctx) (int64, bool) {
	id, ok := c.Locals(LocalUserID).(int64)
	return id, ok
}

func parseBearer(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
