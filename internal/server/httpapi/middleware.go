package httpapi

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/mihhailt/telebridge/internal/server/auth"
)

const userIDKey = "user_id"

// authRequired validates the Bearer token and stores the account id in the
// request locals for downstream handlers.
func (s *Server) authRequired(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)

	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return respondError(c, fiber.StatusUnauthorized, "unauthenticated")
	}

	userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "unauthenticated")
	}

	c.Locals(userIDKey, userID)
	return c.Next()
}

func currentUserID(c *fiber.Ctx) int64 {
	id, _ := c.Locals(userIDKey).(int64)
	return id
}
