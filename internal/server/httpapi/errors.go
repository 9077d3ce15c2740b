package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/mihhailt/telebridge/internal/common"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps service-level sentinel errors to the wire error codes and
// HTTP statuses of the API contract. Anything unmapped is an opaque 500.
func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, common.ErrInvalidCode):
		return respondError(c, fiber.StatusBadRequest, "invalid_code")
	case errors.Is(err, common.ErrAlreadyLinked):
		return respondError(c, fiber.StatusConflict, "already_linked")
	case errors.Is(err, common.ErrNotBound):
		return respondError(c, fiber.StatusBadRequest, "not_bound")
	case errors.Is(err, common.ErrInvalidRecipient):
		return respondError(c, fiber.StatusBadRequest, "invalid_recipient")
	case errors.Is(err, common.ErrRecipientNotFound):
		return respondError(c, fiber.StatusNotFound, "recipient_not_found")
	case errors.Is(err, common.ErrEmailTaken):
		return respondError(c, fiber.StatusBadRequest, "email_taken")
	case errors.Is(err, common.ErrUsernameTaken):
		return respondError(c, fiber.StatusBadRequest, "username_taken")
	case errors.Is(err, common.ErrRefreshTokenExpired):
		return respondError(c, fiber.StatusUnauthorized, "unauthenticated")
	case errors.Is(err, common.ErrorUnauthorized):
		return respondError(c, fiber.StatusUnauthorized, "unauthenticated")
	case errors.Is(err, common.ErrInactiveUser):
		return respondError(c, fiber.StatusForbidden, "inactive")
	case errors.Is(err, common.ErrorNotFound):
		return respondError(c, fiber.StatusNotFound, "not_found")
	default:
		return respondError(c, fiber.StatusInternalServerError, "internal_error")
	}
}

func respondError(c *fiber.Ctx, status int, code string) error {
	return c.Status(status).JSON(errorResponse{Error: code})
}
