package httpapi

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) handleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "malformed_body")
	}

	if req.Email == "" || req.Username == "" || req.Password == "" {
		return respondError(c, fiber.StatusBadRequest, "missing_fields")
	}

	user, err := s.users.Register(c.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(toUserResponse(user))
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "malformed_body")
	}

	pair, err := s.users.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (s *Server) handleRefresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "malformed_body")
	}

	pair, err := s.users.RefreshToken(c.Context(), req.RefreshToken)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (s *Server) handleCurrentUser(c *fiber.Ctx) error {
	user, err := s.users.CurrentUser(c.Context(), currentUserID(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(toUserResponse(user))
}

func (s *Server) handleUpdateProfile(c *fiber.Ctx) error {
	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "malformed_body")
	}

	user, err := s.users.UpdateProfile(c.Context(), currentUserID(c), req.Email, req.Username)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(toUserResponse(user))
}

func (s *Server) handleConnectTelegram(c *fiber.Ctx) error {
	var req connectTelegramRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "malformed_body")
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		return respondError(c, fiber.StatusBadRequest, "invalid_code")
	}

	user, err := s.relay.ConfirmPairing(c.Context(), currentUserID(c), code)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(toUserResponse(user))
}

func (s *Server) handleLinkDirect(c *fiber.Ctx) error {
	chatID := c.Params("chatID")
	if chatID == "" {
		return respondError(c, fiber.StatusBadRequest, "missing_chat_id")
	}

	user, err := s.relay.LinkDirect(c.Context(), currentUserID(c), chatID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(toUserResponse(user))
}

func (s *Server) handleUnlink(c *fiber.Ctx) error {
	if err := s.relay.Unlink(c.Context(), currentUserID(c)); err != nil {
		return writeError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleSendMessage(c *fiber.Ctx) error {
	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "malformed_body")
	}

	if req.Content == "" {
		return respondError(c, fiber.StatusBadRequest, "missing_fields")
	}

	msg, err := s.relay.SendMessage(c.Context(), currentUserID(c), req.RecipientID, req.Content, req.AttachmentKey)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(toMessageResponse(msg))
}

func (s *Server) handleSendBotMessage(c *fiber.Ctx) error {
	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "malformed_body")
	}

	if req.Content == "" {
		return respondError(c, fiber.StatusBadRequest, "missing_fields")
	}

	msg, err := s.relay.SendBotMessage(c.Context(), currentUserID(c), req.RecipientID, req.Content)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(toMessageResponse(msg))
}

func (s *Server) handleListMessages(c *fiber.Ctx) error {
	msgs, err := s.relay.ListMessages(c.Context(), currentUserID(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(toMessageResponses(msgs))
}

func (s *Server) handleListConversation(c *fiber.Ctx) error {
	otherID, err := strconv.ParseInt(c.Params("userID"), 10, 64)
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "malformed_user_id")
	}

	msgs, err := s.relay.ListConversation(c.Context(), currentUserID(c), otherID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(toMessageResponses(msgs))
}

func (s *Server) handleMessageStats(c *fiber.Ctx) error {
	count, err := s.relay.MessageStats(c.Context(), currentUserID(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(statsResponse{MessageCount: count})
}

func (s *Server) handleListRecipients(c *fiber.Ctx) error {
	users, err := s.relay.ListRecipients(c.Context(), currentUserID(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(toUserResponses(users))
}

func (s *Server) handlePresignUpload(c *fiber.Ctx) error {
	key, url, err := s.attachments.GetPresignedPutURL(c.Context())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(presignUploadResponse{Key: key, URL: url})
}

func (s *Server) handlePresignDownload(c *fiber.Ctx) error {
	key := c.Query("key")
	if key == "" {
		return respondError(c, fiber.StatusBadRequest, "missing_key")
	}

	url, err := s.attachments.GetPresignedGetURL(c.Context(), key)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(presignDownloadResponse{URL: url})
}

func (s *Server) handleHealthz(c *fiber.Ctx) error {
	if s.db != nil {
		if err := s.db.PingContext(c.Context()); err != nil {
			return respondError(c, fiber.StatusServiceUnavailable, "database_unavailable")
		}
	}

	return c.JSON(fiber.Map{"status": "ok"})
}
