package httpapi

import (
	"time"

	"github.com/mihhailt/telebridge/internal/server/models"
)

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type updateProfileRequest struct {
	Email    *string `json:"email"`
	Username *string `json:"username"`
}

type connectTelegramRequest struct {
	Code string `json:"code"`
}

type sendMessageRequest struct {
	RecipientID   int64   `json:"recipient_id"`
	Content       string  `json:"content"`
	AttachmentKey *string `json:"attachment_key,omitempty"`
}

type userResponse struct {
	ID         int64     `json:"id"`
	Email      string    `json:"email"`
	Username   string    `json:"username"`
	TelegramID *string   `json:"telegram_id,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

type messageResponse struct {
	ID                int64     `json:"id"`
	Content           string    `json:"content"`
	SenderID          int64     `json:"sender_id"`
	RecipientID       int64     `json:"recipient_id"`
	TelegramMessageID *string   `json:"telegram_message_id,omitempty"`
	AttachmentKey     *string   `json:"attachment_key,omitempty"`
	IsBotMessage      bool      `json:"is_bot_message"`
	CreatedAt         time.Time `json:"created_at"`
}

type statsResponse struct {
	MessageCount int64 `json:"message_count"`
}

type presignUploadResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type presignDownloadResponse struct {
	URL string `json:"url"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:         u.ID,
		Email:      u.Email,
		Username:   u.Username,
		TelegramID: u.TelegramID,
		IsActive:   u.IsActive,
		CreatedAt:  u.CreatedAt,
	}
}

func toUserResponses(users []*models.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

func toMessageResponse(m *models.Message) messageResponse {
	return messageResponse{
		ID:                m.ID,
		Content:           m.Content,
		SenderID:          m.SenderID,
		RecipientID:       m.RecipientID,
		TelegramMessageID: m.TelegramMessageID,
		AttachmentKey:     m.AttachmentKey,
		IsBotMessage:      m.IsBotMessage,
		CreatedAt:         m.CreatedAt,
	}
}

func toMessageResponses(msgs []*models.Message) []messageResponse {
	out := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessageResponse(m))
	}
	return out
}
