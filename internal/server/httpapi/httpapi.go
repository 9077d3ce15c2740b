// Package httpapi is the web-side surface of the relay: account and token
// endpoints, chat-identity linking, message sending and listings, attachment
// presigning.
package httpapi

import (
	"context"

	"github.com/mihhailt/telebridge/internal/server/models"
	"github.com/mihhailt/telebridge/internal/server/services"
)

// UserService is the slice of the account service the API exposes.
type UserService interface {
	Register(ctx context.Context, email, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	CurrentUser(ctx context.Context, userID int64) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int64, email, username *string) (*models.User, error)
}

// RelayService is the slice of the relay the API exposes.
type RelayService interface {
	ConfirmPairing(ctx context.Context, userID int64, code string) (*models.User, error)
	LinkDirect(ctx context.Context, userID int64, chatID string) (*models.User, error)
	Unlink(ctx context.Context, userID int64) error
	SendMessage(ctx context.Context, senderID, recipientID int64, content string, attachmentKey *string) (*models.Message, error)
	SendBotMessage(ctx context.Context, senderID, recipientID int64, content string) (*models.Message, error)
	ListMessages(ctx context.Context, userID int64) ([]*models.Message, error)
	ListConversation(ctx context.Context, userID, otherID int64) ([]*models.Message, error)
	MessageStats(ctx context.Context, userID int64) (int64, error)
	ListRecipients(ctx context.Context, userID int64) ([]*models.User, error)
}

// AttachmentService issues presigned storage URLs.
type AttachmentService interface {
	GetPresignedPutURL(ctx context.Context) (string, string, error)
	GetPresignedGetURL(ctx context.Context, key string) (string, error)
}
