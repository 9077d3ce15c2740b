package messages

import (
	"context"

	"github.com/mihhailt/telebridge/internal/server/models"
)

// Repository persists relayed messages. Rows are written before any delivery
// attempt and never mutated afterwards except to attach the external
// delivery reference.
type Repository interface {
	Create(ctx context.Context, message *models.Message) (*models.Message, error)
	AttachDeliveryRef(ctx context.Context, id int64, telegramMessageID string) error
	ListForUser(ctx context.Context, userID int64) ([]*models.Message, error)
	ListConversation(ctx context.Context, userID, otherID int64) ([]*models.Message, error)
	CountForUser(ctx context.Context, userID int64) (int64, error)
}
