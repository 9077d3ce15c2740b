package users

import (
	"context"

	"github.com/mihhailt/telebridge/internal/server/models"
)

// Repository persists accounts and their chat-identity bindings.
//
// BindTelegram relies on the unique constraint on the telegram_id column as
// the authoritative guard against two accounts binding the same identity;
// any application-level existence check is advisory only.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByTelegramID(ctx context.Context, telegramID string) (*models.User, error)
	UpdateProfile(ctx context.Context, id int64, email, username *string) (*models.User, error)
	BindTelegram(ctx context.Context, id int64, telegramID string) error
	UnbindTelegram(ctx context.Context, id int64) error
	ListLinked(ctx context.Context, excludeID int64) ([]*models.User, error)
}
