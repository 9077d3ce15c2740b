package messages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mihhailt/telebridge/internal/common"
	"github.com/mihhailt/telebridge/internal/dbx"
	"github.com/mihhailt/telebridge/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, message *models.Message) (*models.Message, error) {

	query :=
		`INSERT INTO messages (content, sender_id, recipient_id, attachment_key, is_bot_message)
         VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		message.Content, message.SenderID, message.RecipientID,
		message.AttachmentKey, message.IsBotMessage).Scan(&message.ID, &message.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return message, nil
}

func (r *PostgresRepository) AttachDeliveryRef(ctx context.Context, id int64, telegramMessageID string) error {

	query :=
		`UPDATE messages SET telegram_message_id = $2
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, telegramMessageID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}

const selectColumns = `id, content, sender_id, recipient_id, telegram_message_id, attachment_key, is_bot_message, created_at`

func (r *PostgresRepository) queryList(ctx context.Context, query string, args ...any) ([]*models.Message, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Message
	for rows.Next() {
		m := &models.Message{}
		err := rows.Scan(&m.ID, &m.Content, &m.SenderID, &m.RecipientID,
			&m.TelegramMessageID, &m.AttachmentKey, &m.IsBotMessage, &m.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

// ListForUser returns every message the account sent or received,
// newest first.
func (r *PostgresRepository) ListForUser(ctx context.Context, userID int64) ([]*models.Message, error) {
	query :=
		`SELECT ` + selectColumns + ` FROM messages
		 WHERE sender_id = $1 OR recipient_id = $1
		 ORDER BY created_at DESC
		 `
	return r.queryList(ctx, query, userID)
}

// ListConversation returns the messages exchanged between two accounts in
// either direction, newest first.
func (r *PostgresRepository) ListConversation(ctx context.Context, userID, otherID int64) ([]*models.Message, error) {
	query :=
		`SELECT ` + selectColumns + ` FROM messages
		 WHERE (sender_id = $1 AND recipient_id = $2) OR (sender_id = $2 AND recipient_id = $1)
		 ORDER BY created_at DESC
		 `
	return r.queryList(ctx, query, userID, otherID)
}

func (r *PostgresRepository) CountForUser(ctx context.Context, userID int64) (int64, error) {
	query :=
		`SELECT COUNT(*) FROM messages
		 WHERE sender_id = $1 OR recipient_id = $1
		 `

	var n int64
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&n)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("db error: %w", err)
	}

	return n, nil
}
