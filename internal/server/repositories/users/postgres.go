package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mihhailt/telebridge/internal/common"
	"github.com/mihhailt/telebridge/internal/dbx"
	"github.com/mihhailt/telebridge/internal/server/models"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// mapUniqueViolation translates a 23505 on one of the users table constraints
// into the matching sentinel error. Constraint names come from the initial
// migration.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil
	}
	switch pgErr.ConstraintName {
	case "users_email_key":
		return common.ErrEmailTaken
	case "users_username_key":
		return common.ErrUsernameTaken
	case "users_telegram_id_key":
		return common.ErrAlreadyLinked
	}
	return nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (email, username, password_hash, is_active)
         VALUES ($1, $2, $3, TRUE)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.Username, user.PasswordHash).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.IsActive = true
	return user, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, where string, arg any) (*models.User, error) {
	query :=
		`SELECT id, email, username, password_hash, telegram_id, is_active, created_at FROM users
		 WHERE ` + where

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.Username, &user.PasswordHash,
		&user.TelegramID, &user.IsActive, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, `id = $1`, id)
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, `username = $1`, username)
}

func (r *PostgresRepository) GetByTelegramID(ctx context.Context, telegramID string) (*models.User, error) {
	return r.getOne(ctx, `telegram_id = $1`, telegramID)
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, id int64, email, username *string) (*models.User, error) {

	query :=
		`UPDATE users
		 SET email = COALESCE($2, email), username = COALESCE($3, username)
		 WHERE id = $1
		 RETURNING id, email, username, password_hash, telegram_id, is_active, created_at
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, id, email, username).Scan(
		&user.ID, &user.Email, &user.Username, &user.PasswordHash,
		&user.TelegramID, &user.IsActive, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		if mapped := mapUniqueViolation(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

// BindTelegram associates the chat identity with the account. The unique
// constraint on telegram_id is the race guard: a concurrent bind of the same
// identity by another account surfaces as common.ErrAlreadyLinked. Re-binding
// the same account to the same identity is a no-op update and succeeds.
func (r *PostgresRepository) BindTelegram(ctx context.Context, id int64, telegramID string) error {

	query :=
		`UPDATE users SET telegram_id = $2
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, telegramID)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != nil {
			return mapped
		}
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

// UnbindTelegram clears the binding. Returns common.ErrNotBound when the
// account had no active binding (or does not exist).
func (r *PostgresRepository) UnbindTelegram(ctx context.Context, id int64) error {

	query :=
		`UPDATE users SET telegram_id = NULL
		 WHERE id = $1 AND telegram_id IS NOT NULL
		 `

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrNotBound
	}

	return nil
}

// ListLinked returns accounts with a bound chat identity, excluding the
// given account. Used to populate the web side's recipient picker.
func (r *PostgresRepository) ListLinked(ctx context.Context, excludeID int64) ([]*models.User, error) {

	query :=
		`SELECT id, email, username, password_hash, telegram_id, is_active, created_at FROM users
		 WHERE id <> $1 AND telegram_id IS NOT NULL
		 ORDER BY username
		 `

	rows, err := r.db.QueryContext(ctx, query, excludeID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		user := &models.User{}
		err := rows.Scan(
			&user.ID, &user.Email, &user.Username, &user.PasswordHash,
			&user.TelegramID, &user.IsActive, &user.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
