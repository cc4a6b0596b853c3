package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"channel-bot-backend/internal/common/errors"
	"channel-bot-backend/internal/features/user/models"
	"channel-bot-backend/internal/features/user/repository"
)

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) repository.UserRepository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) UpsertByTelegramID(ctx context.Context, telegramUserID int64, username, firstName, lastName *string) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (telegram_user_id, username, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (telegram_user_id) DO UPDATE SET
			username = COALESCE(EXCLUDED.username, users.username),
			first_name = COALESCE(EXCLUDED.first_name, users.first_name),
			last_name = COALESCE(EXCLUDED.last_name, users.last_name),
			last_active_at = now()
		RETURNING id
	`, telegramUserID, username, firstName, lastName).Scan(&id)
	if err != nil {
		return uuid.Nil, errors.NewDatabaseError("upsert user", err)
	}
	return id, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var (
		u         models.User
		username  sql.NullString
		firstName sql.NullString
		lastName  sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, telegram_user_id, username, first_name, last_name, last_active_at, created_at
		FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.TelegramUserID, &username, &firstName, &lastName, &u.LastActiveAt, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodeUserNotFound, "user not found").WithDetail("id", id.String())
	}
	if err != nil {
		return nil, errors.NewDatabaseError("get user", err)
	}

	if username.Valid {
		u.Username = &username.String
	}
	if firstName.Valid {
		u.FirstName = &firstName.String
	}
	if lastName.Valid {
		u.LastName = &lastName.String
	}
	return &u, nil
}
