package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"channel-bot-backend/internal/common/errors"
	"channel-bot-backend/internal/features/channel/models"
	"channel-bot-backend/internal/features/channel/repository"
)

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) repository.ChannelRepository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Upsert(ctx context.Context, p repository.UpsertParams) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO channels (telegram_chat_id, username, title, added_by_user_id, bot_status, analytics_status, bot_added_at)
		VALUES ($1, $2, $3, $4, $5, 'none', now())
		ON CONFLICT (username) DO UPDATE SET
			telegram_chat_id = COALESCE(EXCLUDED.telegram_chat_id, channels.telegram_chat_id),
			title = COALESCE(EXCLUDED.title, channels.title),
			added_by_user_id = COALESCE(EXCLUDED.added_by_user_id, channels.added_by_user_id),
			bot_status = EXCLUDED.bot_status,
			bot_added_at = now(),
			updated_at = now()
	`, p.TelegramChatID, repository.NormalizeUsername(p.Username), p.Title, p.AddedByUserID, p.BotStatus)
	if err != nil {
		return errors.NewDatabaseError("upsert channel", err)
	}
	return nil
}

const channelColumns = `
	SELECT id, telegram_chat_id, username, title, bot_status, analytics_status,
	       added_by_user_id, bot_added_at, bot_removed_at, created_at, updated_at
	FROM channels`

func (r *postgresRepository) GetByUsername(ctx context.Context, username string) (*models.Channel, error) {
	username = repository.NormalizeUsername(username)
	row := r.db.QueryRowContext(ctx, channelColumns+` WHERE username = $1`, username)
	return scanChannel(row, username)
}

func (r *postgresRepository) GetByTelegramChatID(ctx context.Context, telegramChatID int64) (*models.Channel, error) {
	row := r.db.QueryRowContext(ctx, channelColumns+` WHERE telegram_chat_id = $1`, telegramChatID)
	return scanChannel(row, "")
}

func scanChannel(row *sql.Row, username string) (*models.Channel, error) {
	var (
		ch           models.Channel
		addedBy      sql.NullString
		botAddedAt   sql.NullTime
		botRemovedAt sql.NullTime
		title        sql.NullString
	)
	err := row.Scan(
		&ch.ID, &ch.TelegramChatID, &ch.Username, &title, &ch.BotStatus, &ch.AnalyticsStatus,
		&addedBy, &botAddedAt, &botRemovedAt, &ch.CreatedAt, &ch.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewChannelNotFoundError(username)
	}
	if err != nil {
		return nil, errors.NewDatabaseError("get channel", err)
	}

	if title.Valid {
		ch.Title = &title.String
	}
	if addedBy.Valid {
		if id, err := uuid.Parse(addedBy.String); err == nil {
			ch.AddedByUserID = &id
		}
	}
	if botAddedAt.Valid {
		ch.BotAddedAt = &botAddedAt.Time
	}
	if botRemovedAt.Valid {
		ch.BotRemovedAt = &botRemovedAt.Time
	}
	return &ch, nil
}

func (r *postgresRepository) SetBotRemoved(ctx context.Context, username string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE channels SET bot_status = 'removed', bot_removed_at = now(), updated_at = now()
		WHERE username = $1
	`, repository.NormalizeUsername(username))
	if err != nil {
		return errors.NewDatabaseError("set bot removed", err)
	}
	return nil
}

func (r *postgresRepository) SetAnalyticsStatus(ctx context.Context, username, status string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE channels SET analytics_status = $1, updated_at = now()
		WHERE username = $2
	`, status, repository.NormalizeUsername(username))
	if err != nil {
		return errors.NewDatabaseError("set analytics status", err)
	}
	return nil
}

func (r *postgresRepository) SyncInfo(ctx context.Context, telegramChatID int64, username, title *string) error {
	if username == nil && title == nil {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE channels SET
			username = COALESCE($1, username),
			title = COALESCE($2, title),
			updated_at = now()
		WHERE telegram_chat_id = $3
	`, username, title, telegramChatID)
	if err != nil {
		return errors.NewDatabaseError("sync channel info", err)
	}
	return nil
}

func (r *postgresRepository) AddMember(ctx context.Context, channelUsername string, userID uuid.UUID, role string, canPost bool) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO channel_members (channel_id, user_id, role, can_post, last_admin_check_at)
		SELECT c.id, $2, $3, $4, now()
		FROM channels c WHERE c.username = $1
		ON CONFLICT (channel_id, user_id) DO UPDATE SET
			role = EXCLUDED.role, can_post = EXCLUDED.can_post, last_admin_check_at = now()
	`, repository.NormalizeUsername(channelUsername), userID, role, canPost)
	if err != nil {
		return errors.NewDatabaseError("add channel member", err)
	}
	return nil
}
