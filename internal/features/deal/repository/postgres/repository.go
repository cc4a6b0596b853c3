package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"channel-bot-backend/internal/common/errors"
	"channel-bot-backend/internal/features/deal/models"
	"channel-bot-backend/internal/features/deal/repository"
)

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) repository.DealRepository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) ListActiveByChannel(ctx context.Context, channelID uuid.UUID) ([]models.Deal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, channel_id, advertiser_user_id, status, price_nano_ton, created_at, updated_at
		FROM deals
		WHERE channel_id = $1 AND status != ALL($2)
	`, channelID, pq.Array(models.TerminalStatuses))
	if err != nil {
		return nil, errors.NewDatabaseError("list active deals", err)
	}
	defer rows.Close()

	var deals []models.Deal
	for rows.Next() {
		var d models.Deal
		if err := rows.Scan(&d.ID, &d.ChannelID, &d.AdvertiserUserID, &d.Status, &d.PriceNanoTON, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, errors.NewDatabaseError("scan deal", err)
		}
		deals = append(deals, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDatabaseError("list active deals", err)
	}
	return deals, nil
}

func (r *postgresRepository) CancelSystem(ctx context.Context, dealID uuid.UUID) (bool, error) {
	return r.guardedUpdate(ctx, `
		UPDATE deals SET status = 'cancelled', updated_at = now()
		WHERE id = $1 AND status != ALL($2)
	`, dealID, pq.Array(models.TerminalStatuses))
}

func (r *postgresRepository) RefundSystem(ctx context.Context, dealID uuid.UUID) (bool, error) {
	return r.guardedUpdate(ctx, `
		UPDATE deals SET status = 'refunded', updated_at = now()
		WHERE id = $1 AND status = 'cancelled'
	`, dealID)
}

func (r *postgresRepository) MarkPosted(ctx context.Context, dealID uuid.UUID) (bool, error) {
	return r.guardedUpdate(ctx, `
		UPDATE deals SET status = 'posted', updated_at = now()
		WHERE id = $1 AND status IN ('scheduled', 'creative_approved')
	`, dealID)
}

func (r *postgresRepository) MarkHoldVerification(ctx context.Context, dealID uuid.UUID) (bool, error) {
	return r.guardedUpdate(ctx, `
		UPDATE deals SET status = 'hold_verification', updated_at = now()
		WHERE id = $1 AND status = 'posted'
	`, dealID)
}

func (r *postgresRepository) UpsertPost(ctx context.Context, post *models.DealPost) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO deal_posts (deal_id, telegram_message_id, telegram_chat_id, post_url, content_hash, posted_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (deal_id) DO UPDATE SET
			telegram_message_id = EXCLUDED.telegram_message_id,
			telegram_chat_id = EXCLUDED.telegram_chat_id,
			post_url = EXCLUDED.post_url,
			content_hash = EXCLUDED.content_hash,
			posted_at = now()
	`, post.DealID, post.TelegramMessageID, post.TelegramChatID, post.PostURL, post.ContentHash)
	if err != nil {
		return errors.NewDatabaseError("upsert deal post", err)
	}
	return nil
}

// guardedUpdate runs a conditional UPDATE and reports whether a row changed.
// A zero row count is the precondition failing, not an error.
func (r *postgresRepository) guardedUpdate(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, errors.NewDatabaseError("guarded deal update", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, errors.NewDatabaseError("guarded deal update", err)
	}
	return affected > 0, nil
}
