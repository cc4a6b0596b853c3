package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"channel-bot-backend/internal/features/channel/models"
)

// UpsertParams carries the channel fields known at admission time.
type UpsertParams struct {
	TelegramChatID int64
	Username       string
	Title          *string
	AddedByUserID  uuid.UUID
	BotStatus      string
}

// ChannelRepository persists channels and their member links.
type ChannelRepository interface {
	// Upsert registers a channel or refreshes an existing record.
	// Merge-on-non-null: each incoming field overwrites the stored value
	// only when non-null; bot_status and bot_added_at are always set.
	Upsert(ctx context.Context, p UpsertParams) error

	GetByUsername(ctx context.Context, username string) (*models.Channel, error)

	GetByTelegramChatID(ctx context.Context, telegramChatID int64) (*models.Channel, error)

	// SetBotRemoved marks the bot gone from the channel. Unconditional, so
	// repeated removal events are safe no-ops.
	SetBotRemoved(ctx context.Context, username string) error

	SetAnalyticsStatus(ctx context.Context, username, status string) error

	// SyncInfo refreshes username/title by external chat id; nil fields are
	// left untouched.
	SyncInfo(ctx context.Context, telegramChatID int64, username, title *string) error

	// AddMember links a user to a channel, updating role and posting rights
	// on conflict.
	AddMember(ctx context.Context, channelUsername string, userID uuid.UUID, role string, canPost bool) error
}

// NormalizeUsername lowercases a channel handle and strips the @ prefix.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(username), "@"))
}
