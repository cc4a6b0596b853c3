package service

import (
	"context"

	"github.com/google/uuid"

	usermodels "channel-bot-backend/internal/features/user/models"
	"channel-bot-backend/internal/platform/telegram"
)

// Notifier delivers best-effort messages to Telegram users.
type Notifier interface {
	SendMessage(ctx context.Context, chatID int64, text string) (*telegram.Message, error)
}

// UserDirectory resolves internal user ids to marketplace accounts.
type UserDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*usermodels.User, error)
}
