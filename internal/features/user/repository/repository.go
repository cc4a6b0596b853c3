package repository

import (
	"context"

	"github.com/google/uuid"

	"channel-bot-backend/internal/features/user/models"
)

// UserRepository persists marketplace users keyed by Telegram identity.
type UserRepository interface {
	// UpsertByTelegramID creates or refreshes a user record. Non-nil fields
	// overwrite stored values, nil fields preserve them.
	UpsertByTelegramID(ctx context.Context, telegramUserID int64, username, firstName, lastName *string) (uuid.UUID, error)

	// GetByID loads a user by internal id.
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}
