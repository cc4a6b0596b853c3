package repository

import (
	"context"

	"channel-bot-backend/internal/features/audit/models"
)

// AuditRepository appends audit entries. Append-only by contract: there is
// no update or delete surface.
type AuditRepository interface {
	Log(ctx context.Context, entry models.Entry) error
}
