package postgres

import (
	"context"
	"database/sql"

	"channel-bot-backend/internal/common/errors"
	"channel-bot-backend/internal/features/audit/models"
	"channel-bot-backend/internal/features/audit/repository"
)

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) repository.AuditRepository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Log(ctx context.Context, entry models.Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_log (actor_type, action, entity_type, entity_id, details)
		VALUES ($1, $2, $3, $4, $5)
	`, entry.ActorType, entry.Action, entry.EntityType, entry.EntityID, entry.Details)
	if err != nil {
		return errors.NewDatabaseError("insert audit entry", err)
	}
	return nil
}
