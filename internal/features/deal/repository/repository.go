package repository

import (
	"context"

	"github.com/google/uuid"

	"channel-bot-backend/internal/features/deal/models"
)

// DealRepository persists deals with status-guarded conditional transitions.
// Guarded updates compare against the expected precondition atomically and
// report whether they applied; they never error on a benign no-op.
type DealRepository interface {
	// ListActiveByChannel returns every deal on the channel whose status is
	// outside the terminal subset.
	ListActiveByChannel(ctx context.Context, channelID uuid.UUID) ([]models.Deal, error)

	// CancelSystem transitions a deal to cancelled unless it is already
	// terminal. Returns whether the transition applied.
	CancelSystem(ctx context.Context, dealID uuid.UUID) (bool, error)

	// RefundSystem transitions cancelled → refunded. Returns whether the
	// transition applied.
	RefundSystem(ctx context.Context, dealID uuid.UUID) (bool, error)

	// MarkPosted transitions scheduled/creative_approved → posted.
	MarkPosted(ctx context.Context, dealID uuid.UUID) (bool, error)

	// MarkHoldVerification transitions posted → hold_verification.
	MarkHoldVerification(ctx context.Context, dealID uuid.UUID) (bool, error)

	// UpsertPost records the published creative for a deal.
	UpsertPost(ctx context.Context, post *models.DealPost) error
}
