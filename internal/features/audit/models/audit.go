package models

import (
	"time"

	"github.com/google/uuid"
)

// Actor types.
const (
	ActorSystem = "system"
	ActorUser   = "user"
)

// Audit actions emitted by the deal cascade.
const (
	ActionDealCancelledBotRemoved = "deal_cancelled_bot_removed"
	ActionDealRefundedBotRemoved  = "deal_refunded_bot_removed"
)

// Entry is one append-only audit record. Entries are never updated or
// deleted.
type Entry struct {
	ID         uuid.UUID `json:"id"`
	ActorType  string    `json:"actor_type"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   uuid.UUID `json:"entity_id"`
	Details    string    `json:"details,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
