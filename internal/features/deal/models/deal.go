package models

import (
	"time"

	"github.com/google/uuid"
)

// Deal statuses.
const (
	StatusDraft                    = "draft"
	StatusSubmitted                = "submitted"
	StatusRejected                 = "rejected"
	StatusAccepted                 = "accepted"
	StatusAwaitingPayment          = "awaiting_payment"
	StatusFunded                   = "funded"
	StatusCreativePending          = "creative_pending"
	StatusCreativeSubmitted        = "creative_submitted"
	StatusCreativeChangesRequested = "creative_changes_requested"
	StatusCreativeApproved         = "creative_approved"
	StatusScheduled                = "scheduled"
	StatusPosted                   = "posted"
	StatusHoldVerification         = "hold_verification"
	StatusCompleted                = "completed"
	StatusRefunded                 = "refunded"
	StatusCancelled                = "cancelled"
)

// TerminalStatuses admit no further transition.
var TerminalStatuses = []string{
	StatusCompleted,
	StatusCancelled,
	StatusRefunded,
	StatusRejected,
}

// fundedStatuses are the states in which the advertiser's escrow already
// holds value, so cancellation must continue into a refund.
var fundedStatuses = map[string]struct{}{
	StatusFunded:                   {},
	StatusCreativePending:          {},
	StatusCreativeSubmitted:        {},
	StatusCreativeChangesRequested: {},
	StatusCreativeApproved:         {},
	StatusScheduled:                {},
	StatusPosted:                   {},
	StatusHoldVerification:         {},
}

// IsTerminal reports whether the status admits no further transition.
func IsTerminal(status string) bool {
	for _, s := range TerminalStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// IsFunded reports whether value has already moved for a deal in this status.
func IsFunded(status string) bool {
	_, ok := fundedStatuses[status]
	return ok
}

// Deal is a marketplace agreement to publish content in a channel.
type Deal struct {
	ID               uuid.UUID `json:"id"`
	ChannelID        uuid.UUID `json:"channel_id"`
	AdvertiserUserID uuid.UUID `json:"advertiser_user_id"`
	Status           string    `json:"status"`
	PriceNanoTON     int64     `json:"price_nano_ton"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// DealPost records the published creative for a deal.
type DealPost struct {
	DealID            uuid.UUID `json:"deal_id"`
	TelegramMessageID int64     `json:"telegram_message_id"`
	TelegramChatID    int64     `json:"telegram_chat_id"`
	PostURL           string    `json:"post_url"`
	ContentHash       string    `json:"content_hash"`
	PostedAt          time.Time `json:"posted_at"`
}
