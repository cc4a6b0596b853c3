package events

import "context"

// Stream names.
const (
	StreamDeals    = "deals"
	StreamChannels = "channels"
)

// Event types.
const (
	EventDealStatusChanged = "deal_status_changed"
	EventChannelRemoved    = "channel_removed"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}
