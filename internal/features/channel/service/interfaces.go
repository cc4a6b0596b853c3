package service

import (
	"context"

	channelmodels "channel-bot-backend/internal/features/channel/models"
	dealservice "channel-bot-backend/internal/features/deal/service"
	"channel-bot-backend/internal/platform/telegram"
	"channel-bot-backend/internal/platform/userbot"
)

// BotAPI is the slice of the Bot API client the channel service depends on.
type BotAPI interface {
	GetChat(ctx context.Context, chatRef string) (*telegram.Chat, error)
	GetChatAdministrators(ctx context.Context, chatID int64) ([]telegram.ChatMember, error)
	PromoteChatMember(ctx context.Context, chatID, userID int64, rights telegram.AdminRights) error
}

// UserbotAPI is the userbot surface used during analytics onboarding.
type UserbotAPI interface {
	GetMe(ctx context.Context) (*userbot.Me, error)
	JoinChannel(ctx context.Context, username string) error
}

// DealCascade collapses a channel's active deals after bot removal.
type DealCascade interface {
	CancelChannelDeals(ctx context.Context, channel *channelmodels.Channel) (dealservice.CascadeResult, error)
}
