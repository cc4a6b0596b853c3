package models

import (
	"time"

	"github.com/google/uuid"
)

// Bot presence in a channel.
const (
	BotStatusActive  = "active"
	BotStatusRemoved = "removed"
)

// Analytics onboarding states for the userbot.
// none → pending → {active, failed}; active → removed on channel removal.
// failed is terminal: onboarding is retried only by re-adding the bot.
const (
	AnalyticsStatusNone    = "none"
	AnalyticsStatusPending = "pending"
	AnalyticsStatusActive  = "active"
	AnalyticsStatusFailed  = "failed"
	AnalyticsStatusRemoved = "removed"
)

// Channel is a public broadcast channel registered on the marketplace.
// Created when the bot is added as admin, never hard-deleted.
type Channel struct {
	ID              uuid.UUID  `json:"id"`
	TelegramChatID  int64      `json:"telegram_chat_id"`
	Username        string     `json:"username"`
	Title           *string    `json:"title,omitempty"`
	BotStatus       string     `json:"bot_status"`
	AnalyticsStatus string     `json:"analytics_status"`
	AddedByUserID   *uuid.UUID `json:"added_by_user_id,omitempty"`
	BotAddedAt      *time.Time `json:"bot_added_at,omitempty"`
	BotRemovedAt    *time.Time `json:"bot_removed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Member roles inside a channel.
const (
	MemberRoleOwner   = "owner"
	MemberRoleManager = "manager"
)

// ChannelMember links a marketplace user to a channel with posting rights.
type ChannelMember struct {
	ChannelID        uuid.UUID `json:"channel_id"`
	UserID           uuid.UUID `json:"user_id"`
	Role             string    `json:"role"`
	CanPost          bool      `json:"can_post"`
	LastAdminCheckAt time.Time `json:"last_admin_check_at"`
}

// AdminInfo is one human administrator from the live Telegram roster.
type AdminInfo struct {
	TelegramUserID  int64  `json:"telegram_user_id"`
	Username        string `json:"username"`
	DisplayName     string `json:"display_name"`
	CanPostMessages bool   `json:"can_post_messages"`
	IsOwner         bool   `json:"is_owner"`
}

// CheckAdminResult is the reduced roster answer for a single user.
type CheckAdminResult struct {
	IsAdmin         bool `json:"is_admin"`
	CanPostMessages bool `json:"can_post_messages"`
}
