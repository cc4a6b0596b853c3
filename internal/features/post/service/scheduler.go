package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"channel-bot-backend/internal/common/errors"
	channelrepo "channel-bot-backend/internal/features/channel/repository"
	dealmodels "channel-bot-backend/internal/features/deal/models"
	dealrepo "channel-bot-backend/internal/features/deal/repository"
	"channel-bot-backend/internal/platform/telegram"
)

// postTimeout ограничивает публикацию одного отложенного поста.
const postTimeout = time.Minute

// Sender is the Bot API slice used for publishing and notifications.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) (*telegram.Message, error)
}

// Scheduler публикует рекламные посты по сделкам. Планирование
// одноразовое и живёт в памяти процесса: при рестарте невышедшие
// посты перевыставляет вышестоящий бэкенд.
type Scheduler struct {
	bot      Sender
	deals    dealrepo.DealRepository
	channels channelrepo.ChannelRepository
	log      *zap.Logger
}

func NewScheduler(bot Sender, deals dealrepo.DealRepository, channels channelrepo.ChannelRepository, log *zap.Logger) *Scheduler {
	return &Scheduler{bot: bot, deals: deals, channels: channels, log: log.Named("post_scheduler")}
}

// Schedule ставит пост на публикацию в канал в момент sendAt.
// Прошедшее время означает немедленную публикацию.
func (s *Scheduler) Schedule(ctx context.Context, dealID uuid.UUID, channelUsername, content string, sendAt time.Time) error {
	channel, err := s.channels.GetByUsername(ctx, channelUsername)
	if err != nil {
		return err
	}

	delay := time.Until(sendAt)
	if delay < 0 {
		delay = 0
	}

	s.log.Info("post scheduled",
		zap.String("deal_id", dealID.String()),
		zap.String("channel_username", channel.Username),
		zap.Duration("delay", delay))

	time.AfterFunc(delay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), postTimeout)
		defer cancel()
		if err := s.publish(ctx, dealID, channel.TelegramChatID, channel.Username, content); err != nil {
			s.log.Error("failed to publish deal post",
				zap.String("deal_id", dealID.String()), zap.Error(err))
		}
	})
	return nil
}

func (s *Scheduler) publish(ctx context.Context, dealID uuid.UUID, chatID int64, username, content string) error {
	// Guarded-переход забирает сделку: если её успели отменить или
	// пост уже вышел, публикации не будет.
	applied, err := s.deals.MarkPosted(ctx, dealID)
	if err != nil {
		return err
	}
	if !applied {
		s.log.Info("deal no longer postable, skipping",
			zap.String("deal_id", dealID.String()))
		return nil
	}

	msg, err := s.bot.SendMessage(ctx, chatID, content)
	if err != nil {
		return err
	}

	hash := sha256.Sum256([]byte(content))
	post := &dealmodels.DealPost{
		DealID:            dealID,
		TelegramMessageID: msg.MessageID,
		TelegramChatID:    chatID,
		PostURL:           fmt.Sprintf("https://t.me/%s/%d", username, msg.MessageID),
		ContentHash:       hex.EncodeToString(hash[:]),
		PostedAt:          time.Now().UTC(),
	}
	if err := s.deals.UpsertPost(ctx, post); err != nil {
		return err
	}

	if _, err := s.deals.MarkHoldVerification(ctx, dealID); err != nil {
		return err
	}

	s.log.Info("deal post published",
		zap.String("deal_id", dealID.String()),
		zap.String("post_url", post.PostURL))
	return nil
}

// Notify шлёт произвольное личное сообщение пользователю Telegram.
func (s *Scheduler) Notify(ctx context.Context, telegramUserID int64, text string) error {
	if text == "" {
		return errors.New(errors.ErrCodeValidation, "notification text is empty")
	}
	_, err := s.bot.SendMessage(ctx, telegramUserID, text)
	return err
}
