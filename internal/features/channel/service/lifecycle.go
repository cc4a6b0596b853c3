package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"channel-bot-backend/internal/events"
	"channel-bot-backend/internal/features/channel/models"
	"channel-bot-backend/internal/features/channel/repository"
	userrepo "channel-bot-backend/internal/features/user/repository"
	"channel-bot-backend/internal/platform/telegram"
)

// onboardingTimeout ограничивает фоновую процедуру подключения
// юзербота к одному каналу.
const onboardingTimeout = 2 * time.Minute

// Service реализует жизненный цикл канала: добавление и удаление бота,
// подключение юзербота, справочник администраторов.
type Service struct {
	channels  repository.ChannelRepository
	users     userrepo.UserRepository
	bot       BotAPI
	userbot   UserbotAPI
	cascade   DealCascade
	publisher events.Publisher
	log       *zap.Logger
}

func NewService(
	channels repository.ChannelRepository,
	users userrepo.UserRepository,
	bot BotAPI,
	ub UserbotAPI,
	cascade DealCascade,
	publisher events.Publisher,
	log *zap.Logger,
) *Service {
	return &Service{
		channels:  channels,
		users:     users,
		bot:       bot,
		userbot:   ub,
		cascade:   cascade,
		publisher: publisher,
		log:       log.Named("channel_lifecycle"),
	}
}

// HandleBotAdmitted обрабатывает назначение бота администратором канала.
// Приватные каналы и не-каналы молча игнорируются: без публичного
// username канал нельзя выставить на маркетплейс.
func (s *Service) HandleBotAdmitted(ctx context.Context, ev *telegram.ChatMemberUpdated) error {
	if !ev.Chat.IsBroadcastChannel() {
		s.log.Info("bot added to non-channel chat, ignoring",
			zap.Int64("chat_id", ev.Chat.ID),
			zap.String("chat_type", ev.Chat.Type))
		return nil
	}
	if ev.Chat.Username == "" {
		s.log.Info("bot added to private channel, ignoring",
			zap.Int64("chat_id", ev.Chat.ID),
			zap.String("title", ev.Chat.Title))
		return nil
	}

	username := repository.NormalizeUsername(ev.Chat.Username)

	userID, err := s.users.UpsertByTelegramID(ctx, ev.From.ID,
		optional(ev.From.Username), optional(ev.From.FirstName), optional(ev.From.LastName))
	if err != nil {
		return err
	}

	var title *string
	if ev.Chat.Title != "" {
		t := ev.Chat.Title
		title = &t
	}

	if err := s.channels.Upsert(ctx, repository.UpsertParams{
		TelegramChatID: ev.Chat.ID,
		Username:       username,
		Title:          title,
		AddedByUserID:  userID,
		BotStatus:      models.BotStatusActive,
	}); err != nil {
		return err
	}

	if err := s.channels.AddMember(ctx, username, userID, models.MemberRoleOwner, true); err != nil {
		// Канал уже зарегистрирован, членство добьём на следующем
		// событии или проверке прав.
		s.log.Error("failed to link channel owner",
			zap.String("channel_username", username), zap.Error(err))
	}

	s.log.Info("bot admitted to channel",
		zap.String("channel_username", username),
		zap.Int64("chat_id", ev.Chat.ID),
		zap.Int64("added_by", ev.From.ID))

	// Подключение юзербота требует права приглашать: без него
	// сгенерированная ссылка-приглашение не сработает.
	if ev.NewChatMember.CanInviteUsers {
		go s.runOnboarding(username)
	} else {
		s.log.Warn("bot lacks invite rights, analytics onboarding not started",
			zap.String("channel_username", username))
	}

	return nil
}

// HandleBotRemoved обрабатывает потерю доступа к каналу: статусы,
// каскад по сделкам. Повторные события удаления безопасны.
func (s *Service) HandleBotRemoved(ctx context.Context, ev *telegram.ChatMemberUpdated) error {
	if !ev.Chat.IsBroadcastChannel() || ev.Chat.Username == "" {
		return nil
	}

	username := repository.NormalizeUsername(ev.Chat.Username)

	// Канал могли переименовать, пока бот был внутри; событие удаления
	// несёт актуальные данные.
	if err := s.syncChatInfo(ctx, ev.Chat); err != nil {
		s.log.Warn("failed to resync channel info on removal",
			zap.String("channel_username", username), zap.Error(err))
	}

	channel, err := s.channels.GetByUsername(ctx, username)
	if err != nil {
		s.log.Warn("removal event for unknown channel, ignoring",
			zap.String("channel_username", username), zap.Error(err))
		return nil
	}

	if err := s.channels.SetBotRemoved(ctx, username); err != nil {
		return err
	}

	if err := s.channels.SetAnalyticsStatus(ctx, username, models.AnalyticsStatusRemoved); err != nil {
		s.log.Error("failed to mark analytics removed",
			zap.String("channel_username", username), zap.Error(err))
	}

	res, err := s.cascade.CancelChannelDeals(ctx, channel)
	if err != nil {
		return err
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, events.StreamChannels, events.Event{
			Type: events.EventChannelRemoved,
			Payload: map[string]any{
				"channel_id":       channel.ID.String(),
				"channel_username": username,
				"deals_cancelled":  res.Cancelled,
			},
		}); err != nil {
			s.log.Warn("failed to publish channel removal event",
				zap.String("channel_username", username), zap.Error(err))
		}
	}

	s.log.Info("bot removed from channel",
		zap.String("channel_username", username),
		zap.Int64("chat_id", ev.Chat.ID),
		zap.Int("deals_cancelled", res.Cancelled),
		zap.Int("deals_refunded", res.Refunded),
		zap.Int("deals_skipped", res.Skipped))

	return nil
}

// HandleMembershipChanged покрывает остальные переходы my_chat_member:
// ничего не меняем по существу, только освежаем username/title.
func (s *Service) HandleMembershipChanged(ctx context.Context, ev *telegram.ChatMemberUpdated) error {
	if !ev.Chat.IsBroadcastChannel() {
		return nil
	}
	return s.syncChatInfo(ctx, ev.Chat)
}

// HandleTitleChanged обрабатывает служебный пост о переименовании канала.
func (s *Service) HandleTitleChanged(ctx context.Context, msg *telegram.Message) error {
	if msg.NewChatTitle == "" {
		return nil
	}
	title := msg.NewChatTitle
	return s.channels.SyncInfo(ctx, msg.Chat.ID, optional(msg.Chat.Username), &title)
}

func (s *Service) syncChatInfo(ctx context.Context, chat telegram.Chat) error {
	var username *string
	if chat.Username != "" {
		u := repository.NormalizeUsername(chat.Username)
		username = &u
	}
	return s.channels.SyncInfo(ctx, chat.ID, username, optional(chat.Title))
}

// optional превращает пустую строку в nil для merge-on-non-null апсертов.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
