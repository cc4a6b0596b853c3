package telegram

import (
	"context"
	"time"

	"go.uber.org/zap"

	"channel-bot-backend/internal/platform/telegram"
)

// Lifecycle is the channel service surface the listener dispatches into.
type Lifecycle interface {
	HandleBotAdmitted(ctx context.Context, ev *telegram.ChatMemberUpdated) error
	HandleBotRemoved(ctx context.Context, ev *telegram.ChatMemberUpdated) error
	HandleMembershipChanged(ctx context.Context, ev *telegram.ChatMemberUpdated) error
	HandleTitleChanged(ctx context.Context, msg *telegram.Message) error
}

// pollRetryDelay — пауза перед повтором после ошибки getUpdates.
const pollRetryDelay = 3 * time.Second

// handleTimeout ограничивает обработку одного апдейта.
const handleTimeout = 5 * time.Minute

// Listener крутит длинный опрос getUpdates и раскладывает сырые апдейты
// по событиям жизненного цикла. Оффсет живёт в памяти: после рестарта
// Telegram переотдаст неподтверждённые апдейты, обработчики идемпотентны.
type Listener struct {
	bot         *telegram.Client
	service     Lifecycle
	pollTimeout int
	log         *zap.Logger
}

func NewListener(bot *telegram.Client, svc Lifecycle, pollTimeoutSec int, log *zap.Logger) *Listener {
	return &Listener{
		bot:         bot,
		service:     svc,
		pollTimeout: pollTimeoutSec,
		log:         log.Named("update_listener"),
	}
}

// Run блокируется до отмены контекста.
func (l *Listener) Run(ctx context.Context) {
	l.log.Info("update listener started", zap.Int("poll_timeout_sec", l.pollTimeout))

	var offset int64
	allowed := []string{"my_chat_member", "channel_post"}

	for {
		updates, err := l.bot.GetUpdates(ctx, offset, l.pollTimeout, allowed)
		if err != nil {
			if ctx.Err() != nil {
				l.log.Info("update listener stopped")
				return
			}
			l.log.Error("getUpdates failed", zap.Error(err))
			select {
			case <-time.After(pollRetryDelay):
			case <-ctx.Done():
				return
			}
			continue
		}

		for i := range updates {
			update := updates[i]
			offset = update.UpdateID + 1
			go l.handle(update)
		}
	}
}

func (l *Listener) handle(update telegram.Update) {
	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	var err error
	switch {
	case update.MyChatMember != nil:
		err = l.dispatchMembership(ctx, update.MyChatMember)
	case update.ChannelPost != nil && update.ChannelPost.NewChatTitle != "":
		err = l.service.HandleTitleChanged(ctx, update.ChannelPost)
	}

	if err != nil {
		l.log.Error("failed to handle update",
			zap.Int64("update_id", update.UpdateID), zap.Error(err))
	}
}

// dispatchMembership различает три исхода my_chat_member: бот стал
// администратором, бот потерял администраторство или вылетел из канала
// совсем (kick/leave из любого статуса), всё остальное.
func (l *Listener) dispatchMembership(ctx context.Context, ev *telegram.ChatMemberUpdated) error {
	wasAdmin := isAdmin(ev.OldChatMember)
	nowAdmin := isAdmin(ev.NewChatMember)
	left := ev.OldChatMember.IsParticipant() && !ev.NewChatMember.IsParticipant()

	switch {
	case nowAdmin && !wasAdmin:
		return l.service.HandleBotAdmitted(ctx, ev)
	case (wasAdmin && !nowAdmin) || left:
		return l.service.HandleBotRemoved(ctx, ev)
	default:
		return l.service.HandleMembershipChanged(ctx, ev)
	}
}

func isAdmin(m telegram.ChatMember) bool {
	return m.Status == telegram.MemberStatusAdministrator || m.Status == telegram.MemberStatusCreator
}
