package service

import (
	"context"

	"go.uber.org/zap"

	"channel-bot-backend/internal/common/errors"
	"channel-bot-backend/internal/features/channel/models"
	"channel-bot-backend/internal/features/channel/repository"
	"channel-bot-backend/internal/platform/telegram"
)

// resolveChatID находит chat_id канала: сперва в нашей базе, а для ещё не
// зарегистрированных каналов — через getChat по публичному username.
func (s *Service) resolveChatID(ctx context.Context, username string) (int64, error) {
	channel, err := s.channels.GetByUsername(ctx, username)
	if err == nil {
		return channel.TelegramChatID, nil
	}
	if appErr, ok := errors.AsAppError(err); !ok || appErr.Code != errors.ErrCodeChannelNotFound {
		return 0, err
	}

	chat, err := s.bot.GetChat(ctx, "@"+username)
	if err != nil {
		return 0, err
	}
	if !chat.IsBroadcastChannel() {
		return 0, errors.New(errors.ErrCodeChannelNotFound, "chat is not a broadcast channel")
	}
	return chat.ID, nil
}

// ListAdmins возвращает живой список администраторов-людей канала.
// Ботов в списке нет: они не участники сделок.
func (s *Service) ListAdmins(ctx context.Context, username string) ([]models.AdminInfo, error) {
	username = repository.NormalizeUsername(username)

	chatID, err := s.resolveChatID(ctx, username)
	if err != nil {
		return nil, err
	}

	members, err := s.bot.GetChatAdministrators(ctx, chatID)
	if err != nil {
		return nil, err
	}

	admins := make([]models.AdminInfo, 0, len(members))
	for _, m := range members {
		if m.User.IsBot {
			continue
		}
		isOwner := m.Status == telegram.MemberStatusCreator
		canPost := m.CanPostMessages
		// Владельцу Bot API не отдаёт отдельные права: у него есть всё.
		if isOwner {
			canPost = true
		}
		admins = append(admins, models.AdminInfo{
			TelegramUserID:  m.User.ID,
			Username:        m.User.Username,
			DisplayName:     m.User.FullName(),
			CanPostMessages: canPost,
			IsOwner:         isOwner,
		})
	}

	return admins, nil
}

// CheckAdmin проверяет, административен ли пользователь в канале.
// Сбой опроса Telegram трактуем консервативно: не админ, без прав —
// лучше отказать в действии, чем разрешить по устаревшим данным.
func (s *Service) CheckAdmin(ctx context.Context, username string, telegramUserID int64) (models.CheckAdminResult, error) {
	admins, err := s.ListAdmins(ctx, username)
	if err != nil {
		s.log.Warn("admin roster unavailable, denying",
			zap.String("channel_username", username),
			zap.Int64("telegram_user_id", telegramUserID),
			zap.Error(err))
		return models.CheckAdminResult{}, nil
	}

	for _, a := range admins {
		if a.TelegramUserID == telegramUserID {
			return models.CheckAdminResult{IsAdmin: true, CanPostMessages: a.CanPostMessages}, nil
		}
	}
	return models.CheckAdminResult{}, nil
}
