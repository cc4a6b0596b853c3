package service

import (
	"context"

	"go.uber.org/zap"

	"channel-bot-backend/internal/features/channel/models"
	"channel-bot-backend/internal/platform/telegram"
)

// runOnboarding гонит машину состояний подключения юзербота:
// none → pending → {active, failed}. Любой сбой оседает в
// analytics_status и не трогает уже зафиксированный канал.
func (s *Service) runOnboarding(username string) {
	ctx, cancel := context.WithTimeout(context.Background(), onboardingTimeout)
	defer cancel()

	if err := s.onboardUserbot(ctx, username); err != nil {
		s.log.Error("analytics onboarding failed",
			zap.String("channel_username", username), zap.Error(err))
		if serr := s.channels.SetAnalyticsStatus(ctx, username, models.AnalyticsStatusFailed); serr != nil {
			s.log.Error("failed to mark analytics failed",
				zap.String("channel_username", username), zap.Error(serr))
		}
	}
}

func (s *Service) onboardUserbot(ctx context.Context, username string) error {
	me, err := s.userbot.GetMe(ctx)
	if err != nil {
		return err
	}

	if err := s.userbot.JoinChannel(ctx, username); err != nil {
		return err
	}

	// Юзербот внутри канала: с этого момента сбои не фатальны,
	// повышение можно повторить позже вручную.
	if err := s.channels.SetAnalyticsStatus(ctx, username, models.AnalyticsStatusPending); err != nil {
		return err
	}

	channel, err := s.channels.GetByUsername(ctx, username)
	if err != nil {
		return err
	}

	if err := s.bot.PromoteChatMember(ctx, channel.TelegramChatID, me.UserID, telegram.AnalyticsViewerRights()); err != nil {
		s.log.Warn("userbot joined but promotion failed, staying pending",
			zap.String("channel_username", username),
			zap.Int64("userbot_id", me.UserID),
			zap.Error(err))
		return nil
	}

	if err := s.channels.SetAnalyticsStatus(ctx, username, models.AnalyticsStatusActive); err != nil {
		return err
	}

	s.log.Info("analytics onboarding complete",
		zap.String("channel_username", username),
		zap.Int64("userbot_id", me.UserID))
	return nil
}
