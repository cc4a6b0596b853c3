package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/xssnick/tonutils-go/tlb"
	"go.uber.org/zap"

	auditmodels "channel-bot-backend/internal/features/audit/models"
	auditrepo "channel-bot-backend/internal/features/audit/repository"
	"channel-bot-backend/internal/events"
	channelmodels "channel-bot-backend/internal/features/channel/models"
	"channel-bot-backend/internal/features/deal/models"
	dealrepo "channel-bot-backend/internal/features/deal/repository"
)

// CascadeService сворачивает активные сделки канала, когда бот
// теряет к нему доступ: отмена, возврат средств и аудит.
type CascadeService struct {
	deals     dealrepo.DealRepository
	users     UserDirectory
	audit     auditrepo.AuditRepository
	notifier  Notifier
	publisher events.Publisher
	log       *zap.Logger
}

func NewCascadeService(
	deals dealrepo.DealRepository,
	users UserDirectory,
	audit auditrepo.AuditRepository,
	notifier Notifier,
	publisher events.Publisher,
	log *zap.Logger,
) *CascadeService {
	return &CascadeService{
		deals:     deals,
		users:     users,
		audit:     audit,
		notifier:  notifier,
		publisher: publisher,
		log:       log.Named("deal_cascade"),
	}
}

// CascadeResult — сводка по одному прогону каскада.
type CascadeResult struct {
	Cancelled int
	Refunded  int
	Skipped   int
}

// CancelChannelDeals отменяет все нетерминальные сделки канала.
// Сделки обрабатываются независимо: сбой одной не останавливает
// остальные. Отсутствие активных сделок — не ошибка.
func (s *CascadeService) CancelChannelDeals(ctx context.Context, channel *channelmodels.Channel) (CascadeResult, error) {
	var res CascadeResult

	deals, err := s.deals.ListActiveByChannel(ctx, channel.ID)
	if err != nil {
		return res, err
	}
	if len(deals) == 0 {
		return res, nil
	}

	s.log.Info("cancelling channel deals after bot removal",
		zap.String("channel_id", channel.ID.String()),
		zap.String("channel_username", channel.Username),
		zap.Int("deals", len(deals)))

	for i := range deals {
		deal := deals[i]
		if err := s.cancelDeal(ctx, channel, deal, &res); err != nil {
			s.log.Error("failed to cancel deal",
				zap.String("deal_id", deal.ID.String()),
				zap.String("status", deal.Status),
				zap.Error(err))
		}
	}

	return res, nil
}

// cancelDeal переводит одну сделку в cancelled (и в refunded, если
// по ней уже были заморожены средства) с записью в аудит. Счётчики
// результата отражают только реально применённые переходы.
func (s *CascadeService) cancelDeal(ctx context.Context, channel *channelmodels.Channel, deal models.Deal, res *CascadeResult) error {
	applied, err := s.deals.CancelSystem(ctx, deal.ID)
	if err != nil {
		res.Skipped++
		return err
	}
	if !applied {
		// Сделка успела стать терминальной между выборкой и
		// отменой. Ничего не делаем и не пишем в аудит.
		s.log.Info("deal already terminal, skipping",
			zap.String("deal_id", deal.ID.String()))
		res.Skipped++
		return nil
	}
	res.Cancelled++

	s.logAudit(ctx, deal.ID, auditmodels.ActionDealCancelledBotRemoved, map[string]any{
		"channel_id":      channel.ID.String(),
		"previous_status": deal.Status,
	})
	s.publishStatusChange(ctx, deal, models.StatusCancelled)

	if models.IsFunded(deal.Status) {
		refunded, err := s.refundDeal(ctx, channel, deal)
		if err != nil {
			// Отмена уже применилась: сделку не считаем пропущенной,
			// возврат доделает ручная сверка по аудиту.
			s.log.Error("failed to refund cancelled deal",
				zap.String("deal_id", deal.ID.String()),
				zap.Error(err))
		} else if refunded {
			res.Refunded++
		}
	}

	s.notifyAdvertiser(ctx, channel, deal)
	return nil
}

func (s *CascadeService) refundDeal(ctx context.Context, channel *channelmodels.Channel, deal models.Deal) (bool, error) {
	applied, err := s.deals.RefundSystem(ctx, deal.ID)
	if err != nil {
		return false, err
	}
	if !applied {
		return false, nil
	}

	s.logAudit(ctx, deal.ID, auditmodels.ActionDealRefundedBotRemoved, map[string]any{
		"channel_id":     channel.ID.String(),
		"price_nano_ton": deal.PriceNanoTON,
	})
	s.publishStatusChange(ctx, deal, models.StatusRefunded)
	return true, nil
}

func (s *CascadeService) logAudit(ctx context.Context, dealID uuid.UUID, action string, details map[string]any) {
	payload, _ := json.Marshal(details)
	err := s.audit.Log(ctx, auditmodels.Entry{
		ActorType:  auditmodels.ActorSystem,
		Action:     action,
		EntityType: "deal",
		EntityID:   dealID,
		Details:    string(payload),
	})
	if err != nil {
		s.log.Error("failed to write audit entry",
			zap.String("deal_id", dealID.String()),
			zap.String("action", action),
			zap.Error(err))
	}
}

// notifyAdvertiser шлёт рекламодателю личное сообщение об отмене.
// Любой сбой здесь не влияет на результат каскада.
func (s *CascadeService) notifyAdvertiser(ctx context.Context, channel *channelmodels.Channel, deal models.Deal) {
	advertiser, err := s.users.GetByID(ctx, deal.AdvertiserUserID)
	if err != nil {
		s.log.Warn("advertiser account unavailable",
			zap.String("deal_id", deal.ID.String()), zap.Error(err))
		return
	}

	text := fmt.Sprintf(
		"Your deal with channel @%s has been cancelled: the bot was removed from the channel.",
		channel.Username)
	if models.IsFunded(deal.Status) {
		price := tlb.FromNanoTONU(uint64(deal.PriceNanoTON))
		text += fmt.Sprintf(" %s TON will be refunded to your balance.", price.String())
	}

	if _, err := s.notifier.SendMessage(ctx, advertiser.TelegramUserID, text); err != nil {
		s.log.Warn("failed to notify advertiser",
			zap.String("deal_id", deal.ID.String()),
			zap.Int64("telegram_user_id", advertiser.TelegramUserID),
			zap.Error(err))
	}
}

func (s *CascadeService) publishStatusChange(ctx context.Context, deal models.Deal, status string) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.Publish(ctx, events.StreamDeals, events.Event{
		Type: events.EventDealStatusChanged,
		Payload: map[string]any{
			"deal_id":         deal.ID.String(),
			"previous_status": deal.Status,
			"status":          status,
			"reason":          "bot_removed",
		},
	})
	if err != nil {
		s.log.Warn("failed to publish deal event",
			zap.String("deal_id", deal.ID.String()), zap.Error(err))
	}
}
