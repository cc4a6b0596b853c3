package service

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"channel-bot-backend/internal/features/stats/models"
	"channel-bot-backend/internal/platform/mtproto"
)

// fallbackSampleSize — сколько последних постов берём для расчёта
// средних просмотров, когда нативная статистика недоступна.
const fallbackSampleSize = 20

// StatsAPI is the MTProto surface the collector reads from.
type StatsAPI interface {
	ResolveChannel(ctx context.Context, username string) (*mtproto.ChannelInfo, error)
	FullChannel(ctx context.Context, peer mtproto.Peer) (*mtproto.FullChannelInfo, error)
	GetBroadcastStats(ctx context.Context, peer mtproto.Peer) (*mtproto.BroadcastStats, error)
	RecentPosts(ctx context.Context, peer mtproto.Peer, limit int) ([]mtproto.Post, error)
}

// Collector собирает статистику канала ярусами: каждый следующий ярус
// уточняет снимок, но его сбой не отменяет уже собранное. Фатален
// только базовый ярус — без него канала просто нет.
type Collector struct {
	api StatsAPI
	log *zap.Logger
}

func NewCollector(api StatsAPI, log *zap.Logger) *Collector {
	return &Collector{api: api, log: log.Named("stats_collector")}
}

// Collect возвращает лучший доступный снимок статистики по username.
func (c *Collector) Collect(ctx context.Context, username string) (*models.Snapshot, error) {
	// Ярус 0: канал должен резолвиться, иначе снимка нет.
	info, err := c.api.ResolveChannel(ctx, username)
	if err != nil {
		return nil, err
	}

	snap := &models.Snapshot{
		Verified:  info.Verified,
		Source:    models.SourceFallback,
		FetchedAt: time.Now().UTC(),
	}
	setString(&snap.Title, info.Title)
	setString(&snap.Username, info.Username)
	setString(&snap.Description, info.Description)
	if info.Subscribers > 0 {
		snap.Subscribers = intPtr(info.Subscribers)
	}

	// Ярус 1: точные счётчики полного канала.
	if full, err := c.api.FullChannel(ctx, info.Peer); err != nil {
		c.log.Warn("full channel counters unavailable",
			zap.String("channel_username", username), zap.Error(err))
	} else {
		snap.Subscribers = intPtr(full.Subscribers)
		snap.AdminsCount = intPtr(full.AdminsCount)
		if full.HasOnline {
			snap.MembersOnline = intPtr(full.OnlineCount)
		}
	}

	// Ярус 2: нативная статистика вещания. Доступна только крупным
	// каналам, поэтому отказ здесь — норма, а не ошибка.
	if stats, err := c.api.GetBroadcastStats(ctx, info.Peer); err != nil {
		c.log.Info("native broadcast stats unavailable, falling back",
			zap.String("channel_username", username), zap.Error(err))
	} else {
		c.applyBroadcastStats(snap, stats)
		snap.Source = models.SourceNative
	}

	// Ярус 3: считаем по истории постов только когда нативной
	// статистики не было вовсе.
	if snap.Source == models.SourceFallback {
		if err := c.applyHistory(ctx, info.Peer, snap); err != nil {
			c.log.Warn("history fallback unavailable",
				zap.String("channel_username", username), zap.Error(err))
		}
	}

	c.deriveER(snap)
	return snap, nil
}

func (c *Collector) applyBroadcastStats(snap *models.Snapshot, stats *mtproto.BroadcastStats) {
	growth := int(stats.FollowersCurrent) - int(stats.FollowersPrevious)
	snap.Growth = &growth

	vpp := round1(stats.ViewsPerPost)
	snap.ViewsPerPost = &vpp
	spp := round1(stats.SharesPerPost)
	snap.SharesPerPost = &spp
	snap.AvgViews = intPtr(int(stats.ViewsPerPost))

	if stats.NotificationsTotal > 0 {
		pct := round2(stats.NotificationsPart / stats.NotificationsTotal * 100)
		snap.EnabledNotificationsPercent = &pct
	}

	// Сэмпл взаимодействий точнее усреднённого счётчика: это реальные
	// просмотры последних постов, а заодно и верхняя граница их id.
	if len(stats.RecentInteractions) > 0 {
		total, maxID := 0, 0
		for _, p := range stats.RecentInteractions {
			total += p.Views
			if p.MsgID > maxID {
				maxID = p.MsgID
			}
		}
		snap.AvgViews = intPtr(total / len(stats.RecentInteractions))
		snap.PostsCount = intPtr(maxID)
	}
}

func (c *Collector) applyHistory(ctx context.Context, peer mtproto.Peer, snap *models.Snapshot) error {
	posts, err := c.api.RecentPosts(ctx, peer, fallbackSampleSize)
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		return nil
	}

	// Посты отсортированы по убыванию id: первый — самый свежий,
	// его id и есть счётчик сообщений канала.
	if snap.PostsCount == nil {
		snap.PostsCount = intPtr(posts[0].ID)
	}

	if snap.AvgViews == nil {
		total := 0
		for _, p := range posts {
			total += p.Views
		}
		snap.AvgViews = intPtr(total / len(posts))
	}
	return nil
}

// deriveER считает engagement rate из уже собранных полей.
func (c *Collector) deriveER(snap *models.Snapshot) {
	if snap.AvgViews == nil || snap.Subscribers == nil || *snap.Subscribers <= 0 {
		return
	}
	er := round2(float64(*snap.AvgViews) / float64(*snap.Subscribers) * 100)
	snap.ERPercent = &er
}

func setString(dst **string, v string) {
	if v != "" {
		*dst = &v
	}
}

func intPtr(v int) *int { return &v }

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }
