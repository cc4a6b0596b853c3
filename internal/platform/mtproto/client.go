package mtproto

import (
	"context"
	"fmt"
	"sort"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"
	"go.uber.org/zap"

	"channel-bot-backend/internal/common/errors"
)

// Client is the MTProto gateway used for statistics collection. It runs on
// the userbot's session file, so admin-gated queries work for channels the
// userbot was promoted into.
//
// Each operation dials its own short-lived connection. Stats collection is
// request-scoped and infrequent, so holding a persistent MTProto session
// open is not worth the reconnect bookkeeping.
type Client struct {
	apiID       int
	apiHash     string
	sessionFile string
	log         *zap.Logger
}

func NewClient(apiID int, apiHash, sessionFile string, log *zap.Logger) *Client {
	return &Client{
		apiID:       apiID,
		apiHash:     apiHash,
		sessionFile: sessionFile,
		log:         log,
	}
}

// Peer identifies a resolved channel.
type Peer struct {
	ID         int64
	AccessHash int64
}

// ChannelInfo is the lightweight channel description.
type ChannelInfo struct {
	Peer        Peer
	Title       string
	Username    string
	Description string
	Subscribers int
	Verified    bool
}

// FullChannelInfo carries the precise counters from the full-channel query.
type FullChannelInfo struct {
	Subscribers int
	AdminsCount int
	OnlineCount int
	HasOnline   bool
}

// PostViews is one entry of the recent-interaction sample from native stats.
type PostViews struct {
	MsgID int
	Views int
}

// BroadcastStats is the native channel statistics payload; values are the
// platform's own reporting-window aggregates.
type BroadcastStats struct {
	FollowersCurrent   float64
	FollowersPrevious  float64
	ViewsPerPost       float64
	SharesPerPost      float64
	NotificationsPart  float64
	NotificationsTotal float64
	RecentInteractions []PostViews
}

// Post is a single channel post with its view counter.
type Post struct {
	ID    int
	Views int
}

func (c *Client) run(ctx context.Context, f func(ctx context.Context, api *tg.Client) error) error {
	client := telegram.NewClient(c.apiID, c.apiHash, telegram.Options{
		SessionStorage: &session.FileStorage{Path: c.sessionFile},
	})
	return client.Run(ctx, func(ctx context.Context) error {
		status, err := client.Auth().Status(ctx)
		if err != nil {
			return err
		}
		if !status.Authorized {
			return fmt.Errorf("mtproto session is not authorized")
		}
		return f(ctx, client.API())
	})
}

// ResolveChannel resolves a public username into a broadcast channel with its
// lightweight descriptive fields.
func (c *Client) ResolveChannel(ctx context.Context, username string) (*ChannelInfo, error) {
	var info *ChannelInfo
	err := c.run(ctx, func(ctx context.Context, api *tg.Client) error {
		resolved, err := api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{Username: username})
		if err != nil {
			return err
		}

		ch, err := findBroadcastChannel(resolved.Chats)
		if err != nil {
			return err
		}

		info = &ChannelInfo{
			Peer:        Peer{ID: ch.ID, AccessHash: ch.AccessHash},
			Title:       ch.Title,
			Username:    ch.Username,
			Verified:    ch.Verified,
			Subscribers: ch.ParticipantsCount,
		}

		// About и точное число подписчиков приходят только в полной информации
		full, err := api.ChannelsGetFullChannel(ctx, &tg.InputChannel{ChannelID: ch.ID, AccessHash: ch.AccessHash})
		if err != nil {
			// Базовых полей из резолва достаточно
			c.log.Warn("full channel info unavailable", zap.String("username", username), zap.Error(err))
			return nil
		}
		if fc, ok := full.FullChat.(*tg.ChannelFull); ok {
			info.Description = fc.About
			info.Subscribers = fc.ParticipantsCount
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeMTProtoAPI, "resolve channel @%s", username)
	}
	return info, nil
}

// FullChannel returns the precise subscriber, admin and online counters.
func (c *Client) FullChannel(ctx context.Context, peer Peer) (*FullChannelInfo, error) {
	var info *FullChannelInfo
	err := c.run(ctx, func(ctx context.Context, api *tg.Client) error {
		full, err := api.ChannelsGetFullChannel(ctx, &tg.InputChannel{ChannelID: peer.ID, AccessHash: peer.AccessHash})
		if err != nil {
			return err
		}
		fc, ok := full.FullChat.(*tg.ChannelFull)
		if !ok {
			return fmt.Errorf("unexpected full chat type %T", full.FullChat)
		}

		info = &FullChannelInfo{
			Subscribers: fc.ParticipantsCount,
			AdminsCount: fc.AdminsCount,
		}
		if online, ok := fc.GetOnlineCount(); ok {
			info.OnlineCount = online
			info.HasOnline = true
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMTProtoAPI, "full channel query")
	}
	return info, nil
}

// GetBroadcastStats requests native channel analytics. The platform rejects
// the call unless the session's account is an admin and the channel is above
// the platform's minimum-subscriber threshold.
func (c *Client) GetBroadcastStats(ctx context.Context, peer Peer) (*BroadcastStats, error) {
	var stats *BroadcastStats
	err := c.run(ctx, func(ctx context.Context, api *tg.Client) error {
		raw, err := api.StatsGetBroadcastStats(ctx, &tg.StatsGetBroadcastStatsRequest{
			Channel: &tg.InputChannel{ChannelID: peer.ID, AccessHash: peer.AccessHash},
		})
		if err != nil {
			return err
		}

		stats = &BroadcastStats{
			FollowersCurrent:   raw.Followers.Current,
			FollowersPrevious:  raw.Followers.Previous,
			ViewsPerPost:       raw.ViewsPerPost.Current,
			SharesPerPost:      raw.SharesPerPost.Current,
			NotificationsPart:  raw.EnabledNotifications.Part,
			NotificationsTotal: raw.EnabledNotifications.Total,
		}
		for _, counters := range raw.RecentPostsInteractions {
			if m, ok := counters.(*tg.PostInteractionCountersMessage); ok {
				stats.RecentInteractions = append(stats.RecentInteractions, PostViews{
					MsgID: m.MsgID,
					Views: m.Views,
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMTProtoAPI, "broadcast stats query")
	}
	return stats, nil
}

// RecentPosts returns up to limit most recent channel posts, newest first.
func (c *Client) RecentPosts(ctx context.Context, peer Peer, limit int) ([]Post, error) {
	var posts []Post
	err := c.run(ctx, func(ctx context.Context, api *tg.Client) error {
		history, err := api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
			Peer: &tg.InputPeerChannel{
				ChannelID:  peer.ID,
				AccessHash: peer.AccessHash,
			},
			Limit: limit,
		})
		if err != nil {
			return err
		}

		messages, ok := history.(*tg.MessagesChannelMessages)
		if !ok {
			return fmt.Errorf("unexpected messages type %T", history)
		}

		for _, msg := range messages.Messages {
			m, ok := msg.(*tg.Message)
			if !ok {
				continue
			}
			views, ok := m.GetViews()
			if !ok {
				continue
			}
			posts = append(posts, Post{ID: m.ID, Views: views})
		}

		sort.Slice(posts, func(i, j int) bool {
			return posts[i].ID > posts[j].ID
		})
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMTProtoAPI, "recent posts query")
	}
	return posts, nil
}

func findBroadcastChannel(chats []tg.ChatClass) (*tg.Channel, error) {
	for _, peer := range chats {
		ch, ok := peer.(*tg.Channel)
		if !ok {
			continue
		}
		if ch.Megagroup {
			continue
		}
		if ch.Broadcast {
			return ch, nil
		}
	}
	return nil, fmt.Errorf("broadcast channel not found")
}
