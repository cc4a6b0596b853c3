package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	channelmodels "channel-bot-backend/internal/features/channel/models"
	channelrepo "channel-bot-backend/internal/features/channel/repository"
	dealmodels "channel-bot-backend/internal/features/deal/models"
	"channel-bot-backend/internal/platform/telegram"
)

type fakeDeals struct {
	mu sync.Mutex

	postable bool
	posted   []uuid.UUID
	held     []uuid.UUID
	post     *dealmodels.DealPost
}

func (f *fakeDeals) ListActiveByChannel(ctx context.Context, channelID uuid.UUID) ([]dealmodels.Deal, error) {
	return nil, nil
}

func (f *fakeDeals) CancelSystem(ctx context.Context, dealID uuid.UUID) (bool, error) {
	return false, nil
}

func (f *fakeDeals) RefundSystem(ctx context.Context, dealID uuid.UUID) (bool, error) {
	return false, nil
}

func (f *fakeDeals) MarkPosted(ctx context.Context, dealID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.postable {
		return false, nil
	}
	f.posted = append(f.posted, dealID)
	return true, nil
}

func (f *fakeDeals) MarkHoldVerification(ctx context.Context, dealID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.held = append(f.held, dealID)
	return true, nil
}

func (f *fakeDeals) UpsertPost(ctx context.Context, post *dealmodels.DealPost) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.post = post
	return nil
}

type fakeChannels struct {
	channel *channelmodels.Channel
	err     error
}

func (f *fakeChannels) Upsert(ctx context.Context, p channelrepo.UpsertParams) error { return nil }

func (f *fakeChannels) GetByUsername(ctx context.Context, username string) (*channelmodels.Channel, error) {
	return f.channel, f.err
}

func (f *fakeChannels) GetByTelegramChatID(ctx context.Context, telegramChatID int64) (*channelmodels.Channel, error) {
	return f.channel, f.err
}

func (f *fakeChannels) SetBotRemoved(ctx context.Context, username string) error { return nil }

func (f *fakeChannels) SetAnalyticsStatus(ctx context.Context, username, status string) error {
	return nil
}

func (f *fakeChannels) SyncInfo(ctx context.Context, telegramChatID int64, username, title *string) error {
	return nil
}

func (f *fakeChannels) AddMember(ctx context.Context, channelUsername string, userID uuid.UUID, role string, canPost bool) error {
	return nil
}

type fakeSender struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeSender) SendMessage(ctx context.Context, chatID int64, text string) (*telegram.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return &telegram.Message{MessageID: 4242}, nil
}

func testChannel() *channelmodels.Channel {
	return &channelmodels.Channel{
		ID:             uuid.New(),
		TelegramChatID: -100123,
		Username:       "technews",
	}
}

func TestSchedulePublishesImmediately(t *testing.T) {
	deals := &fakeDeals{postable: true}
	sender := &fakeSender{}
	sched := NewScheduler(sender, deals, &fakeChannels{channel: testChannel()}, zap.NewNop())
	dealID := uuid.New()

	err := sched.Schedule(context.Background(), dealID, "technews", "ad copy", time.Now().Add(-time.Second))
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		deals.mu.Lock()
		defer deals.mu.Unlock()
		return deals.post != nil
	}, 2*time.Second, 10*time.Millisecond)

	deals.mu.Lock()
	defer deals.mu.Unlock()
	assert.Equal(t, []uuid.UUID{dealID}, deals.posted)
	assert.Equal(t, []uuid.UUID{dealID}, deals.held)
	assert.Equal(t, "https://t.me/technews/4242", deals.post.PostURL)

	sum := sha256.Sum256([]byte("ad copy"))
	assert.Equal(t, hex.EncodeToString(sum[:]), deals.post.ContentHash)
}

func TestScheduleSkipsUnpostableDeal(t *testing.T) {
	deals := &fakeDeals{postable: false}
	sender := &fakeSender{}
	sched := NewScheduler(sender, deals, &fakeChannels{channel: testChannel()}, zap.NewNop())

	err := sched.Schedule(context.Background(), uuid.New(), "technews", "ad copy", time.Now())
	require.NoError(t, err)

	// Guarded-переход не прошёл: публикации нет вовсе.
	assert.Never(t, func() bool {
		sender.mu.Lock()
		defer sender.mu.Unlock()
		return len(sender.sent) > 0
	}, 300*time.Millisecond, 20*time.Millisecond)
}

func TestScheduleUnknownChannel(t *testing.T) {
	sched := NewScheduler(&fakeSender{}, &fakeDeals{}, &fakeChannels{err: errors.New("not found")}, zap.NewNop())

	err := sched.Schedule(context.Background(), uuid.New(), "ghost", "ad copy", time.Now())
	assert.Error(t, err)
}

func TestNotifyRejectsEmptyText(t *testing.T) {
	sched := NewScheduler(&fakeSender{}, &fakeDeals{}, &fakeChannels{channel: testChannel()}, zap.NewNop())

	err := sched.Notify(context.Background(), 42, "")
	assert.Error(t, err)
}
