package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	auditmodels "channel-bot-backend/internal/features/audit/models"
	"channel-bot-backend/internal/events"
	channelmodels "channel-bot-backend/internal/features/channel/models"
	"channel-bot-backend/internal/features/deal/models"
	usermodels "channel-bot-backend/internal/features/user/models"
	"channel-bot-backend/internal/platform/telegram"
)

type fakeDealRepo struct {
	deals      []models.Deal
	listErr    error
	cancelErr  map[uuid.UUID]error
	notApplied map[uuid.UUID]bool
	refundErr  error

	cancelled []uuid.UUID
	refunded  []uuid.UUID
}

func (f *fakeDealRepo) ListActiveByChannel(ctx context.Context, channelID uuid.UUID) ([]models.Deal, error) {
	return f.deals, f.listErr
}

func (f *fakeDealRepo) CancelSystem(ctx context.Context, dealID uuid.UUID) (bool, error) {
	if err := f.cancelErr[dealID]; err != nil {
		return false, err
	}
	if f.notApplied[dealID] {
		return false, nil
	}
	f.cancelled = append(f.cancelled, dealID)
	return true, nil
}

func (f *fakeDealRepo) RefundSystem(ctx context.Context, dealID uuid.UUID) (bool, error) {
	if f.refundErr != nil {
		return false, f.refundErr
	}
	f.refunded = append(f.refunded, dealID)
	return true, nil
}

func (f *fakeDealRepo) MarkPosted(ctx context.Context, dealID uuid.UUID) (bool, error) {
	return false, nil
}

func (f *fakeDealRepo) MarkHoldVerification(ctx context.Context, dealID uuid.UUID) (bool, error) {
	return false, nil
}

func (f *fakeDealRepo) UpsertPost(ctx context.Context, post *models.DealPost) error {
	return nil
}

type fakeUsers struct {
	user *usermodels.User
	err  error
}

func (f *fakeUsers) GetByID(ctx context.Context, id uuid.UUID) (*usermodels.User, error) {
	return f.user, f.err
}

type fakeAudit struct {
	entries []auditmodels.Entry
	err     error
}

func (f *fakeAudit) Log(ctx context.Context, entry auditmodels.Entry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

type fakeNotifier struct {
	sent []string
	err  error
}

func (f *fakeNotifier) SendMessage(ctx context.Context, chatID int64, text string) (*telegram.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, text)
	return &telegram.Message{MessageID: 1}, nil
}

type fakePublisher struct {
	published []events.Event
}

func (f *fakePublisher) Publish(ctx context.Context, stream string, event events.Event) error {
	f.published = append(f.published, event)
	return nil
}

func testChannel() *channelmodels.Channel {
	return &channelmodels.Channel{
		ID:       uuid.New(),
		Username: "testchannel",
	}
}

func newCascade(deals *fakeDealRepo, audit *fakeAudit, notifier *fakeNotifier, pub *fakePublisher) *CascadeService {
	return NewCascadeService(deals, &fakeUsers{user: &usermodels.User{TelegramUserID: 42}}, audit, notifier, pub, zap.NewNop())
}

func TestCascadeNoDeals(t *testing.T) {
	repo := &fakeDealRepo{}
	audit := &fakeAudit{}
	svc := newCascade(repo, audit, &fakeNotifier{}, &fakePublisher{})

	res, err := svc.CancelChannelDeals(context.Background(), testChannel())

	require.NoError(t, err)
	assert.Zero(t, res.Cancelled)
	assert.Empty(t, audit.entries)
}

func TestCascadeFundedDealRefunded(t *testing.T) {
	deal := models.Deal{ID: uuid.New(), Status: models.StatusFunded, PriceNanoTON: 1_500_000_000}
	repo := &fakeDealRepo{deals: []models.Deal{deal}}
	audit := &fakeAudit{}
	notifier := &fakeNotifier{}
	pub := &fakePublisher{}
	svc := newCascade(repo, audit, notifier, pub)

	res, err := svc.CancelChannelDeals(context.Background(), testChannel())

	require.NoError(t, err)
	assert.Equal(t, 1, res.Cancelled)
	assert.Equal(t, 1, res.Refunded)
	assert.Equal(t, []uuid.UUID{deal.ID}, repo.cancelled)
	assert.Equal(t, []uuid.UUID{deal.ID}, repo.refunded)

	// Отмена всегда пишется в аудит раньше возврата.
	require.Len(t, audit.entries, 2)
	assert.Equal(t, auditmodels.ActionDealCancelledBotRemoved, audit.entries[0].Action)
	assert.Equal(t, auditmodels.ActionDealRefundedBotRemoved, audit.entries[1].Action)
	assert.Equal(t, auditmodels.ActorSystem, audit.entries[0].ActorType)

	require.Len(t, notifier.sent, 1)
	assert.Contains(t, notifier.sent[0], "@testchannel")
	assert.Contains(t, notifier.sent[0], "refunded")
	assert.Contains(t, notifier.sent[0], "1.5 TON")

	require.Len(t, pub.published, 2)
	assert.Equal(t, events.EventDealStatusChanged, pub.published[0].Type)
	assert.Equal(t, models.StatusCancelled, pub.published[0].Payload["status"])
	assert.Equal(t, models.StatusRefunded, pub.published[1].Payload["status"])
}

func TestCascadeUnfundedDealNotRefunded(t *testing.T) {
	deal := models.Deal{ID: uuid.New(), Status: models.StatusSubmitted}
	repo := &fakeDealRepo{deals: []models.Deal{deal}}
	audit := &fakeAudit{}
	svc := newCascade(repo, audit, &fakeNotifier{}, &fakePublisher{})

	res, err := svc.CancelChannelDeals(context.Background(), testChannel())

	require.NoError(t, err)
	assert.Equal(t, 1, res.Cancelled)
	assert.Zero(t, res.Refunded)
	assert.Empty(t, repo.refunded)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, auditmodels.ActionDealCancelledBotRemoved, audit.entries[0].Action)
}

func TestCascadeSkipsAlreadyTerminal(t *testing.T) {
	deal := models.Deal{ID: uuid.New(), Status: models.StatusFunded}
	repo := &fakeDealRepo{
		deals:      []models.Deal{deal},
		notApplied: map[uuid.UUID]bool{deal.ID: true},
	}
	audit := &fakeAudit{}
	svc := newCascade(repo, audit, &fakeNotifier{}, &fakePublisher{})

	res, err := svc.CancelChannelDeals(context.Background(), testChannel())

	require.NoError(t, err)
	assert.Zero(t, res.Cancelled)
	assert.Zero(t, res.Refunded)
	assert.Equal(t, 1, res.Skipped)
	assert.Empty(t, repo.refunded)
	assert.Empty(t, audit.entries)
}

func TestCascadeRefundFailureKeepsDealCancelled(t *testing.T) {
	deal := models.Deal{ID: uuid.New(), Status: models.StatusFunded}
	repo := &fakeDealRepo{
		deals:     []models.Deal{deal},
		refundErr: errors.New("db down"),
	}
	audit := &fakeAudit{}
	svc := newCascade(repo, audit, &fakeNotifier{}, &fakePublisher{})

	res, err := svc.CancelChannelDeals(context.Background(), testChannel())

	// Отмена применилась — её не откатить сбоем возврата.
	require.NoError(t, err)
	assert.Equal(t, 1, res.Cancelled)
	assert.Zero(t, res.Refunded)
	assert.Zero(t, res.Skipped)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, auditmodels.ActionDealCancelledBotRemoved, audit.entries[0].Action)
}

func TestCascadeIsolatesFailures(t *testing.T) {
	broken := models.Deal{ID: uuid.New(), Status: models.StatusFunded}
	healthy := models.Deal{ID: uuid.New(), Status: models.StatusAccepted}
	repo := &fakeDealRepo{
		deals:     []models.Deal{broken, healthy},
		cancelErr: map[uuid.UUID]error{broken.ID: errors.New("db down")},
	}
	audit := &fakeAudit{}
	svc := newCascade(repo, audit, &fakeNotifier{}, &fakePublisher{})

	res, err := svc.CancelChannelDeals(context.Background(), testChannel())

	require.NoError(t, err)
	assert.Equal(t, 1, res.Cancelled)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, []uuid.UUID{healthy.ID}, repo.cancelled)
}

func TestCascadeNotificationFailureIgnored(t *testing.T) {
	deal := models.Deal{ID: uuid.New(), Status: models.StatusFunded}
	repo := &fakeDealRepo{deals: []models.Deal{deal}}
	svc := newCascade(repo, &fakeAudit{}, &fakeNotifier{err: errors.New("blocked by user")}, &fakePublisher{})

	res, err := svc.CancelChannelDeals(context.Background(), testChannel())

	require.NoError(t, err)
	assert.Equal(t, 1, res.Cancelled)
	assert.Equal(t, 1, res.Refunded)
}

func TestCascadeListFailure(t *testing.T) {
	repo := &fakeDealRepo{listErr: errors.New("db down")}
	svc := newCascade(repo, &fakeAudit{}, &fakeNotifier{}, &fakePublisher{})

	_, err := svc.CancelChannelDeals(context.Background(), testChannel())
	assert.Error(t, err)
}
