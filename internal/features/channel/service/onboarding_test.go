package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"channel-bot-backend/internal/features/channel/models"
)

func (f *fixture) admitted(t *testing.T) {
	t.Helper()
	require.NoError(t, f.svc.HandleBotAdmitted(context.Background(), admissionEvent()))
}

func TestOnboardingSuccess(t *testing.T) {
	f := newFixture()
	f.admitted(t)

	f.svc.runOnboarding("testchannel")

	ch, _ := f.channels.GetByUsername(context.Background(), "testchannel")
	assert.Equal(t, models.AnalyticsStatusActive, ch.AnalyticsStatus)
	assert.Equal(t, []string{"testchannel"}, f.userbot.joined)
	assert.Equal(t, []int64{777}, f.bot.promoted)
	// pending фиксируется до повышения, active — после.
	assert.Equal(t, []string{models.AnalyticsStatusPending, models.AnalyticsStatusActive}, f.channels.statuses)
}

func TestOnboardingIdentityFailure(t *testing.T) {
	f := newFixture()
	f.admitted(t)
	f.userbot.me = nil
	f.userbot.meErr = errors.New("userbot offline")

	f.svc.runOnboarding("testchannel")

	ch, _ := f.channels.GetByUsername(context.Background(), "testchannel")
	assert.Equal(t, models.AnalyticsStatusFailed, ch.AnalyticsStatus)
	assert.Empty(t, f.userbot.joined)
	assert.Empty(t, f.bot.promoted)
}

func TestOnboardingJoinFailure(t *testing.T) {
	f := newFixture()
	f.admitted(t)
	f.userbot.joinErr = errors.New("invite expired")

	f.svc.runOnboarding("testchannel")

	ch, _ := f.channels.GetByUsername(context.Background(), "testchannel")
	assert.Equal(t, models.AnalyticsStatusFailed, ch.AnalyticsStatus)
	assert.Empty(t, f.bot.promoted)
}

func TestOnboardingPromotionFailureStaysPending(t *testing.T) {
	f := newFixture()
	f.admitted(t)
	f.bot.promoteErr = errors.New("not enough rights")

	f.svc.runOnboarding("testchannel")

	// Юзербот в канале, но без прав: ждём ручного вмешательства,
	// а не хороним подключение.
	ch, _ := f.channels.GetByUsername(context.Background(), "testchannel")
	assert.Equal(t, models.AnalyticsStatusPending, ch.AnalyticsStatus)
	assert.Equal(t, []string{"testchannel"}, f.userbot.joined)
}

func TestOnboardingFailureDoesNotTouchChannelRecord(t *testing.T) {
	f := newFixture()
	f.admitted(t)
	f.userbot.meErr = errors.New("userbot offline")

	f.svc.runOnboarding("testchannel")

	ch, _ := f.channels.GetByUsername(context.Background(), "testchannel")
	assert.Equal(t, models.BotStatusActive, ch.BotStatus)
}
