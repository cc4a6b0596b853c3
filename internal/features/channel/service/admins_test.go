package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"channel-bot-backend/internal/platform/telegram"
)

func rosterFixture(t *testing.T) *fixture {
	t.Helper()
	f := newFixture()
	f.admitted(t)
	f.bot.admins = []telegram.ChatMember{
		{
			Status: telegram.MemberStatusCreator,
			User:   telegram.User{ID: 100, FirstName: "Alice", Username: "alice"},
		},
		{
			Status:          telegram.MemberStatusAdministrator,
			User:            telegram.User{ID: 200, FirstName: "Bob", LastName: "Poster"},
			CanPostMessages: true,
		},
		{
			Status: telegram.MemberStatusAdministrator,
			User:   telegram.User{ID: 300, FirstName: "Carol"},
		},
		{
			Status:          telegram.MemberStatusAdministrator,
			User:            telegram.User{ID: 400, FirstName: "StatBot", IsBot: true},
			CanPostMessages: true,
		},
	}
	return f
}

func TestListAdminsExcludesBots(t *testing.T) {
	f := rosterFixture(t)

	admins, err := f.svc.ListAdmins(context.Background(), "@TestChannel")

	require.NoError(t, err)
	require.Len(t, admins, 3)
	for _, a := range admins {
		assert.NotEqual(t, int64(400), a.TelegramUserID)
	}
}

func TestListAdminsOwnerAlwaysCanPost(t *testing.T) {
	f := rosterFixture(t)

	admins, err := f.svc.ListAdmins(context.Background(), "testchannel")

	require.NoError(t, err)
	assert.True(t, admins[0].IsOwner)
	assert.True(t, admins[0].CanPostMessages)
	assert.Equal(t, "Alice", admins[0].DisplayName)

	assert.False(t, admins[1].IsOwner)
	assert.True(t, admins[1].CanPostMessages)
	assert.Equal(t, "Bob Poster", admins[1].DisplayName)

	assert.False(t, admins[2].CanPostMessages)
}

func TestCheckAdmin(t *testing.T) {
	f := rosterFixture(t)

	tests := []struct {
		name    string
		userID  int64
		isAdmin bool
		canPost bool
	}{
		{"owner", 100, true, true},
		{"posting admin", 200, true, true},
		{"non-posting admin", 300, true, false},
		{"stranger", 999, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := f.svc.CheckAdmin(context.Background(), "testchannel", tt.userID)
			require.NoError(t, err)
			assert.Equal(t, tt.isAdmin, result.IsAdmin)
			assert.Equal(t, tt.canPost, result.CanPostMessages)
		})
	}
}

func TestCheckAdminRosterFailureDenies(t *testing.T) {
	f := rosterFixture(t)
	f.bot.adminsErr = errors.New("telegram timeout")

	result, err := f.svc.CheckAdmin(context.Background(), "testchannel", 100)

	// Сбой опроса — не ошибка проверки: консервативный отказ.
	require.NoError(t, err)
	assert.False(t, result.IsAdmin)
	assert.False(t, result.CanPostMessages)
}

func TestListAdminsUnregisteredChannelResolvesViaGetChat(t *testing.T) {
	f := newFixture()
	f.bot.chat = &telegram.Chat{ID: -100999, Type: "channel", Title: "Fresh", Username: "fresh"}
	f.bot.admins = []telegram.ChatMember{
		{
			Status: telegram.MemberStatusCreator,
			User:   telegram.User{ID: 100, FirstName: "Alice"},
		},
	}

	admins, err := f.svc.ListAdmins(context.Background(), "@fresh")

	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.True(t, admins[0].IsOwner)
}

func TestListAdminsUnregisteredGroupRejected(t *testing.T) {
	f := newFixture()
	f.bot.chat = &telegram.Chat{ID: -100555, Type: "supergroup", Title: "Chatty"}

	_, err := f.svc.ListAdmins(context.Background(), "chatty")
	assert.Error(t, err)
}

func TestListAdminsRosterFailurePropagates(t *testing.T) {
	f := rosterFixture(t)
	f.bot.adminsErr = errors.New("telegram timeout")

	_, err := f.svc.ListAdmins(context.Background(), "testchannel")
	assert.Error(t, err)
}
