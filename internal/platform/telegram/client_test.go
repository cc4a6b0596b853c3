package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testServer(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient("test-token", zap.NewNop()).WithBaseURL(srv.URL)
	return client, srv
}

func TestGetChat(t *testing.T) {
	client, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottest-token/getChat", r.URL.Path)
		assert.Equal(t, "@technews", r.URL.Query().Get("chat_id"))
		w.Write([]byte(`{"ok":true,"result":{"id":-100123,"type":"channel","title":"Tech News","username":"technews"}}`))
	})

	chat, err := client.GetChat(context.Background(), "@technews")

	require.NoError(t, err)
	assert.Equal(t, int64(-100123), chat.ID)
	assert.True(t, chat.IsBroadcastChannel())
}

func TestGetChatAPIError(t *testing.T) {
	client, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	})

	_, err := client.GetChat(context.Background(), "@ghost")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestGetChatAdministrators(t *testing.T) {
	client, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottest-token/getChatAdministrators", r.URL.Path)
		w.Write([]byte(`{"ok":true,"result":[
			{"status":"creator","user":{"id":1,"first_name":"Alice"}},
			{"status":"administrator","user":{"id":2,"first_name":"Bot","is_bot":true},"can_post_messages":true}
		]}`))
	})

	members, err := client.GetChatAdministrators(context.Background(), -100123)

	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, MemberStatusCreator, members[0].Status)
	assert.True(t, members[1].User.IsBot)
	assert.True(t, members[1].CanPostMessages)
}

func TestPromoteChatMemberSendsAllRights(t *testing.T) {
	client, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "true", r.PostForm.Get("can_manage_chat"))
		assert.Equal(t, "false", r.PostForm.Get("can_post_messages"))
		assert.Equal(t, "false", r.PostForm.Get("can_invite_users"))
		w.Write([]byte(`{"ok":true,"result":true}`))
	})

	err := client.PromoteChatMember(context.Background(), -100123, 777, AnalyticsViewerRights())
	require.NoError(t, err)
}

func TestGetUpdates(t *testing.T) {
	client, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "42", q.Get("offset"))
		assert.Equal(t, "30", q.Get("timeout"))
		assert.JSONEq(t, `["my_chat_member","channel_post"]`, q.Get("allowed_updates"))
		w.Write([]byte(`{"ok":true,"result":[
			{"update_id":43,"my_chat_member":{
				"chat":{"id":-100123,"type":"channel","username":"technews"},
				"from":{"id":555,"first_name":"Owner"},
				"old_chat_member":{"status":"left","user":{"id":777,"first_name":"Bot","is_bot":true}},
				"new_chat_member":{"status":"administrator","user":{"id":777,"first_name":"Bot","is_bot":true},"can_invite_users":true}
			}}
		]}`))
	})

	updates, err := client.GetUpdates(context.Background(), 42, 30, []string{"my_chat_member", "channel_post"})

	require.NoError(t, err)
	require.Len(t, updates, 1)
	require.NotNil(t, updates[0].MyChatMember)
	assert.Equal(t, int64(43), updates[0].UpdateID)
	assert.Equal(t, MemberStatusAdministrator, updates[0].MyChatMember.NewChatMember.Status)
	assert.True(t, updates[0].MyChatMember.NewChatMember.CanInviteUsers)
}
