package telegram

// User represents a Telegram user or bot account.
type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// FullName объединяет имя и фамилию пользователя
func (u User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Chat represents a Telegram chat.
type Chat struct {
	ID       int64  `json:"id"`
	Type     string `json:"type"`
	Title    string `json:"title,omitempty"`
	Username string `json:"username,omitempty"`
}

// IsBroadcastChannel reports whether the chat is a broadcast channel
// (as opposed to a group, supergroup or private chat).
func (c Chat) IsBroadcastChannel() bool {
	return c.Type == "channel"
}

// Chat member statuses as reported by the Bot API.
const (
	MemberStatusCreator       = "creator"
	MemberStatusAdministrator = "administrator"
	MemberStatusMember        = "member"
	MemberStatusRestricted    = "restricted"
	MemberStatusLeft          = "left"
	MemberStatusKicked        = "kicked"
)

// ChatMember описывает участника чата и его права
type ChatMember struct {
	Status          string `json:"status"`
	User            User   `json:"user"`
	CanPostMessages bool   `json:"can_post_messages,omitempty"`
	CanInviteUsers  bool   `json:"can_invite_users,omitempty"`
	CanManageChat   bool   `json:"can_manage_chat,omitempty"`
	IsMember        bool   `json:"is_member,omitempty"`
}

// IsParticipant reports whether the status means the account is inside the chat.
func (m ChatMember) IsParticipant() bool {
	switch m.Status {
	case MemberStatusCreator, MemberStatusAdministrator, MemberStatusMember:
		return true
	case MemberStatusRestricted:
		return m.IsMember
	}
	return false
}

// ChatMemberUpdated is the my_chat_member update payload.
type ChatMemberUpdated struct {
	Chat          Chat       `json:"chat"`
	From          User       `json:"from"`
	Date          int64      `json:"date"`
	OldChatMember ChatMember `json:"old_chat_member"`
	NewChatMember ChatMember `json:"new_chat_member"`
}

// Message is a trimmed Bot API message: only the fields this service reads.
type Message struct {
	MessageID    int64  `json:"message_id"`
	Chat         Chat   `json:"chat"`
	Text         string `json:"text,omitempty"`
	NewChatTitle string `json:"new_chat_title,omitempty"`
}

// Update is a single long-polling update.
type Update struct {
	UpdateID     int64              `json:"update_id"`
	MyChatMember *ChatMemberUpdated `json:"my_chat_member,omitempty"`
	ChannelPost  *Message           `json:"channel_post,omitempty"`
}

// AdminRights is the capability set passed to promoteChatMember.
// Zero value revokes every right.
type AdminRights struct {
	CanManageChat       bool
	CanPostMessages     bool
	CanEditMessages     bool
	CanDeleteMessages   bool
	CanInviteUsers      bool
	CanRestrictMembers  bool
	CanPinMessages      bool
	CanPromoteMembers   bool
	CanManageVideoChats bool
}

// AnalyticsViewerRights is the minimal capability set that still grants
// administrator standing: can_manage_chat only. Enough for native channel
// statistics, no content or member management.
func AnalyticsViewerRights() AdminRights {
	return AdminRights{CanManageChat: true}
}
