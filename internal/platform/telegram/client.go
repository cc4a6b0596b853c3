package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"channel-bot-backend/internal/common/errors"
)

const apiBase = "https://api.telegram.org"

// Client provides the Bot API surface used by the backend: chat lookups,
// administrator queries, promotion, messaging and the update feed.
type Client struct {
	httpClient   *http.Client
	token        string
	log          *zap.Logger
	baseOverride string
}

func NewClient(token string, log *zap.Logger) *Client {
	return &Client{
		// Таймаут должен превышать длинный опрос getUpdates
		httpClient: &http.Client{Timeout: 65 * time.Second},
		token:      token,
		log:        log,
	}
}

type tgResponse[T any] struct {
	Ok          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
	Result      T      `json:"result"`
}

// GetChat fetches chat info by numeric id or "@username" reference.
func (c *Client) GetChat(ctx context.Context, chatRef string) (*Chat, error) {
	params := url.Values{"chat_id": {chatRef}}

	var result tgResponse[Chat]
	if err := c.makeRequest(ctx, http.MethodGet, c.endpoint("getChat"), params, &result); err != nil {
		return nil, errors.NewTelegramAPIError("getChat", err)
	}
	if !result.Ok {
		return nil, errors.NewTelegramAPIError("getChat", fmt.Errorf("%s", result.Description))
	}
	return &result.Result, nil
}

// GetChatAdministrators returns the raw administrator roster of a chat,
// bots included.
func (c *Client) GetChatAdministrators(ctx context.Context, chatID int64) ([]ChatMember, error) {
	params := url.Values{"chat_id": {strconv.FormatInt(chatID, 10)}}

	var result tgResponse[[]ChatMember]
	if err := c.makeRequest(ctx, http.MethodGet, c.endpoint("getChatAdministrators"), params, &result); err != nil {
		return nil, errors.NewTelegramAPIError("getChatAdministrators", err)
	}
	if !result.Ok {
		return nil, errors.NewTelegramAPIError("getChatAdministrators", fmt.Errorf("%s", result.Description))
	}
	return result.Result, nil
}

// PromoteChatMember grants the given capability set to a chat member.
// A zero AdminRights value demotes the member back to an ordinary one.
func (c *Client) PromoteChatMember(ctx context.Context, chatID, userID int64, rights AdminRights) error {
	params := url.Values{
		"chat_id":                {strconv.FormatInt(chatID, 10)},
		"user_id":                {strconv.FormatInt(userID, 10)},
		"can_manage_chat":        {strconv.FormatBool(rights.CanManageChat)},
		"can_post_messages":      {strconv.FormatBool(rights.CanPostMessages)},
		"can_edit_messages":      {strconv.FormatBool(rights.CanEditMessages)},
		"can_delete_messages":    {strconv.FormatBool(rights.CanDeleteMessages)},
		"can_invite_users":       {strconv.FormatBool(rights.CanInviteUsers)},
		"can_restrict_members":   {strconv.FormatBool(rights.CanRestrictMembers)},
		"can_pin_messages":       {strconv.FormatBool(rights.CanPinMessages)},
		"can_promote_members":    {strconv.FormatBool(rights.CanPromoteMembers)},
		"can_manage_video_chats": {strconv.FormatBool(rights.CanManageVideoChats)},
	}

	var result tgResponse[bool]
	if err := c.makeRequest(ctx, http.MethodPost, c.endpoint("promoteChatMember"), params, &result); err != nil {
		return errors.NewTelegramAPIError("promoteChatMember", err)
	}
	if !result.Ok {
		return errors.NewTelegramAPIError("promoteChatMember", fmt.Errorf("%s", result.Description))
	}
	return nil
}

// SendMessage sends a plain text message to a chat or user.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) (*Message, error) {
	params := url.Values{
		"chat_id": {strconv.FormatInt(chatID, 10)},
		"text":    {text},
	}

	var result tgResponse[Message]
	if err := c.makeRequest(ctx, http.MethodPost, c.endpoint("sendMessage"), params, &result); err != nil {
		return nil, errors.NewTelegramAPIError("sendMessage", err)
	}
	if !result.Ok {
		return nil, errors.NewTelegramAPIError("sendMessage", fmt.Errorf("%s", result.Description))
	}
	return &result.Result, nil
}

// GetUpdates long-polls the Bot API update feed starting from offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeoutSec int, allowedUpdates []string) ([]Update, error) {
	params := url.Values{
		"offset":  {strconv.FormatInt(offset, 10)},
		"timeout": {strconv.Itoa(timeoutSec)},
	}
	if len(allowedUpdates) > 0 {
		encoded, err := json.Marshal(allowedUpdates)
		if err != nil {
			return nil, err
		}
		params.Set("allowed_updates", string(encoded))
	}

	var result tgResponse[[]Update]
	if err := c.makeRequest(ctx, http.MethodGet, c.endpoint("getUpdates"), params, &result); err != nil {
		return nil, errors.NewTelegramAPIError("getUpdates", err)
	}
	if !result.Ok {
		return nil, errors.NewTelegramAPIError("getUpdates", fmt.Errorf("%s", result.Description))
	}
	return result.Result, nil
}

func (c *Client) endpoint(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.apiHost(), c.token, method)
}

func (c *Client) apiHost() string {
	if c.baseOverride != "" {
		return c.baseOverride
	}
	return apiBase
}

// WithBaseURL points the client at a different API host. Used in tests.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseOverride = strings.TrimRight(base, "/")
	return c
}

func (c *Client) makeRequest(ctx context.Context, method, endpoint string, data url.Values, out any) error {
	var req *http.Request
	var err error
	if method == http.MethodPost {
		req, err = http.NewRequestWithContext(ctx, method, endpoint, strings.NewReader(data.Encode()))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		if len(data) > 0 {
			endpoint = endpoint + "?" + data.Encode()
		}
		req, err = http.NewRequestWithContext(ctx, method, endpoint, nil)
		if err != nil {
			return err
		}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	dec := json.NewDecoder(resp.Body)
	return dec.Decode(out)
}
