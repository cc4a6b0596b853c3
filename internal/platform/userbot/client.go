package userbot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"channel-bot-backend/internal/common/errors"
)

// Client talks to the userbot internal API — the secondary account that is
// promoted into channels for analytics visibility. The userbot service owns
// its own session, retries and timeouts; this client only reflects outcomes.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

func NewClient(baseURL string, log *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

// Me is the userbot's own Telegram identity.
type Me struct {
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
}

// GetMe returns the userbot's Telegram account info.
func (c *Client) GetMe(ctx context.Context) (*Me, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/internal/me", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewUserbotAPIError("me", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, errors.NewUserbotAPIError("me", fmt.Errorf("userbot returned %d: %s", resp.StatusCode, string(body)))
	}

	var me Me
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		return nil, errors.NewUserbotAPIError("me", err)
	}
	return &me, nil
}

// JoinChannel has the userbot join a public channel by username.
func (c *Client) JoinChannel(ctx context.Context, username string) error {
	body, _ := json.Marshal(map[string]string{"username": username})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/internal/join-channel", strings.NewReader(string(body)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewUserbotAPIError("join-channel", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return errors.NewUserbotAPIError("join-channel", fmt.Errorf("userbot returned %d: %s", resp.StatusCode, string(b)))
	}
	return nil
}

// IsAvailable checks whether the userbot service is reachable and connected.
func (c *Client) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var result struct {
		Status    string `json:"status"`
		Connected bool   `json:"connected"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false
	}
	return result.Connected
}
