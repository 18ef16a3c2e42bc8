package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/palemoky/card-smash/internal/protocol"
	"github.com/palemoky/card-smash/internal/protocol/codec"
)

// --- 游戏操作 ---

// StartGame 开始游戏
func (c *Client) StartGame() error {
	return c.SendMessage(codec.MustNewMessage(protocol.EventStartGame, nil))
}

// PlayCard 出牌
func (c *Client) PlayCard() error {
	return c.SendMessage(codec.MustNewMessage(protocol.EventPlayCard, nil))
}

// Smash 拍桌，timestamp 为收到出牌后经过的秒数
func (c *Client) Smash(timestamp float64) error {
	return c.SendMessage(codec.MustNewMessage(protocol.EventSmash, strconv.FormatFloat(timestamp, 'f', -1, 64)))
}

// --- HTTP 接口 ---

// CreateLobby 创建大厅，返回大厅 ID
func (c *Client) CreateLobby(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/createLobby", http.NoBody)
	if err != nil {
		return "", err
	}
	body, status, err := c.do(req)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("create lobby: unexpected status %d", status)
	}
	return string(body), nil
}

// IsJoinable 加入预检，不能加入时返回 *RejectedError
func (c *Client) IsJoinable(ctx context.Context, lobbyID, name string) error {
	q := url.Values{"lobbyID": {lobbyID}, "playerName": {name}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/isJoinable?"+q.Encode(), http.NoBody)
	if err != nil {
		return err
	}
	body, status, err := c.do(req)
	if err != nil {
		return err
	}
	if status == http.StatusOK {
		return nil
	}

	var payload protocol.ErrorPayload
	if err := json.Unmarshal(body, &payload); err != nil || payload.Error == "" {
		return fmt.Errorf("is joinable: unexpected status %d", status)
	}
	return &RejectedError{Reason: payload.Error}
}

// Leaderboard 排行榜
func (c *Client) Leaderboard(ctx context.Context, limit int) ([]protocol.LeaderboardEntry, error) {
	target := c.BaseURL + "/leaderboard?limit=" + strconv.Itoa(limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, err
	}
	body, status, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("leaderboard: unexpected status %d", status)
	}
	var entries []protocol.LeaderboardEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("decode leaderboard: %w", err)
	}
	return entries, nil
}

func (c *Client) do(req *http.Request) ([]byte, int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}
