package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/palemoky/card-smash/internal/protocol"
	"github.com/palemoky/card-smash/internal/protocol/codec"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	handshakeTimeout = 10 * time.Second
	bufferSize       = 256
)

var (
	ErrClosed         = errors.New("connection closed")
	ErrSendBufferFull = errors.New("send buffer full")
	ErrTimeout        = errors.New("receive timeout")
)

// RejectedError 服务器拒绝加入大厅
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return "join rejected: " + e.Reason
}

// Client 连接游戏服务器的客户端
type Client struct {
	BaseURL    string // 例如 http://localhost:6464
	httpClient *http.Client

	conn    *websocket.Conn
	send    chan []byte
	receive chan *protocol.Message
	done    chan struct{}

	// 回调
	OnMessage func(*protocol.Message)        // 消息回调
	OnError   func(error)                    // 错误回调
	OnClose   func(code int, reason string) // 关闭回调

	mu          sync.RWMutex
	closed      bool
	closeCode   int
	closeReason string
}

// NewClient 创建客户端
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: handshakeTimeout},
		send:       make(chan []byte, bufferSize),
		receive:    make(chan *protocol.Message, bufferSize),
		done:       make(chan struct{}),
	}
}

// wsURL 把 http(s) 地址换成 ws(s) 地址
func (c *Client) wsURL(path string, query url.Values) (string, error) {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return "", fmt.Errorf("invalid server url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.RawQuery = query.Encode()
	return u.String(), nil
}

// Join 以 name 加入大厅。第一条消息不是 JSON 时视为拒绝原因
func (c *Client) Join(ctx context.Context, lobbyID, name string) error {
	target, err := c.wsURL("/joinLobby", url.Values{"lobbyID": {lobbyID}, "playerName": {name}})
	if err != nil {
		return err
	}

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, target, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	_, data, err := conn.ReadMessage()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("read roster: %w", err)
	}
	first, err := codec.Decode(data)
	if err != nil {
		_ = conn.Close()
		return &RejectedError{Reason: string(data)}
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	c.deliver(first)

	// 启动读写协程
	go c.readPump()
	go c.writePump()

	return nil
}

// SendMessage 发送消息
func (c *Client) SendMessage(msg *protocol.Message) error {
	data, err := codec.Encode(msg)
	if err != nil {
		return err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed || c.conn == nil {
		return ErrClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Receive 接收消息（阻塞）
func (c *Client) Receive() (*protocol.Message, error) {
	select {
	case msg := <-c.receive:
		return msg, nil
	case <-c.done:
		// 关闭前已收到的消息仍然交付
		select {
		case msg := <-c.receive:
			return msg, nil
		default:
		}
		return nil, ErrClosed
	}
}

// ReceiveWithTimeout 带超时接收消息
func (c *Client) ReceiveWithTimeout(timeout time.Duration) (*protocol.Message, error) {
	select {
	case msg := <-c.receive:
		return msg, nil
	case <-time.After(timeout):
		return nil, ErrTimeout
	case <-c.done:
		return nil, ErrClosed
	}
}

// Close 关闭连接，由写协程发送关闭帧并断开
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.done)
	}
}

// IsConnected 是否已连接
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.closed && c.conn != nil
}

// CloseStatus 服务器发来的关闭码和原因
func (c *Client) CloseStatus() (int, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closeCode, c.closeReason
}

func (c *Client) deliver(msg *protocol.Message) {
	if c.OnMessage != nil {
		c.OnMessage(msg)
	}

	select {
	case c.receive <- msg:
	default:
	}
}
