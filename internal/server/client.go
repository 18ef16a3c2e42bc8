package server

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/palemoky/card-smash/internal/game/lobby"
	"github.com/palemoky/card-smash/internal/logger"
	"github.com/palemoky/card-smash/internal/protocol"
	"github.com/palemoky/card-smash/internal/protocol/codec"
)

const (
	// 写入超时
	writeWait = 10 * time.Second

	// 读取超时（pong 等待时间）
	pongWait = 60 * time.Second

	// ping 发送间隔（必须小于 pongWait）
	pingPeriod = (pongWait * 9) / 10

	// 消息最大大小
	maxMessageSize = 4096

	// 发送缓冲区大小
	sendBufferSize = 256
)

// Client 一个 WebSocket 连接，实现 types.Conn
type Client struct {
	ID   string // 连接唯一 ID
	Name string // 玩家昵称
	IP   string // 客户端 IP 地址

	server *Server
	conn   *websocket.Conn
	send   chan []byte
	lobby  *lobby.Lobby

	mu         sync.RWMutex
	closed     bool
	closeFrame []byte // 写协程退出前发送的关闭帧
}

// NewClient 创建新客户端
func NewClient(s *Server, conn *websocket.Conn, name, ip string) *Client {
	return &Client{
		ID:     uuid.New().String(),
		Name:   name,
		IP:     ip,
		server: s,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
	}
}

// GetID 连接 ID
func (c *Client) GetID() string {
	return c.ID
}

// ReadPump 从 WebSocket 读取消息
func (c *Client) ReadPump() {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		c.handleDisconnect()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("读取错误: %v", err)
			}
			break
		}

		// 无法解析的消息直接丢弃，不回复
		msg, err := codec.Decode(data)
		if err != nil {
			log.Printf("🗑️ 丢弃玩家 %s 的无效消息: %v", c.Name, err)
			continue
		}

		c.server.handler.Handle(c.lobby, c, msg)
		codec.PutMessage(msg)
	}
}

// WritePump 向 WebSocket 写入消息
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// 通道已关闭，发送关闭帧
				_ = c.conn.WriteMessage(websocket.CloseMessage, c.getCloseFrame())
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage 发送消息给客户端，不阻塞
func (c *Client) SendMessage(msg *protocol.Message) {
	data, err := codec.Encode(msg)
	if err != nil {
		log.Printf("消息编码错误: %v", err)
		return
	}

	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return
	}
	overflow := false
	select {
	case c.send <- data:
	default:
		overflow = true
	}
	c.mu.RUnlock()

	if overflow {
		// 发送缓冲区已满，关闭连接
		log.Printf("客户端 %s 发送缓冲区已满", c.ID)
		c.Close()
	}
}

// CloseWithReason 发送带关闭码的关闭帧后断开
func (c *Client) CloseWithReason(code int, reason string) {
	c.closeWith(websocket.FormatCloseMessage(code, reason))
}

// Close 关闭客户端连接
func (c *Client) Close() {
	c.closeWith(websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (c *Client) closeWith(frame []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		c.closeFrame = frame
		close(c.send)
	}
}

func (c *Client) getCloseFrame() []byte {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closeFrame
}

// handleDisconnect 处理断开连接
func (c *Client) handleDisconnect() {
	c.server.registry.Disconnect(c.lobby, c)
	c.server.unregisterClient(c)
	c.Close()
}
