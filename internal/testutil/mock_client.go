//go:build !production

package testutil

import (
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/card-smash/internal/protocol"
	"github.com/palemoky/card-smash/internal/protocol/codec"
)

// MockClient 实现 types.Conn 的 mock
type MockClient struct {
	mock.Mock
}

func (m *MockClient) GetID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) SendMessage(msg *protocol.Message) {
	m.Called(msg)
}

func (m *MockClient) CloseWithReason(code int, reason string) {
	m.Called(code, reason)
}

// SimpleClient 记录收到的消息的假连接，不使用 testify（并发安全）
type SimpleClient struct {
	ID string

	mu          sync.Mutex
	messages    []*protocol.Message
	closed      bool
	closeCode   int
	closeReason string
}

// NewSimpleClient 创建假连接
func NewSimpleClient(id string) *SimpleClient {
	return &SimpleClient{ID: id}
}

func (c *SimpleClient) GetID() string { return c.ID }

func (c *SimpleClient) SendMessage(msg *protocol.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
}

func (c *SimpleClient) CloseWithReason(code int, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.closeCode = code
	c.closeReason = reason
}

// SentMessages 已收到的消息副本
func (c *SimpleClient) SentMessages() []*protocol.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*protocol.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Reset 清空已收到的消息
func (c *SimpleClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
}

// Events 已收到消息的事件码序列
func (c *SimpleClient) Events() []protocol.EventType {
	msgs := c.SentMessages()
	events := make([]protocol.EventType, len(msgs))
	for i, m := range msgs {
		events[i] = m.Type
	}
	return events
}

// Count 某类事件收到的次数
func (c *SimpleClient) Count(t protocol.EventType) int {
	n := 0
	for _, e := range c.Events() {
		if e == t {
			n++
		}
	}
	return n
}

// Last 最后一条 t 类型消息，没有则返回 nil
func (c *SimpleClient) Last(t protocol.EventType) *protocol.Message {
	msgs := c.SentMessages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Type == t {
			return msgs[i]
		}
	}
	return nil
}

// LastInfo 把最后一条 t 类型消息的 info 解析到 v，没有该消息返回 false
func (c *SimpleClient) LastInfo(t protocol.EventType, v any) bool {
	msg := c.Last(t)
	if msg == nil {
		return false
	}
	return codec.DecodeInfo(msg, v) == nil
}

// Closed 是否被关闭及关闭码、原因
func (c *SimpleClient) Closed() (bool, int, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed, c.closeCode, c.closeReason
}
