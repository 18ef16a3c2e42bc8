package server

import (
	"log"

	"github.com/palemoky/card-smash/internal/game/lobby"
	"github.com/palemoky/card-smash/internal/protocol"
	"github.com/palemoky/card-smash/internal/protocol/codec"
	"github.com/palemoky/card-smash/internal/types"
)

// handlerFunc 统一的处理器函数签名
type handlerFunc func(l *lobby.Lobby, c types.Conn, msg *protocol.Message)

// Handler 客户端消息分发
type Handler struct {
	handlers map[protocol.EventType]handlerFunc
}

// NewHandler 创建处理器
func NewHandler() *Handler {
	h := &Handler{}
	h.initHandlers()
	return h
}

// initHandlers 初始化消息处理器映射
func (h *Handler) initHandlers() {
	h.handlers = map[protocol.EventType]handlerFunc{
		protocol.EventStartGame: func(l *lobby.Lobby, c types.Conn, _ *protocol.Message) { l.Start(c) },
		protocol.EventPlayCard:  func(l *lobby.Lobby, c types.Conn, _ *protocol.Message) { l.PlayCard(c) },
		protocol.EventSmash:     h.handleSmash,
	}
}

// Handle 处理消息。不在大厅、未知事件或格式错误的消息都直接丢弃
func (h *Handler) Handle(l *lobby.Lobby, c types.Conn, msg *protocol.Message) {
	if l == nil || msg == nil {
		return
	}
	if !msg.Type.IsClientEvent() {
		log.Printf("🗑️ 丢弃连接 %s 的非客户端事件 %d (%s)", c.GetID(), msg.Type, msg.Type)
		return
	}
	if handler, ok := h.handlers[msg.Type]; ok {
		handler(l, c, msg)
	}
}

func (h *Handler) handleSmash(l *lobby.Lobby, c types.Conn, msg *protocol.Message) {
	ts, err := codec.DecodeTimestamp(msg.Info)
	if err != nil {
		log.Printf("🗑️ 丢弃连接 %s 的拍桌消息: %v", c.GetID(), err)
		return
	}
	l.Smash(c, ts)
}
