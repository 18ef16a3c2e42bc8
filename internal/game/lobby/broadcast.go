package lobby

import (
	"github.com/palemoky/card-smash/internal/protocol"
	"github.com/palemoky/card-smash/internal/types"
)

// broadcast 发给所有在座玩家。每个连接的发送互不影响。
func (l *Lobby) broadcast(msg *protocol.Message) {
	for _, p := range l.players {
		p.Conn.SendMessage(msg)
	}
}

// broadcastExcept 发给除 conn 以外的在座玩家
func (l *Lobby) broadcastExcept(conn types.Conn, msg *protocol.Message) {
	for _, p := range l.players {
		if p.Conn != conn {
			p.Conn.SendMessage(msg)
		}
	}
}
