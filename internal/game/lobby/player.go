package lobby

import (
	"github.com/palemoky/card-smash/internal/game/card"
	"github.com/palemoky/card-smash/internal/types"
)

// Player 座位上的玩家
type Player struct {
	Name      string
	Conn      types.Conn // 非拥有引用，仅作身份键和发送目标
	Hand      card.Hand
	SmashTime float64 // 本轮拍桌时间戳，0 表示尚未拍桌
}

func newPlayer(name string, conn types.Conn) *Player {
	return &Player{Name: name, Conn: conn}
}

// HasReacted 本轮是否已拍桌
func (p *Player) HasReacted() bool {
	return p.SmashTime != 0
}
