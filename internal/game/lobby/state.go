package lobby

// Phase 大厅阶段
type Phase int

const (
	PhaseJoining Phase = iota // 等待玩家加入
	PhaseCard                 // 等待当前玩家出牌
	PhaseSmash                // 拍桌窗口
)

func (p Phase) String() string {
	switch p {
	case PhaseJoining:
		return "joining"
	case PhaseCard:
		return "card"
	case PhaseSmash:
		return "smash"
	default:
		return "unknown"
	}
}
