package lobby

import "github.com/palemoky/card-smash/internal/game/card"

// Outcome 拍桌结算分支
type Outcome int

const (
	OutcomeNone        Outcome = iota // 无人收牌
	OutcomeNonReactors                // 图案正确，没拍的人全部收牌
	OutcomeSlowest                    // 图案正确且全员拍了，最慢者收牌
	OutcomeWrongSmash                 // 图案错误，拍了的人全部收牌
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNonReactors:
		return "non_reactors"
	case OutcomeSlowest:
		return "slowest"
	case OutcomeWrongSmash:
		return "wrong_smash"
	default:
		return "none"
	}
}

// Resolution 拍桌结算结果
type Resolution struct {
	Outcome    Outcome
	Correct    bool  // 桌面顶牌是否等于目标图案
	Recipients []int // 收牌座位，按座位顺序
}

// ResolveSmash 根据桌面顶牌、目标图案和各座位的拍桌时间戳决定谁收走牌堆。
// 纯函数：相同输入总是得到相同结果。
func ResolveSmash(table []card.Card, target card.Card, reactions []float64) Resolution {
	if len(table) == 0 {
		return Resolution{Outcome: OutcomeNone}
	}
	correct := table[len(table)-1] == target
	if len(reactions) == 0 {
		return Resolution{Outcome: OutcomeNone, Correct: correct}
	}

	if !correct {
		var smashers []int
		for i, ts := range reactions {
			if ts != 0 {
				smashers = append(smashers, i)
			}
		}
		if len(smashers) == 0 {
			return Resolution{Outcome: OutcomeNone}
		}
		return Resolution{Outcome: OutcomeWrongSmash, Recipients: smashers}
	}

	var (
		idle    []int
		slowest int
		latest  float64
	)
	for i, ts := range reactions {
		if ts == 0 {
			idle = append(idle, i)
			continue
		}
		if ts > latest {
			slowest = i
			latest = ts
		}
	}

	if len(idle) > 0 {
		return Resolution{Outcome: OutcomeNonReactors, Correct: true, Recipients: idle}
	}
	return Resolution{Outcome: OutcomeSlowest, Correct: true, Recipients: []int{slowest}}
}
