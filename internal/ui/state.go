package ui

import (
	"fmt"
	"slices"
	"time"

	"github.com/palemoky/card-smash/internal/game/card"
	"github.com/palemoky/card-smash/internal/protocol"
	"github.com/palemoky/card-smash/internal/protocol/codec"
)

// maxLogLines 事件日志保留条数
const maxLogLines = 8

// TableState 客户端视角的大厅状态，仅由服务器事件驱动
type TableState struct {
	Me      string
	Players []string
	Turn    string // 当前出牌玩家
	Started bool
	Winner  string

	LastCard   *protocol.CardPlayedPayload
	PlayedAt   time.Time // 收到最近一张牌的时间
	TableCount int       // 桌面牌数
	Hints      map[string]string
	Smashed    bool // 本轮是否已拍桌

	Log []string
}

// NewTableState 创建状态
func NewTableState(me string) *TableState {
	return &TableState{
		Me:    me,
		Hints: make(map[string]string),
	}
}

// Apply 应用一条服务器事件，now 为收到事件的时间
func (s *TableState) Apply(msg *protocol.Message, now time.Time) error {
	switch msg.Type {
	case protocol.EventPlayerRoster:
		var names []string
		if err := codec.DecodeInfo(msg, &names); err != nil {
			return err
		}
		s.Players = names
		s.addLog(fmt.Sprintf("👋 进入大厅，当前玩家: %d", len(names)))

	case protocol.EventPlayerJoined:
		var name string
		if err := codec.DecodeInfo(msg, &name); err != nil {
			return err
		}
		if !slices.Contains(s.Players, name) {
			s.Players = append(s.Players, name)
		}
		s.addLog(fmt.Sprintf("➕ %s 加入了大厅", name))

	case protocol.EventPlayerLeft:
		var name string
		if err := codec.DecodeInfo(msg, &name); err != nil {
			return err
		}
		s.Players = slices.DeleteFunc(s.Players, func(p string) bool { return p == name })
		delete(s.Hints, name)
		s.addLog(fmt.Sprintf("➖ %s 离开了大厅", name))

	case protocol.EventGameStarted:
		s.Started = true
		s.addLog("🎮 游戏开始")

	case protocol.EventPlayerTurn:
		var name string
		if err := codec.DecodeInfo(msg, &name); err != nil {
			return err
		}
		s.Turn = name

	case protocol.EventCardPlayed:
		var p protocol.CardPlayedPayload
		if err := codec.DecodeInfo(msg, &p); err != nil {
			return err
		}
		s.LastCard = &p
		s.PlayedAt = now
		s.TableCount++
		s.Smashed = false
		s.Hints[p.Name] = p.Num
		s.addLog(fmt.Sprintf("🃏 %s 出了 %s (目标 %s)", p.Name, symbol(p.Card), symbol(p.CurrentMascy)))

	case protocol.EventCardsAwarded:
		var takers []string
		if err := codec.DecodeInfo(msg, &takers); err != nil {
			return err
		}
		s.TableCount = 0
		// 收牌后的张数未知
		for _, name := range takers {
			delete(s.Hints, name)
		}
		s.addLog(fmt.Sprintf("📥 %v 收走了桌面的牌", takers))

	case protocol.EventReshuffle:
		clear(s.Hints)
		s.addLog("🔀 手牌重新洗牌")

	case protocol.EventPlayerWin:
		var name string
		if err := codec.DecodeInfo(msg, &name); err != nil {
			return err
		}
		s.Winner = name
		s.addLog(fmt.Sprintf("🏆 %s 获胜", name))

	default:
		return fmt.Errorf("unexpected event %s", msg.Type)
	}
	return nil
}

// MyTurn 是否轮到自己出牌
func (s *TableState) MyTurn() bool {
	return s.Started && s.Winner == "" && s.Turn == s.Me
}

// CanSmash 是否可以拍桌
func (s *TableState) CanSmash() bool {
	return s.Started && s.Winner == "" && s.LastCard != nil && !s.Smashed
}

// ReactionTime 从收到最近一张牌到 now 经过的秒数
func (s *TableState) ReactionTime(now time.Time) float64 {
	return now.Sub(s.PlayedAt).Seconds()
}

func (s *TableState) addLog(line string) {
	s.Log = append(s.Log, line)
	if len(s.Log) > maxLogLines {
		s.Log = s.Log[len(s.Log)-maxLogLines:]
	}
}

// symbol 图案名称和图标
func symbol(v int) string {
	c := card.Card(v)
	if !c.Valid() {
		return "-"
	}
	return symbolIcons[c] + " " + c.String()
}
