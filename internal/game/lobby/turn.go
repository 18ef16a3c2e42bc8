package lobby

import (
	"log"
	"strconv"

	"github.com/palemoky/card-smash/internal/game/card"
	"github.com/palemoky/card-smash/internal/protocol"
	"github.com/palemoky/card-smash/internal/protocol/codec"
	"github.com/palemoky/card-smash/internal/types"
)

// revealThreshold 手牌不超过该数量时公开出牌后的剩余张数
const revealThreshold = 4

// Start 开始游戏。任一在座玩家都可发起，要求至少 MinPlayers 人且尚未开局，否则忽略。
func (l *Lobby) Start(conn types.Conn) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || l.phase != PhaseJoining || len(l.players) < l.opts.MinPlayers {
		return
	}
	if l.indexOf(conn) < 0 {
		return
	}

	l.deal()
	l.broadcast(codec.MustNewMessage(protocol.EventGameStarted, nil))

	l.current = l.opts.Rand.IntN(len(l.players))
	l.advanceTurn()

	log.Printf("🎮 大厅 %s 开局，%d 名玩家", l.id, len(l.players))
	l.changed()
}

// PlayCard 当前玩家出最前面的一张牌，进入拍桌窗口。
// 非当前玩家或非出牌阶段的请求直接忽略。
func (l *Lobby) PlayCard(conn types.Conn) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || l.finished || l.phase != PhaseCard || len(l.players) == 0 {
		return
	}
	p := l.players[l.current]
	if p.Conn != conn {
		return
	}

	num := protocol.HiddenCount
	if p.Hand.Len() <= revealThreshold {
		num = strconv.Itoa(p.Hand.Len() - 1)
	}
	c, ok := p.Hand.PopFront()
	if !ok {
		return
	}
	l.table = append(l.table, c)

	l.broadcast(codec.MustNewMessage(protocol.EventCardPlayed, protocol.CardPlayedPayload{
		Name:         p.Name,
		Card:         int(c),
		CurrentMascy: int(l.target),
		Num:          num,
	}))

	l.phase = PhaseSmash
	l.round++
	round := l.round
	l.opts.Schedule(l.opts.SmashWindow, func() { l.resolveRound(round) })
	l.changed()
}

// Smash 记录拍桌时间戳。每人每轮只记第一次，任何在座玩家都可拍。
func (l *Lobby) Smash(conn types.Conn, timestamp float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || l.finished || l.phase != PhaseSmash || timestamp <= 0 {
		return
	}
	idx := l.indexOf(conn)
	if idx < 0 {
		return
	}
	p := l.players[idx]
	if p.HasReacted() {
		return
	}
	p.SmashTime = timestamp
}

// resolveRound 拍桌窗口结束。过期的计时器（大厅已销毁、已有人获胜或轮次不符）不做任何事。
func (l *Lobby) resolveRound(round uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || l.finished || l.phase != PhaseSmash || round != l.round || len(l.players) == 0 {
		return
	}

	reactions := make([]float64, len(l.players))
	for i, p := range l.players {
		reactions[i] = p.SmashTime
	}
	res := ResolveSmash(l.table, l.target, reactions)

	if len(res.Recipients) > 0 {
		takers := make([]string, 0, len(res.Recipients))
		for _, i := range res.Recipients {
			l.players[i].Hand.Take(l.table)
			takers = append(takers, l.players[i].Name)
		}
		l.table = nil
		l.broadcast(codec.MustNewMessage(protocol.EventCardsAwarded, takers))
	}

	for _, p := range l.players {
		p.SmashTime = 0
	}

	if res.Correct {
		if winner := l.emptyHanded(); winner != nil {
			l.declareWinner(winner)
			return
		}
	}

	if len(l.players) < minActivePlayers {
		// 人数不足，等待注册表销毁
		l.changed()
		return
	}
	l.advanceTurn()
	l.changed()
}

func (l *Lobby) emptyHanded() *Player {
	for _, p := range l.players {
		if p.Hand.IsEmpty() {
			return p
		}
	}
	return nil
}

// declareWinner 广播获胜并停止状态机，大厅停留在拍桌阶段直到被销毁
func (l *Lobby) declareWinner(winner *Player) {
	l.finished = true
	l.broadcast(codec.MustNewMessage(protocol.EventPlayerWin, winner.Name))

	log.Printf("🏆 大厅 %s 结束，获胜者: %s", l.id, winner.Name)

	if l.opts.OnWin != nil {
		l.opts.OnWin(l.id, winner.Name, l.names())
	}
	l.changed()
}

// advanceTurn 顺时针找下一个有牌的座位。一整圈都没人有牌时重新发牌后继续找。
// 找到后目标图案前进一位，广播轮到谁，进入出牌阶段。
func (l *Lobby) advanceTurn() {
	n := len(l.players)
	if n == 0 || card.DealCount(n) == 0 {
		return
	}

	lap := 0
	for {
		l.current = (l.current + 1) % n
		if !l.players[l.current].Hand.IsEmpty() {
			break
		}
		lap++
		if lap > n {
			l.deal()
			l.broadcast(codec.MustNewMessage(protocol.EventReshuffle, nil))
			log.Printf("🔀 大厅 %s 所有玩家无牌，重新发牌", l.id)
			lap = 0
		}
	}

	l.target = l.target.Next()
	l.broadcast(codec.MustNewMessage(protocol.EventPlayerTurn, l.players[l.current].Name))
	l.phase = PhaseCard
}

// deal 重新洗一副牌并按座位发牌，余牌丢弃
func (l *Lobby) deal() {
	hands := card.Deal(len(l.players), l.opts.Rand)
	for i, p := range l.players {
		p.Hand = hands[i]
	}
}
