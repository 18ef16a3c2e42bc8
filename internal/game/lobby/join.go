package lobby

import (
	"log"
	"strings"

	"github.com/palemoky/card-smash/internal/apperrors"
	"github.com/palemoky/card-smash/internal/protocol"
	"github.com/palemoky/card-smash/internal/protocol/codec"
	"github.com/palemoky/card-smash/internal/types"
)

// CheckJoinable 预检能否以 name 加入，规则与 Join 完全一致
func (l *Lobby) CheckJoinable(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.checkJoinable(name)
}

func (l *Lobby) checkJoinable(name string) error {
	switch {
	case l.closed:
		return apperrors.ErrLobbyNotFound
	case l.phase != PhaseJoining:
		return apperrors.ErrLobbyStarted
	case len(l.players) >= l.opts.MaxPlayers:
		return apperrors.ErrLobbyFull
	case l.playerByName(name) != nil:
		return apperrors.ErrNameTaken
	case strings.TrimSpace(name) == "":
		return apperrors.ErrInvalidName
	}
	return nil
}

// Join 入座。新玩家私下收到完整名单，其他玩家收到加入通知。
// 同一连接重复加入视为成功。
func (l *Lobby) Join(conn types.Conn, name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.indexOf(conn) >= 0 {
		return nil
	}
	if err := l.checkJoinable(name); err != nil {
		return err
	}

	l.players = append(l.players, newPlayer(name, conn))

	conn.SendMessage(codec.MustNewMessage(protocol.EventPlayerRoster, l.names()))
	l.broadcastExcept(conn, codec.MustNewMessage(protocol.EventPlayerJoined, name))

	log.Printf("👤 玩家 %s 加入大厅 %s (%d/%d)", name, l.id, len(l.players), l.opts.MaxPlayers)
	l.changed()
	return nil
}

// LeaveResult 离座结果，供注册表决定是否销毁大厅
type LeaveResult struct {
	Removed   bool
	Name      string
	Remaining int
	Started   bool       // 离座时游戏是否已开始
	Last      types.Conn // 仅剩一人时为其连接
}

// Leave 离座。之后的座位前移，当前出牌指针继续指向同一位玩家；
// 若离开的正是出牌者，则轮到顺位的下一位。
func (l *Lobby) Leave(conn types.Conn) LeaveResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.indexOf(conn)
	if l.closed || idx < 0 {
		return LeaveResult{Remaining: len(l.players)}
	}

	name := l.players[idx].Name
	l.players = append(l.players[:idx], l.players[idx+1:]...)
	l.broadcast(codec.MustNewMessage(protocol.EventPlayerLeft, name))

	res := LeaveResult{
		Removed:   true,
		Name:      name,
		Remaining: len(l.players),
		Started:   l.phase != PhaseJoining,
	}
	if res.Remaining == 1 {
		res.Last = l.players[0].Conn
	}

	log.Printf("👋 玩家 %s 离开大厅 %s (剩余 %d)", name, l.id, res.Remaining)

	n := len(l.players)
	if n == 0 {
		l.current = 0
		l.changed()
		return res
	}

	wasCurrent := idx == l.current
	switch {
	case idx < l.current:
		l.current--
	case wasCurrent:
		// 回退一位，下次推进时正好落到顶替该座位的玩家
		l.current = (idx - 1 + n) % n
	}

	if wasCurrent && l.phase == PhaseCard && !l.finished && n >= minActivePlayers {
		l.advanceTurn()
	}
	l.changed()
	return res
}
