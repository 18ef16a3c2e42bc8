package lobby

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/palemoky/card-smash/internal/game/card"
	"github.com/palemoky/card-smash/internal/server/storage"
	"github.com/palemoky/card-smash/internal/types"
)

const (
	DefaultMaxPlayers  = 8
	DefaultMinPlayers  = 2
	DefaultSmashWindow = 2 * time.Second

	// minActivePlayers 开局后少于该人数时大厅由注册表销毁，与 MinPlayers（开局门槛）无关
	minActivePlayers = 2
)

// Scheduler 延迟一次性执行 f，不支持取消
type Scheduler func(d time.Duration, f func())

// AfterFunc 基于 time.AfterFunc 的默认调度器
func AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// Options 大厅参数
type Options struct {
	MaxPlayers  int
	MinPlayers  int
	SmashWindow time.Duration
	Rand        *rand.Rand // 仅在持有大厅锁时使用，不可跨大厅共享
	Schedule    Scheduler
	Now         func() time.Time

	// 钩子在持有大厅锁时调用，不得阻塞或回调大厅
	OnChange func(data *storage.LobbyData)
	OnWin    func(lobbyID, winner string, players []string)
}

func (o Options) withDefaults() Options {
	if o.MaxPlayers <= 0 {
		o.MaxPlayers = DefaultMaxPlayers
	}
	if o.MinPlayers <= 0 {
		o.MinPlayers = DefaultMinPlayers
	}
	if o.SmashWindow <= 0 {
		o.SmashWindow = DefaultSmashWindow
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if o.Schedule == nil {
		o.Schedule = AfterFunc
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Lobby 一局游戏。所有状态变更都在 mu 保护下进行，
// 客户端请求和拍桌计时器回调因此互斥。
type Lobby struct {
	id        string
	createdAt time.Time
	opts      Options

	players  []*Player   // 座位顺序
	table    []card.Card // 桌面牌堆
	phase    Phase
	current  int       // 当前出牌座位
	target   card.Card // 本轮目标图案，开局前为 -1
	round    uint64    // 出牌轮次，用于识别过期计时器
	finished bool      // 已有人获胜
	closed   bool      // 已被注册表销毁

	mu sync.Mutex
}

// New 创建空大厅
func New(id string, opts Options) *Lobby {
	opts = opts.withDefaults()
	return &Lobby{
		id:        id,
		createdAt: opts.Now(),
		opts:      opts,
		phase:     PhaseJoining,
		target:    -1,
	}
}

// ID 大厅 ID
func (l *Lobby) ID() string {
	return l.id
}

// Phase 当前阶段
func (l *Lobby) Phase() Phase {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.phase
}

// Started 是否已开局
func (l *Lobby) Started() bool {
	return l.Phase() != PhaseJoining
}

// Finished 是否已有人获胜
func (l *Lobby) Finished() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.finished
}

// Len 在座人数
func (l *Lobby) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.players)
}

// PlayerNames 按座位顺序返回玩家昵称
func (l *Lobby) PlayerNames() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.names()
}

// Close 标记大厅已销毁，之后所有请求和计时器回调都是空操作
func (l *Lobby) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
}

// closeIfEmpty 没有玩家时关闭大厅。检查和关闭在同一次加锁内完成，
// 此后的 Join 一定失败。
func (l *Lobby) closeIfEmpty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || len(l.players) > 0 {
		return false
	}
	l.closed = true
	return true
}

func (l *Lobby) names() []string {
	names := make([]string, len(l.players))
	for i, p := range l.players {
		names[i] = p.Name
	}
	return names
}

// indexOf 按连接身份查找座位
func (l *Lobby) indexOf(conn types.Conn) int {
	for i, p := range l.players {
		if p.Conn == conn {
			return i
		}
	}
	return -1
}

func (l *Lobby) playerByName(name string) *Player {
	for _, p := range l.players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// changed 通知外部快照已变化
func (l *Lobby) changed() {
	if l.closed || l.opts.OnChange == nil {
		return
	}
	l.opts.OnChange(l.toLobbyData())
}
