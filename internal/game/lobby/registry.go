package lobby

import (
	"context"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/palemoky/card-smash/internal/apperrors"
	"github.com/palemoky/card-smash/internal/protocol"
	"github.com/palemoky/card-smash/internal/server/storage"
	"github.com/palemoky/card-smash/internal/types"
)

const (
	// DefaultIdleTimeout 创建后一直没人加入的大厅在此之后删除
	DefaultIdleTimeout = 10 * time.Second

	storeTimeout = 3 * time.Second
)

// Store 大厅快照存储
type Store interface {
	SaveLobby(ctx context.Context, data *storage.LobbyData) error
	DeleteLobby(ctx context.Context, id string) error
}

// ResultRecorder 战绩记录
type ResultRecorder interface {
	RecordResult(ctx context.Context, winner string, players []string) error
}

// RegistryConfig 注册表配置
type RegistryConfig struct {
	Lobby       Options        // 每个大厅的参数模板
	IdleTimeout time.Duration  // 空大厅过期时间
	Store       Store          // 可为 nil
	Results     ResultRecorder // 可为 nil
	Schedule    Scheduler
	Rand        *rand.Rand
}

// Registry 大厅注册表：按 ID 查找大厅，负责创建、过期和销毁
type Registry struct {
	cfg     RegistryConfig
	lobbies map[string]*Lobby
	rng     *rand.Rand // 受 mu 保护
	writes  writeQueue
	mu      sync.RWMutex
}

// NewRegistry 创建注册表
func NewRegistry(cfg RegistryConfig) *Registry {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Schedule == nil {
		cfg.Schedule = AfterFunc
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Registry{
		cfg:     cfg,
		lobbies: make(map[string]*Lobby),
		rng:     cfg.Rand,
	}
}

// Create 创建空大厅并安排空闲过期
func (r *Registry) Create() *Lobby {
	r.mu.Lock()
	id := r.generateID()
	opts := r.cfg.Lobby
	opts.Rand = rand.New(rand.NewPCG(r.rng.Uint64(), r.rng.Uint64()))
	opts.Schedule = r.cfg.Schedule
	opts.OnChange = r.persist
	opts.OnWin = r.recordWin
	l := New(id, opts)
	r.lobbies[id] = l
	r.mu.Unlock()

	r.persist(l.Snapshot())
	r.cfg.Schedule(r.cfg.IdleTimeout, func() { r.expire(l) })

	log.Printf("🏠 大厅 %s 已创建", id)
	return l
}

// generateID 生成未被占用的 ID，调用方需持有写锁
func (r *Registry) generateID() string {
	for {
		id := newLobbyID(r.rng)
		if _, exists := r.lobbies[id]; !exists {
			return id
		}
	}
}

// Get 按 ID 查找大厅
func (r *Registry) Get(id string) *Lobby {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lobbies[id]
}

// Count 大厅数量
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.lobbies)
}

// ActiveGames 进行中（已开局且未分出胜负）的大厅数量
func (r *Registry) ActiveGames() int {
	r.mu.RLock()
	lobbies := make([]*Lobby, 0, len(r.lobbies))
	for _, l := range r.lobbies {
		lobbies = append(lobbies, l)
	}
	r.mu.RUnlock()

	count := 0
	for _, l := range lobbies {
		if l.Started() && !l.Finished() {
			count++
		}
	}
	return count
}

// CheckJoinable 预检，规则与 Join 相同
func (r *Registry) CheckJoinable(id, name string) error {
	l := r.Get(id)
	if l == nil {
		return apperrors.ErrLobbyNotFound
	}
	return l.CheckJoinable(name)
}

// Join 以 name 加入大厅
func (r *Registry) Join(id string, conn types.Conn, name string) (*Lobby, error) {
	l := r.Get(id)
	if l == nil {
		return nil, apperrors.ErrLobbyNotFound
	}
	if err := l.Join(conn, name); err != nil {
		return nil, err
	}
	return l, nil
}

// Disconnect 连接断开时调用。大厅空了就销毁；已开局且只剩一人时，
// 关闭最后一个连接并销毁大厅。
func (r *Registry) Disconnect(l *Lobby, conn types.Conn) {
	if l == nil {
		return
	}
	res := l.Leave(conn)
	if !res.Removed {
		return
	}

	switch {
	case res.Remaining == 0:
		r.destroy(l)
	case res.Remaining == 1 && res.Started:
		r.destroy(l)
		res.Last.CloseWithReason(protocol.CloseCodeNormal, protocol.CloseReasonNotEnoughPlayers)
	}
}

// Delete 按 ID 销毁大厅
func (r *Registry) Delete(id string) {
	if l := r.Get(id); l != nil {
		r.destroy(l)
	}
}

// CloseAll 销毁所有大厅（服务器关闭时）
func (r *Registry) CloseAll() {
	r.mu.Lock()
	lobbies := r.lobbies
	r.lobbies = make(map[string]*Lobby)
	r.mu.Unlock()

	for id, l := range lobbies {
		l.Close()
		r.forget(id)
	}
}

func (r *Registry) destroy(l *Lobby) {
	r.mu.Lock()
	if cur, ok := r.lobbies[l.ID()]; ok && cur == l {
		delete(r.lobbies, l.ID())
	}
	r.mu.Unlock()

	l.Close()
	r.forget(l.ID())
	log.Printf("🏠 大厅 %s 已解散", l.ID())
}

// expire 空闲过期。大厅已被销毁或已有玩家时什么也不做。
func (r *Registry) expire(l *Lobby) {
	r.mu.Lock()
	cur, ok := r.lobbies[l.ID()]
	if !ok || cur != l || !l.closeIfEmpty() {
		r.mu.Unlock()
		return
	}
	delete(r.lobbies, l.ID())
	r.mu.Unlock()

	r.forget(l.ID())
	log.Printf("⌛ 大厅 %s 无人加入，已过期", l.ID())
}

// persist 排队保存快照（在大厅锁内被调用，不能阻塞）
func (r *Registry) persist(data *storage.LobbyData) {
	if r.cfg.Store == nil || data == nil {
		return
	}
	r.writes.push(func(ctx context.Context) {
		if r.Get(data.ID) == nil {
			return
		}
		if err := r.cfg.Store.SaveLobby(ctx, data); err != nil {
			log.Printf("保存大厅 %s 快照失败: %v", data.ID, err)
		}
	})
}

// forget 排在该大厅所有快照之后删除
func (r *Registry) forget(id string) {
	if r.cfg.Store == nil {
		return
	}
	r.writes.push(func(ctx context.Context) {
		if err := r.cfg.Store.DeleteLobby(ctx, id); err != nil {
			log.Printf("删除大厅 %s 快照失败: %v", id, err)
		}
	})
}

func (r *Registry) recordWin(lobbyID, winner string, players []string) {
	if r.cfg.Results == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := r.cfg.Results.RecordResult(ctx, winner, players); err != nil {
			log.Printf("记录大厅 %s 战绩失败: %v", lobbyID, err)
		}
	}()
}
