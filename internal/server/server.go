package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/palemoky/card-smash/internal/config"
	"github.com/palemoky/card-smash/internal/game/lobby"
	"github.com/palemoky/card-smash/internal/server/storage"
)

// Server HTTP + WebSocket 服务器
type Server struct {
	config      *config.Config
	redis       *redis.Client // 未启用时为 nil
	leaderboard *storage.Leaderboard
	registry    *lobby.Registry
	handler     *Handler
	clients     map[string]*Client
	clientsMu   sync.RWMutex
	upgrader    websocket.Upgrader
	httpServer  *http.Server

	// 安全组件
	rateLimiter   *RateLimiter
	originChecker *OriginChecker

	// 连接控制
	maxConnections int
	semaphore      chan struct{} // 信号量控制并发连接数

	stopMonitor chan struct{}
	stopOnce    sync.Once
}

// NewServer 创建服务器实例。配置了 Redis 时先测试连接
func NewServer(cfg *config.Config) (*Server, error) {
	var rdb *redis.Client
	if cfg.Redis.Enabled() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis 连接失败: %w", err)
		}
	}
	return New(cfg, rdb), nil
}

// New 用已有的 Redis 客户端（可为 nil）创建服务器
func New(cfg *config.Config, rdb *redis.Client) *Server {
	s := &Server{
		config:  cfg,
		redis:   rdb,
		handler: NewHandler(),
		clients: make(map[string]*Client),
		// 初始化安全组件
		rateLimiter: NewRateLimiter(
			cfg.Security.RateLimit.MaxPerSecond,
			cfg.Security.RateLimit.MaxPerMinute,
			cfg.Security.RateLimit.BanDurationTime(),
		),
		originChecker: NewOriginChecker(cfg.Security.AllowedOrigins),
		// 初始化连接控制
		maxConnections: cfg.Server.MaxConnections,
		semaphore:      make(chan struct{}, cfg.Server.MaxConnections),
		stopMonitor:    make(chan struct{}),
	}

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.originChecker.Check,
	}

	regCfg := lobby.RegistryConfig{
		Lobby: lobby.Options{
			MaxPlayers:  cfg.Game.MaxPlayers,
			MinPlayers:  cfg.Game.MinPlayers,
			SmashWindow: cfg.Game.SmashWindow(),
		},
		IdleTimeout: cfg.Game.LobbyIdleTimeoutDuration(),
	}
	if rdb != nil {
		s.leaderboard = storage.NewLeaderboard(rdb)
		regCfg.Store = storage.NewRedisStore(rdb)
		regCfg.Results = s.leaderboard
	}
	s.registry = lobby.NewRegistry(regCfg)

	log.Printf("🔒 安全配置: 连接限制=%d/s %d/min, 最大连接数=%d, Redis=%v",
		cfg.Security.RateLimit.MaxPerSecond, cfg.Security.RateLimit.MaxPerMinute,
		cfg.Server.MaxConnections, rdb != nil)

	return s
}

// Registry 大厅注册表
func (s *Server) Registry() *lobby.Registry {
	return s.registry
}

// Handler 返回带 CORS 和限流的路由
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /createLobby", s.limited(s.handleCreateLobby))
	mux.HandleFunc("GET /isJoinable", s.limited(s.handleIsJoinable))
	mux.HandleFunc("GET /joinLobby", s.limited(s.handleJoinLobby))
	mux.HandleFunc("GET /leaderboard", s.limited(s.handleLeaderboard))
	mux.HandleFunc("GET /health", s.handleHealth)
	return s.cors(mux)
}

// Start 启动服务器，阻塞直到 Shutdown
func (s *Server) Start() error {
	addr := s.config.Server.Addr()

	// 启动监控 goroutine
	go s.monitorStats()

	log.Printf("🚀 服务器启动在 http://%s (CPU核心数: %d)", addr, runtime.NumCPU())
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second, // 防止 Slowloris 攻击
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
