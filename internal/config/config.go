package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix 环境变量前缀，如 SMASH_SERVER_PORT
const EnvPrefix = "SMASH_"

const (
	defaultHost             = "0.0.0.0"
	defaultPort             = 6464
	defaultMaxConnections   = 1000
	defaultSmashWindowMS    = 2000
	defaultLobbyIdleTimeout = 10 // 秒
	defaultMaxPlayers       = 8
	defaultMinPlayers       = 2
	defaultShutdownTimeout  = 10 // 秒
	defaultMaxPerSecond     = 10
	defaultMaxPerMinute     = 60
	defaultBanDuration      = 60 // 秒

	// 发牌表支持的人数范围
	playersLowerBound = 2
	playersUpperBound = 8
)

// Config 服务端配置
type Config struct {
	Server   ServerConfig   `yaml:"server" envPrefix:"SERVER_"`
	Redis    RedisConfig    `yaml:"redis" envPrefix:"REDIS_"`
	Game     GameConfig     `yaml:"game" envPrefix:"GAME_"`
	Security SecurityConfig `yaml:"security" envPrefix:"SECURITY_"`
}

// ServerConfig HTTP/WebSocket 服务器配置
type ServerConfig struct {
	Host           string `yaml:"host" env:"HOST"`
	Port           int    `yaml:"port" env:"PORT"`
	MaxConnections int    `yaml:"max_connections" env:"MAX_CONNECTIONS"`
}

// Addr 监听地址
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// RedisConfig Redis 配置，Addr 为空时不启用
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
}

// Enabled 是否启用 Redis
func (c *RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// GameConfig 游戏配置
type GameConfig struct {
	SmashWindowMS    int `yaml:"smash_window_ms" env:"SMASH_WINDOW_MS"`       // 拍桌窗口（毫秒）
	LobbyIdleTimeout int `yaml:"lobby_idle_timeout" env:"LOBBY_IDLE_TIMEOUT"` // 空大厅过期（秒）
	MaxPlayers       int `yaml:"max_players" env:"MAX_PLAYERS"`
	MinPlayers       int `yaml:"min_players" env:"MIN_PLAYERS"`
	ShutdownTimeout  int `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"` // 优雅关闭超时（秒）
}

// SmashWindow 返回拍桌窗口时长
func (c *GameConfig) SmashWindow() time.Duration {
	return time.Duration(c.SmashWindowMS) * time.Millisecond
}

// LobbyIdleTimeoutDuration 返回空大厅过期时长
func (c *GameConfig) LobbyIdleTimeoutDuration() time.Duration {
	return time.Duration(c.LobbyIdleTimeout) * time.Second
}

// ShutdownTimeoutDuration 返回优雅关闭超时时长
func (c *GameConfig) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Second
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" env:"ALLOWED_ORIGINS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envPrefix:"RATE_LIMIT_"`
}

// RateLimitConfig 每 IP 请求频率限制
type RateLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second" env:"MAX_PER_SECOND"`
	MaxPerMinute int `yaml:"max_per_minute" env:"MAX_PER_MINUTE"`
	BanDuration  int `yaml:"ban_duration" env:"BAN_DURATION"` // 封禁时长（秒）
}

// BanDurationTime 返回封禁时长
func (c *RateLimitConfig) BanDurationTime() time.Duration {
	return time.Duration(c.BanDuration) * time.Second
}

// Load 加载配置文件，再用环境变量覆盖
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return finish(cfg)
}

// FromEnv 不使用配置文件，默认值加环境变量
func FromEnv() (*Config, error) {
	return finish(Default())
}

func finish(cfg *Config) (*Config, error) {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults 补齐被显式写成零值的字段
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = defaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if c.Server.MaxConnections == 0 {
		c.Server.MaxConnections = defaultMaxConnections
	}
	if c.Game.SmashWindowMS == 0 {
		c.Game.SmashWindowMS = defaultSmashWindowMS
	}
	if c.Game.LobbyIdleTimeout == 0 {
		c.Game.LobbyIdleTimeout = defaultLobbyIdleTimeout
	}
	if c.Game.MaxPlayers == 0 {
		c.Game.MaxPlayers = defaultMaxPlayers
	}
	if c.Game.MinPlayers == 0 {
		c.Game.MinPlayers = defaultMinPlayers
	}
	if c.Game.ShutdownTimeout == 0 {
		c.Game.ShutdownTimeout = defaultShutdownTimeout
	}
	if len(c.Security.AllowedOrigins) == 0 {
		c.Security.AllowedOrigins = []string{"*"}
	}
}

// Validate 检查取值范围
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.Game.MaxPlayers < playersLowerBound || c.Game.MaxPlayers > playersUpperBound {
		errs = append(errs, fmt.Errorf("game.max_players must be in [%d, %d]: %d",
			playersLowerBound, playersUpperBound, c.Game.MaxPlayers))
	}
	if c.Game.MinPlayers < playersLowerBound || c.Game.MinPlayers > c.Game.MaxPlayers {
		errs = append(errs, fmt.Errorf("game.min_players must be in [%d, max_players]: %d",
			playersLowerBound, c.Game.MinPlayers))
	}
	if c.Game.SmashWindowMS < 0 || c.Game.LobbyIdleTimeout < 0 {
		errs = append(errs, errors.New("game timeouts must not be negative"))
	}
	return errors.Join(errs...)
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           defaultHost,
			Port:           defaultPort,
			MaxConnections: defaultMaxConnections,
		},
		Game: GameConfig{
			SmashWindowMS:    defaultSmashWindowMS,
			LobbyIdleTimeout: defaultLobbyIdleTimeout,
			MaxPlayers:       defaultMaxPlayers,
			MinPlayers:       defaultMinPlayers,
			ShutdownTimeout:  defaultShutdownTimeout,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"*"},
			RateLimit: RateLimitConfig{
				MaxPerSecond: defaultMaxPerSecond,
				MaxPerMinute: defaultMaxPerMinute,
				BanDuration:  defaultBanDuration,
			},
		},
	}
}
