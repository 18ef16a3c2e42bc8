package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key 前缀
	lobbyKeyPrefix = "lobby:"

	// 大厅快照过期时间
	lobbyExpiration = 2 * time.Hour
)

// LobbyData 大厅快照（仅用于观察，不用于重启恢复）
type LobbyData struct {
	ID            string       `json:"id"`
	Phase         int          `json:"phase"`
	Players       []PlayerData `json:"players"`
	TableSize     int          `json:"table_size"`
	CurrentPlayer int          `json:"current_player"`
	Target        int          `json:"target"`
	Finished      bool         `json:"finished"`
	CreatedAt     int64        `json:"created_at"`
}

// PlayerData 玩家快照
type PlayerData struct {
	Name  string `json:"name"`
	Cards int    `json:"cards"`
}

// RedisStore Redis 存储
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// SaveLobby 保存大厅快照
func (rs *RedisStore) SaveLobby(ctx context.Context, data *LobbyData) error {
	if data == nil {
		return nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("序列化大厅数据失败: %w", err)
	}

	return rs.client.Set(ctx, lobbyKeyPrefix+data.ID, jsonData, lobbyExpiration).Err()
}

// LoadLobby 读取大厅快照，不存在时返回 nil, nil
func (rs *RedisStore) LoadLobby(ctx context.Context, id string) (*LobbyData, error) {
	data, err := rs.client.Get(ctx, lobbyKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var lobbyData LobbyData
	if err := json.Unmarshal(data, &lobbyData); err != nil {
		return nil, fmt.Errorf("反序列化大厅数据失败: %w", err)
	}

	return &lobbyData, nil
}

// DeleteLobby 删除大厅快照
func (rs *RedisStore) DeleteLobby(ctx context.Context, id string) error {
	return rs.client.Del(ctx, lobbyKeyPrefix+id).Err()
}

// ListLobbyIDs 列出所有大厅 ID
func (rs *RedisStore) ListLobbyIDs(ctx context.Context) ([]string, error) {
	var (
		ids    []string
		cursor uint64
	)
	for {
		keys, next, err := rs.client.Scan(ctx, cursor, lobbyKeyPrefix+"*", 100).Result()
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			ids = append(ids, key[len(lobbyKeyPrefix):])
		}
		if next == 0 {
			return ids, nil
		}
		cursor = next
	}
}
