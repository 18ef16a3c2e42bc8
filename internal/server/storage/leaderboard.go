package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/card-smash/internal/protocol"
)

const (
	// Redis key
	playerStatsKey   = "player:stats:"
	leaderboardKey   = "leaderboard:score"
	dailyLeaderboard = "leaderboard:daily:"
)

// 积分规则
const (
	WinPoints  = 20
	LosePoints = -5

	// 连胜加成
	StreakBonus3 = 5
	StreakBonus5 = 10
)

// PlayerStats 玩家统计（按昵称）
type PlayerStats struct {
	Name          string `json:"name"`
	TotalGames    int    `json:"total_games"`
	Wins          int    `json:"wins"`
	Losses        int    `json:"losses"`
	Score         int    `json:"score"`
	CurrentStreak int    `json:"current_streak"` // 正数为连胜，负数为连败
	MaxWinStreak  int    `json:"max_win_streak"`
	LastPlayedAt  int64  `json:"last_played_at"`
	CreatedAt     int64  `json:"created_at"`
}

// Leaderboard 排行榜
type Leaderboard struct {
	redis *redis.Client
	now   func() time.Time
}

// NewLeaderboard 创建排行榜
func NewLeaderboard(client *redis.Client) *Leaderboard {
	return &Leaderboard{redis: client, now: time.Now}
}

// GetPlayerStats 获取玩家统计，不存在返回 nil, nil
func (lb *Leaderboard) GetPlayerStats(ctx context.Context, name string) (*PlayerStats, error) {
	data, err := lb.redis.Get(ctx, playerStatsKey+name).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var stats PlayerStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (lb *Leaderboard) savePlayerStats(ctx context.Context, stats *PlayerStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return lb.redis.Set(ctx, playerStatsKey+stats.Name, data, 0).Err()
}

// RecordResult 记录一局结果：赢家胜一场，其余玩家负一场
func (lb *Leaderboard) RecordResult(ctx context.Context, winner string, players []string) error {
	for _, name := range players {
		if err := lb.recordPlayer(ctx, name, name == winner); err != nil {
			return fmt.Errorf("记录 %s 战绩失败: %w", name, err)
		}
	}
	return nil
}

func (lb *Leaderboard) recordPlayer(ctx context.Context, name string, isWinner bool) error {
	stats, err := lb.GetPlayerStats(ctx, name)
	if err != nil {
		return err
	}
	now := lb.now()
	if stats == nil {
		stats = &PlayerStats{Name: name, CreatedAt: now.Unix()}
	}

	stats.TotalGames++
	stats.LastPlayedAt = now.Unix()

	change := LosePoints
	if isWinner {
		stats.Wins++
		stats.CurrentStreak = max(1, stats.CurrentStreak+1)
		change = WinPoints + streakBonus(stats.CurrentStreak)
	} else {
		stats.Losses++
		stats.CurrentStreak = min(-1, stats.CurrentStreak-1)
	}
	stats.MaxWinStreak = max(stats.MaxWinStreak, stats.CurrentStreak)
	stats.Score = max(0, stats.Score+change)

	if err := lb.savePlayerStats(ctx, stats); err != nil {
		return err
	}
	return lb.updateRanking(ctx, stats)
}

func streakBonus(streak int) int {
	switch {
	case streak >= 5:
		return StreakBonus5
	case streak >= 3:
		return StreakBonus3
	default:
		return 0
	}
}

// updateRanking 更新总榜和日榜
func (lb *Leaderboard) updateRanking(ctx context.Context, stats *PlayerStats) error {
	z := redis.Z{Score: float64(stats.Score), Member: stats.Name}

	pipe := lb.redis.TxPipeline()
	pipe.ZAdd(ctx, leaderboardKey, z)
	dailyKey := dailyLeaderboard + lb.now().Format("2006-01-02")
	pipe.ZAdd(ctx, dailyKey, z)
	// 日榜保留 2 天
	pipe.Expire(ctx, dailyKey, 48*time.Hour)
	_, err := pipe.Exec(ctx)
	return err
}

// Top 获取总榜前 limit 名（积分从高到低）
func (lb *Leaderboard) Top(ctx context.Context, limit int) ([]protocol.LeaderboardEntry, error) {
	if limit <= 0 {
		return []protocol.LeaderboardEntry{}, nil
	}

	results, err := lb.redis.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]protocol.LeaderboardEntry, 0, len(results))
	for i, result := range results {
		name, ok := result.Member.(string)
		if !ok {
			continue
		}
		stats, err := lb.GetPlayerStats(ctx, name)
		if err != nil || stats == nil {
			continue
		}
		entries = append(entries, protocol.LeaderboardEntry{
			Rank:  i + 1,
			Name:  name,
			Score: int(result.Score),
			Wins:  stats.Wins,
			Games: stats.TotalGames,
		})
	}
	return entries, nil
}

// GetPlayerRank 获取玩家排名，未上榜返回 -1
func (lb *Leaderboard) GetPlayerRank(ctx context.Context, name string) (int64, error) {
	rank, err := lb.redis.ZRevRank(ctx, leaderboardKey, name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return -1, nil
		}
		return -1, err
	}
	return rank + 1, nil // Redis 排名从 0 开始
}
