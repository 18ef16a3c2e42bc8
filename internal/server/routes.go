package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/palemoky/card-smash/internal/apperrors"
	"github.com/palemoky/card-smash/internal/protocol"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

// cors 为所有响应加上 CORS 头，预检请求直接返回 204
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := s.originChecker.AllowOriginHeader(r); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if origin != "*" {
				w.Header().Add("Vary", "Origin")
			}
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// limited 来源验证和按 IP 限流
func (s *Server) limited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientIP := GetClientIP(r)

		if !s.originChecker.Check(r) {
			log.Printf("🚫 来源验证失败: %s (IP: %s)", r.Header.Get("Origin"), clientIP)
			http.Error(w, "Origin not allowed", http.StatusForbidden)
			return
		}

		if !s.rateLimiter.Allow(clientIP) {
			log.Printf("🚫 IP %s 请求过于频繁", clientIP)
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}

		next(w, r)
	}
}

// handleCreateLobby 创建大厅，返回纯文本大厅 ID
func (s *Server) handleCreateLobby(w http.ResponseWriter, r *http.Request) {
	l := s.registry.Create()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(l.ID()))
}

// handleIsJoinable 加入预检，规则与握手一致。可以加入返回 "1"
func (s *Server) handleIsJoinable(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	err := s.registry.CheckJoinable(q.Get("lobbyID"), q.Get("playerName"))
	if err != nil {
		status := http.StatusForbidden
		var je *apperrors.JoinError
		if errors.As(err, &je) {
			status = je.Status
		}
		writeJSON(w, status, protocol.ErrorPayload{Error: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("1"))
}

// handleLeaderboard 排行榜，未启用 Redis 时为空数组
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := defaultLeaderboardLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, protocol.ErrorPayload{Error: "invalid limit"})
			return
		}
		limit = min(n, maxLeaderboardLimit)
	}

	entries := []protocol.LeaderboardEntry{}
	if s.leaderboard != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		top, err := s.leaderboard.Top(ctx, limit)
		if err != nil {
			log.Printf("获取排行榜失败: %v", err)
			writeJSON(w, http.StatusInternalServerError, protocol.ErrorPayload{Error: "leaderboard unavailable"})
			return
		}
		if top != nil {
			entries = top
		}
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleHealth 健康检查接口
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("写入响应失败: %v", err)
	}
}
