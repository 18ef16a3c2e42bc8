package server

import (
	"context"
	"log"
	"runtime"
	"time"

	"github.com/palemoky/card-smash/internal/protocol"
)

const monitorInterval = 30 * time.Second

// monitorStats 定期监控服务器状态
func (s *Server) monitorStats() {
	ticker := time.NewTicker(monitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopMonitor:
			return
		case <-ticker.C:
		}

		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		log.Printf("📊 [监控] 在线: %d | 大厅: %d | 进行中: %d | Goroutines: %d | 活跃连接: %d/%d | 内存: %.2f MB",
			s.GetOnlineCount(),
			s.registry.Count(),
			s.registry.ActiveGames(),
			runtime.NumGoroutine(),
			len(s.semaphore),
			s.maxConnections,
			float64(m.Alloc)/1024/1024)
	}
}

// Shutdown 优雅关闭：停止接受新请求，解散所有大厅，断开所有连接，关闭 Redis
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.stopOnce.Do(func() {
		log.Println("🔧 服务器正在关闭...")
		close(s.stopMonitor)

		if s.httpServer != nil {
			err = s.httpServer.Shutdown(ctx)
		}

		// 先解散大厅，断开连接时不再广播离开
		activeGames := s.registry.ActiveGames()
		if activeGames > 0 {
			log.Printf("⚠️ 仍有 %d 局游戏进行中，强制结束", activeGames)
		}
		s.registry.CloseAll()

		s.clientsMu.RLock()
		for _, client := range s.clients {
			client.CloseWithReason(protocol.CloseCodeShutdown, protocol.CloseReasonShutdown)
		}
		s.clientsMu.RUnlock()

		s.rateLimiter.Stop()

		if s.redis != nil {
			_ = s.redis.Close()
		}

		log.Println("服务器已关闭")
	})
	return err
}
