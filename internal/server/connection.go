package server

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/palemoky/card-smash/internal/apperrors"
)

// handleJoinLobby 升级为 WebSocket 并入座。被拒绝时先发送原因文本再关闭
func (s *Server) handleJoinLobby(w http.ResponseWriter, r *http.Request) {
	clientIP := GetClientIP(r)
	lobbyID := r.URL.Query().Get("lobbyID")
	playerName := r.URL.Query().Get("playerName")

	// 连接数限制检查
	select {
	case s.semaphore <- struct{}{}:
	default:
		log.Printf("🚫 达到最大连接数限制 (%d), IP: %s", s.maxConnections, clientIP)
		http.Error(w, "Server Full", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		<-s.semaphore
		log.Printf("WebSocket 升级失败: %v", err)
		return
	}

	client := NewClient(s, conn, playerName, clientIP)
	l, err := s.registry.Join(lobbyID, client, playerName)
	if err != nil {
		<-s.semaphore
		reject(conn, err)
		log.Printf("🚫 玩家 %q 加入大厅 %s 被拒绝: %v (IP: %s)", playerName, lobbyID, err, clientIP)
		return
	}
	client.lobby = l
	s.registerClient(client)

	log.Printf("✅ 玩家 %s (%s) 已连接到大厅 %s", client.Name, client.ID, lobbyID)

	// 启动客户端读写协程
	go client.WritePump()
	go client.ReadPump()
}

// reject 写入拒绝原因和关闭帧，然后断开（此时读写协程尚未启动）
func reject(conn *websocket.Conn, err error) {
	code := websocket.CloseInternalServerErr
	var je *apperrors.JoinError
	if errors.As(err, &je) {
		code = je.Code
	}
	reason := err.Error()

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.TextMessage, []byte(reason))
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
	_ = conn.Close()
}

// registerClient 注册客户端
func (s *Server) registerClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[client.ID] = client
}

// unregisterClient 注销客户端并释放连接名额
func (s *Server) unregisterClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	if _, ok := s.clients[client.ID]; ok {
		delete(s.clients, client.ID)
		<-s.semaphore
		log.Printf("❌ 玩家 %s (%s) 已断开", client.Name, client.ID)
	}
}

// GetOnlineCount 在线连接数
func (s *Server) GetOnlineCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}
