package apperrors

import (
	"net/http"

	"github.com/palemoky/card-smash/internal/protocol"
)

// JoinError 加入大厅被拒绝（预检接口与握手共用）
type JoinError struct {
	Code   int    // WebSocket 关闭码
	Status int    // HTTP 状态码
	Reason string // 发给被拒连接的原因
}

func (e *JoinError) Error() string {
	return e.Reason
}

// 预定义错误
var (
	ErrLobbyNotFound = &JoinError{Code: protocol.CloseCodeRejected, Status: http.StatusNotFound, Reason: "lobby not found"}
	ErrLobbyStarted  = &JoinError{Code: protocol.CloseCodeRejected, Status: http.StatusForbidden, Reason: "lobby already started"}
	ErrLobbyFull     = &JoinError{Code: protocol.CloseCodeRejected, Status: http.StatusForbidden, Reason: "lobby full"}
	ErrNameTaken     = &JoinError{Code: protocol.CloseCodeRejected, Status: http.StatusForbidden, Reason: "username already taken"}
	ErrInvalidName   = &JoinError{Code: protocol.CloseCodeRejected, Status: http.StatusBadRequest, Reason: "invalid username"}
)
