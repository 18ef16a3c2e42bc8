package types

import (
	"github.com/palemoky/card-smash/internal/protocol"
)

// Conn 不透明的连接句柄，由传输层持有。
// 大厅只把它当作身份键（按引用比较）和发送目标使用。
type Conn interface {
	GetID() string
	// SendMessage 不得阻塞调用方，单个连接的失败不能影响其他连接
	SendMessage(msg *protocol.Message)
	// CloseWithReason 发送关闭帧并断开连接
	CloseWithReason(code int, reason string)
}
