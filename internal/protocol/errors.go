package protocol

// WebSocket 关闭码
const (
	CloseCodeNormal   = 1000 // 正常关闭（对局人数不足）
	CloseCodeRejected = 1007 // 拒绝加入
	CloseCodeShutdown = 1001 // 服务器关闭
)

// 关闭原因
const (
	CloseReasonNotEnoughPlayers = "not enough players"
	CloseReasonShutdown         = "server shutting down"
)
