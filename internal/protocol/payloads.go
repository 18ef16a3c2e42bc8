package protocol

// HiddenCount 剩余手牌超过 4 张时的占位符
const HiddenCount = "?"

// CardPlayedPayload 出牌广播
type CardPlayedPayload struct {
	Name         string `json:"name"`
	Card         int    `json:"card"`
	CurrentMascy int    `json:"currentMascy"` // 本轮目标图案
	Num          string `json:"num"`          // 剩余手牌数，或 "?"
}

// ErrorPayload HTTP 预检失败响应
type ErrorPayload struct {
	Error string `json:"error"`
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank  int    `json:"rank"`
	Name  string `json:"name"`
	Score int    `json:"score"`
	Wins  int    `json:"wins"`
	Games int    `json:"games"`
}
