package protocol

import "encoding/json"

// Message 消息信封，双向通用
type Message struct {
	Type EventType       `json:"messageType"`
	Info json.RawMessage `json:"info"`
}

// EventType 事件码（整数，顺序即线上取值，不可调整）
type EventType int

const (
	EventPlayerJoined EventType = iota // 服务端：有玩家加入
	EventPlayerLeft                    // 服务端：有玩家离开
	EventStartGame                     // 客户端：开始游戏
	EventGameStarted                   // 服务端：游戏已开始
	EventPlayerTurn                    // 服务端：轮到某玩家
	EventPlayCard                      // 客户端：出牌
	EventCardPlayed                    // 服务端：有人出牌
	EventSmash                         // 客户端：拍桌
	EventCardsAwarded                  // 服务端：有人收牌
	EventReshuffle                     // 服务端：重新发牌
	EventPlayerWin                     // 服务端：有人获胜
	EventPlayerRoster                  // 服务端：玩家名单（仅发给新加入者）
)

var eventNames = map[EventType]string{
	EventPlayerJoined: "player_joined",
	EventPlayerLeft:   "player_left",
	EventStartGame:    "start_game",
	EventGameStarted:  "game_started",
	EventPlayerTurn:   "player_turn",
	EventPlayCard:     "play_card",
	EventCardPlayed:   "card_played",
	EventSmash:        "smash",
	EventCardsAwarded: "cards_awarded",
	EventReshuffle:    "reshuffle",
	EventPlayerWin:    "player_win",
	EventPlayerRoster: "player_roster",
}

func (t EventType) String() string {
	if name, ok := eventNames[t]; ok {
		return name
	}
	return "unknown"
}

// IsClientEvent 是否为客户端可发送的事件
func (t EventType) IsClientEvent() bool {
	switch t {
	case EventStartGame, EventPlayCard, EventSmash:
		return true
	}
	return false
}
