package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/palemoky/card-smash/internal/protocol"
)

// ErrInvalidTimestamp 拍桌时间戳无法解析
var ErrInvalidTimestamp = errors.New("invalid smash timestamp")

// emptyInfo 无负载事件的 info 字段（与旧客户端兼容，发送空字符串）
var emptyInfo = json.RawMessage(`""`)

// NewMessage 创建消息，info 为 nil 时写入空字符串
func NewMessage(t protocol.EventType, info any) (*protocol.Message, error) {
	if info == nil {
		return &protocol.Message{Type: t, Info: emptyInfo}, nil
	}
	raw, err := marshal(info)
	if err != nil {
		return nil, fmt.Errorf("encode %s info: %w", t, err)
	}
	return &protocol.Message{Type: t, Info: raw}, nil
}

// marshal 与 json.Marshal 相同，但不转义 HTML 字符（玩家名原样下发）
func marshal(v any) ([]byte, error) {
	buf := GetBuffer()
	defer PutBuffer(buf)

	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	out := bytes.TrimRight(buf.Bytes(), "\n")
	data := make([]byte, len(out))
	copy(data, out)
	return data, nil
}

// MustNewMessage 创建消息，编码失败时 panic（仅用于服务端内部固定结构）
func MustNewMessage(t protocol.EventType, info any) *protocol.Message {
	msg, err := NewMessage(t, info)
	if err != nil {
		panic(err)
	}
	return msg
}

// Encode 序列化消息为文本帧
func Encode(msg *protocol.Message) ([]byte, error) {
	data, err := marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	return data, nil
}

// Decode 解析文本帧。消息取自对象池，处理完后可用 PutMessage 归还
func Decode(data []byte) (*protocol.Message, error) {
	msg := GetMessage()
	if err := json.Unmarshal(data, msg); err != nil {
		PutMessage(msg)
		return nil, fmt.Errorf("decode message: %w", err)
	}
	return msg, nil
}

// DecodeInfo 解析 info 字段到 v
func DecodeInfo(msg *protocol.Message, v any) error {
	if len(msg.Info) == 0 {
		return fmt.Errorf("decode %s info: empty", msg.Type)
	}
	if err := json.Unmarshal(msg.Info, v); err != nil {
		return fmt.Errorf("decode %s info: %w", msg.Type, err)
	}
	return nil
}

// DecodeTimestamp 解析拍桌时间戳，接受数字字符串或 JSON 数字
func DecodeTimestamp(info json.RawMessage) (float64, error) {
	var s string
	if err := json.Unmarshal(info, &s); err != nil {
		var f float64
		if err := json.Unmarshal(info, &f); err != nil {
			return 0, ErrInvalidTimestamp
		}
		return checkTimestamp(f)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, ErrInvalidTimestamp
	}
	return checkTimestamp(f)
}

// 0 表示"未拍桌"，因此有效时间戳必须为正的有限数
func checkTimestamp(f float64) (float64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0, ErrInvalidTimestamp
	}
	return f, nil
}
