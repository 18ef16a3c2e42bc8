package codec

import (
	"bytes"
	"sync"

	"github.com/palemoky/card-smash/internal/protocol"
)

// maxPooledBuffer caps the capacity of buffers kept for reuse. A lobby
// roster or card frame is well under 1 KiB; anything larger is dropped so
// one oversized frame does not pin memory.
const maxPooledBuffer = 64 << 10

// pool is a typed sync.Pool that resets values on return.
type pool[T any] struct {
	p     sync.Pool
	reset func(T) bool // false discards the value
}

func newPool[T any](alloc func() T, reset func(T) bool) *pool[T] {
	return &pool[T]{
		p:     sync.Pool{New: func() any { return alloc() }},
		reset: reset,
	}
}

func (p *pool[T]) get() T {
	return p.p.Get().(T)
}

func (p *pool[T]) put(v T) {
	if p.reset(v) {
		p.p.Put(v)
	}
}

var (
	messages = newPool(
		func() *protocol.Message { return &protocol.Message{} },
		func(m *protocol.Message) bool {
			if m == nil {
				return false
			}
			m.Type = 0
			m.Info = nil
			return true
		},
	)

	buffers = newPool(
		func() *bytes.Buffer { return new(bytes.Buffer) },
		func(b *bytes.Buffer) bool {
			if b == nil || b.Cap() > maxPooledBuffer {
				return false
			}
			b.Reset()
			return true
		},
	)
)

// GetMessage returns an empty Message for decoding into.
func GetMessage() *protocol.Message {
	return messages.get()
}

// PutMessage hands a decoded Message back once its handler returned.
// The caller must not keep references to msg or msg.Info.
func PutMessage(msg *protocol.Message) {
	messages.put(msg)
}

// GetBuffer returns an empty encode buffer.
func GetBuffer() *bytes.Buffer {
	return buffers.get()
}

// PutBuffer recycles buf unless it grew past maxPooledBuffer.
func PutBuffer(buf *bytes.Buffer) {
	buffers.put(buf)
}
