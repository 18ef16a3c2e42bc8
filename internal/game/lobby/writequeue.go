package lobby

import (
	"context"
	"sync"
)

// writeQueue 按提交顺序逐个执行存储写入。有积压时才启动一个 goroutine，
// 队列清空后退出，因此同一大厅的保存和删除不会乱序。
type writeQueue struct {
	mu      sync.Mutex
	ops     []func(ctx context.Context)
	running bool
	idle    chan struct{} // 队列清空时关闭，仅用于测试等待
}

// push 入队，不阻塞
func (q *writeQueue) push(op func(ctx context.Context)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ops = append(q.ops, op)
	if !q.running {
		q.running = true
		q.idle = make(chan struct{})
		go q.drain()
	}
}

func (q *writeQueue) drain() {
	for {
		q.mu.Lock()
		if len(q.ops) == 0 {
			q.running = false
			close(q.idle)
			q.mu.Unlock()
			return
		}
		op := q.ops[0]
		q.ops[0] = nil
		q.ops = q.ops[1:]
		q.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		op(ctx)
		cancel()
	}
}

// wait 等待当前积压的写入全部完成
func (q *writeQueue) wait() {
	q.mu.Lock()
	idle := q.idle
	running := q.running
	q.mu.Unlock()
	if running {
		<-idle
	}
}
