//go:build !production

package testutil

import (
	"sync"
	"time"
)

// ManualScheduler 手动触发的调度器，替代 time.AfterFunc
type ManualScheduler struct {
	mu    sync.Mutex
	tasks []ScheduledTask
}

// ScheduledTask 一个待执行任务
type ScheduledTask struct {
	Delay time.Duration
	Fn    func()
}

// Schedule 符合 lobby.Scheduler 签名
func (s *ManualScheduler) Schedule(d time.Duration, f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, ScheduledTask{Delay: d, Fn: f})
}

// Pending 待执行任务数
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Delays 待执行任务的延迟
func (s *ManualScheduler) Delays() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Duration, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Delay
	}
	return out
}

// RunNext 执行最早登记的任务，没有任务返回 false
func (s *ManualScheduler) RunNext() bool {
	s.mu.Lock()
	if len(s.tasks) == 0 {
		s.mu.Unlock()
		return false
	}
	task := s.tasks[0]
	s.tasks = s.tasks[1:]
	s.mu.Unlock()

	task.Fn()
	return true
}

// RunAll 执行当前所有任务（执行期间新登记的任务留到下次）
func (s *ManualScheduler) RunAll() int {
	s.mu.Lock()
	tasks := s.tasks
	s.tasks = nil
	s.mu.Unlock()

	for _, t := range tasks {
		t.Fn()
	}
	return len(tasks)
}
