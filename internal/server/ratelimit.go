package server

import (
	"log"
	"sync"
	"time"
)

const (
	janitorInterval = 5 * time.Minute
	idleTTL         = 10 * time.Minute // 超过该时长没有请求的 IP 记录被清理
)

// window 固定窗口计数规则
type window struct {
	size  time.Duration
	limit int
}

// ipState 单个 IP 的计数，counts/starts 与 RateLimiter.windows 一一对应
type ipState struct {
	counts      []int
	starts      []time.Time
	lastSeen    time.Time
	bannedUntil time.Time
}

// RateLimiter 按 IP 的 HTTP 请求频率限制，任一窗口超限即封禁 ban 时长
type RateLimiter struct {
	windows []window
	ban     time.Duration
	now     func() time.Time

	mu  sync.Mutex
	ips map[string]*ipState

	stop chan struct{}
	once sync.Once
}

// NewRateLimiter 创建限流器。perSecond 或 perMinute 为 0 表示不限制该维度
func NewRateLimiter(perSecond, perMinute int, ban time.Duration) *RateLimiter {
	return newRateLimiter(perSecond, perMinute, ban, time.Now)
}

func newRateLimiter(perSecond, perMinute int, ban time.Duration, now func() time.Time) *RateLimiter {
	rl := &RateLimiter{
		ban:  ban,
		now:  now,
		ips:  make(map[string]*ipState),
		stop: make(chan struct{}),
	}
	for _, w := range []window{{time.Second, perSecond}, {time.Minute, perMinute}} {
		if w.limit > 0 {
			rl.windows = append(rl.windows, w)
		}
	}

	go rl.janitor()
	return rl
}

// Allow 记录一次请求并返回是否放行
func (rl *RateLimiter) Allow(ip string) bool {
	if len(rl.windows) == 0 {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	st, ok := rl.ips[ip]
	if !ok {
		st = &ipState{
			counts: make([]int, len(rl.windows)),
			starts: make([]time.Time, len(rl.windows)),
		}
		for i := range st.starts {
			st.starts[i] = now
		}
		rl.ips[ip] = st
	}
	st.lastSeen = now

	if now.Before(st.bannedUntil) {
		return false
	}

	over := false
	for i, w := range rl.windows {
		if now.Sub(st.starts[i]) >= w.size {
			st.starts[i] = now
			st.counts[i] = 0
		}
		st.counts[i]++
		if st.counts[i] > w.limit {
			over = true
		}
	}

	if over {
		st.bannedUntil = now.Add(rl.ban)
		log.Printf("⚠️ IP %s 请求过于频繁，封禁 %v", ip, rl.ban)
		return false
	}
	return true
}

// IsBanned IP 当前是否处于封禁期
func (rl *RateLimiter) IsBanned(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	st, ok := rl.ips[ip]
	return ok && rl.now().Before(st.bannedUntil)
}

// Stop 停止后台清理
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) janitor() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.prune()
		}
	}
}

// prune 删除长时间没有请求且未被封禁的记录
func (rl *RateLimiter) prune() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for ip, st := range rl.ips {
		if now.Sub(st.lastSeen) > idleTTL && !now.Before(st.bannedUntil) {
			delete(rl.ips, ip)
		}
	}
}
