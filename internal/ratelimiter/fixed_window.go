package ratelimiter

import (
	"sync"
	"time"
)

const sweepThreshold = 1024

type window struct {
	start time.Time
	count int
}

// FixedWindowRateLimiter allows limit requests per key in each window. Windows
// start at a key's first request and are reset lazily.
type FixedWindowRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*window
	limit   int
	size    time.Duration
	now     func() time.Time
}

func NewFixedWindowLimiter(limit int, size time.Duration) *FixedWindowRateLimiter {
	return &FixedWindowRateLimiter{
		clients: make(map[string]*window),
		limit:   limit,
		size:    size,
		now:     time.Now,
	}
}

func (rl *FixedWindowRateLimiter) Allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.clients[key]
	if !ok || now.Sub(w.start) >= rl.size {
		if len(rl.clients) >= sweepThreshold {
			rl.sweep(now)
		}
		w = &window{start: now}
		rl.clients[key] = w
	}

	if w.count >= rl.limit {
		return false, w.start.Add(rl.size).Sub(now)
	}
	w.count++
	return true, 0
}

func (rl *FixedWindowRateLimiter) sweep(now time.Time) {
	for k, w := range rl.clients {
		if now.Sub(w.start) >= rl.size {
			delete(rl.clients, k)
		}
	}
}
