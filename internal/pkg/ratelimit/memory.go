// internal/pkg/ratelimit/memory.go
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/your-org/storefront-backend/internal/pkg/clock"
)

type window struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter keeps windows in process memory. Counts are not shared
// between instances.
type MemoryLimiter struct {
	mu        sync.Mutex
	clock     clock.Clock
	limit     int
	window    time.Duration
	windows   map[string]*window
	lastSweep time.Time
}

func NewMemoryLimiter(clk clock.Clock, limit int, length time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		clock:   clk,
		limit:   limit,
		window:  length,
		windows: make(map[string]*window),
	}
}

// Allow implements Limiter
func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	l.sweep(now)

	w, ok := l.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(l.window)}
		l.windows[key] = w
	}
	w.count++

	return decide(w.count, l.limit, w.resetAt), nil
}

// sweep drops elapsed windows at most once per window length
func (l *MemoryLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	l.lastSweep = now
	for key, w := range l.windows {
		if !now.Before(w.resetAt) {
			delete(l.windows, key)
		}
	}
}
