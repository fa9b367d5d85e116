package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	startedAt time.Time
	count     int
}

// MemoryLimiter counts requests per identifier in a process-local map
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		windows: make(map[string]*window),
	}
}

func (l *MemoryLimiter) Allow(ctx context.Context, id string, max int, windowSize time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()

	w, ok := l.windows[id]
	if !ok || now.Sub(w.startedAt) >= windowSize {
		// First request of a fresh window, prior count is discarded
		l.windows[id] = &window{startedAt: now, count: 1}
		return true, nil
	}

	if w.count >= max {
		return false, nil
	}

	w.count++
	return true, nil
}

// Cleanup removes windows that elapsed longer ago than maxAge
func (l *MemoryLimiter) Cleanup(maxAge time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for id, w := range l.windows {
		if now.Sub(w.startedAt) >= maxAge {
			delete(l.windows, id)
		}
	}
}
