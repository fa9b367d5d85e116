package blacklist

import (
	"context"
	"sync"
	"time"
)

// MemoryBlacklist keeps revoked tokens in a process-local map. Entries
// past their expiry are treated as absent and dropped lazily on read;
// Cleanup reclaims the rest.
type MemoryBlacklist struct {
	mu      sync.RWMutex
	blocked map[string]time.Time
}

func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{
		blocked: make(map[string]time.Time),
	}
}

func (b *MemoryBlacklist) Block(ctx context.Context, token string, expiresAt time.Time) error {
	if !expiresAt.After(time.Now()) {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.blocked[token] = expiresAt
	return nil
}

func (b *MemoryBlacklist) IsBlocked(ctx context.Context, token string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	expiresAt, ok := b.blocked[token]
	if !ok {
		return false, nil
	}
	if time.Now().After(expiresAt) {
		delete(b.blocked, token)
		return false, nil
	}

	return true, nil
}

// Cleanup removes entries whose protection window has passed
func (b *MemoryBlacklist) Cleanup() {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	for token, expiresAt := range b.blocked {
		if now.After(expiresAt) {
			delete(b.blocked, token)
		}
	}
}
