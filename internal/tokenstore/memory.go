package tokenstore

import (
	"context"
	"sync"
	"time"

	"github.com/okarpov/blogapi/internal/apperrors"
)

type memoryEntry struct {
	email     string
	expiresAt time.Time
}

// MemoryStore keeps refresh tokens in a process-local map. Expired
// entries are dropped lazily on read; call Cleanup periodically to
// reclaim entries that are never read again.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
	}
}

func (s *MemoryStore) Save(ctx context.Context, token string, email string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[token] = memoryEntry{email: email, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[token]
	if !ok {
		return "", apperrors.ErrRefreshTokenNotFound
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.entries, token)
		return "", apperrors.ErrRefreshTokenNotFound
	}

	return entry.email, nil
}

func (s *MemoryStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, token)
	return nil
}

// Cleanup removes expired entries
func (s *MemoryStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for token, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, token)
		}
	}
}
