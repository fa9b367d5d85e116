package blacklist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_MemoryBlacklist(t *testing.T) {
	t.Parallel()

	t.Run("blocked token reported", func(t *testing.T) {
		b := NewMemoryBlacklist()

		require.NoError(t, b.Block(t.Context(), "token-1", time.Now().Add(time.Minute)))

		blocked, err := b.IsBlocked(t.Context(), "token-1")
		require.NoError(t, err)
		assert.True(t, blocked)
	})

	t.Run("unknown token not blocked", func(t *testing.T) {
		b := NewMemoryBlacklist()

		blocked, err := b.IsBlocked(t.Context(), "never-seen")
		require.NoError(t, err)
		assert.False(t, blocked)
	})

	t.Run("already expired token is a no-op", func(t *testing.T) {
		b := NewMemoryBlacklist()

		require.NoError(t, b.Block(t.Context(), "token-1", time.Now().Add(-time.Minute)))

		blocked, err := b.IsBlocked(t.Context(), "token-1")
		require.NoError(t, err)
		assert.False(t, blocked, "entry must never outlive the token's own expiry")
	})

	t.Run("entry expires with the token", func(t *testing.T) {
		b := NewMemoryBlacklist()

		require.NoError(t, b.Block(t.Context(), "token-1", time.Now().Add(10*time.Millisecond)))
		time.Sleep(20 * time.Millisecond)

		blocked, err := b.IsBlocked(t.Context(), "token-1")
		require.NoError(t, err)
		assert.False(t, blocked)
	})

	t.Run("cleanup drops expired entries", func(t *testing.T) {
		b := NewMemoryBlacklist()

		require.NoError(t, b.Block(t.Context(), "stale", time.Now().Add(10*time.Millisecond)))
		require.NoError(t, b.Block(t.Context(), "fresh", time.Now().Add(time.Minute)))
		time.Sleep(20 * time.Millisecond)

		b.Cleanup()

		b.mu.RLock()
		defer b.mu.RUnlock()
		assert.NotContains(t, b.blocked, "stale")
		assert.Contains(t, b.blocked, "fresh")
	})
}
