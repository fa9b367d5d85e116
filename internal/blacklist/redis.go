package blacklist

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "blacklist:"

// RedisBlacklist stores revoked tokens with a TTL equal to the token's
// remaining lifetime; Redis evicts entries on its own.
type RedisBlacklist struct {
	client *redis.Client
}

func NewRedisBlacklist(client *redis.Client) *RedisBlacklist {
	return &RedisBlacklist{client: client}
}

func (b *RedisBlacklist) Block(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	err := b.client.Set(ctx, redisKeyPrefix+token, "blocked", ttl).Err()
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}

	return nil
}

func (b *RedisBlacklist) IsBlocked(ctx context.Context, token string) (bool, error) {
	n, err := b.client.Exists(ctx, redisKeyPrefix+token).Result()
	if err != nil {
		return false, fmt.Errorf("redis error: %w", err)
	}

	return n > 0, nil
}
