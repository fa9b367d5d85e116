package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ratelimit:"

// RedisLimiter keeps the window counter in Redis: the key TTL is the
// window, so an elapsed window simply disappears and the next request
// starts a fresh one.
type RedisLimiter struct {
	client *redis.Client
}

func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{client: client}
}

func (l *RedisLimiter) Allow(ctx context.Context, id string, max int, window time.Duration) (bool, error) {
	key := redisKeyPrefix + id

	count, err := l.client.Get(ctx, key).Int()

	switch {
	case errors.Is(err, redis.Nil):
		// First request in the window
		err = l.client.Set(ctx, key, 1, window).Err()
		if err != nil {
			return false, fmt.Errorf("redis error: %w", err)
		}
		return true, nil
	case err != nil:
		return false, fmt.Errorf("redis error: %w", err)
	}

	if count >= max {
		return false, nil
	}

	err = l.client.Incr(ctx, key).Err()
	if err != nil {
		return false, fmt.Errorf("redis error: %w", err)
	}

	return true, nil
}
