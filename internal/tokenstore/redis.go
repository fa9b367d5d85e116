package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okarpov/blogapi/internal/apperrors"
)

const redisKeyPrefix = "refresh:"

// RedisStore keeps refresh tokens in Redis with native TTL eviction, so
// sessions survive service restarts.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, token string, email string, ttl time.Duration) error {
	err := s.client.Set(ctx, redisKeyPrefix+token, email, ttl).Err()
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}

	return nil
}

func (s *RedisStore) Get(ctx context.Context, token string) (string, error) {
	email, err := s.client.Get(ctx, redisKeyPrefix+token).Result()

	switch {
	case err == nil:
		return email, nil
	case errors.Is(err, redis.Nil):
		return "", apperrors.ErrRefreshTokenNotFound
	default:
		return "", fmt.Errorf("redis error: %w", err)
	}
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	err := s.client.Del(ctx, redisKeyPrefix+token).Err()
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}

	return nil
}
