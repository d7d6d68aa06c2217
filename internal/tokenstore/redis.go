package tokenstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "walletsession:device:"

// RedisStorage keeps one Redis hash per device. HSET and HDEL with several
// fields are single commands, and Update wraps both in a transaction, so
// batches are atomic.
type RedisStorage struct {
	client *redis.Client
	key    string
}

// NewRedisStorage namespaces the device cache under deviceID.
func NewRedisStorage(client *redis.Client, deviceID string) *RedisStorage {
	return &RedisStorage{client: client, key: redisKeyPrefix + deviceID}
}

func (s *RedisStorage) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.HGet(ctx, s.key, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis hget %s: %w", key, err)
	}
	return v, true, nil
}

func (s *RedisStorage) MultiSet(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	if err := s.client.HSet(ctx, s.key, flatten(values)).Err(); err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return nil
}

// Update runs HDEL and HSET inside one MULTI/EXEC transaction.
func (s *RedisStorage) Update(ctx context.Context, set map[string]string, remove []string) error {
	switch {
	case len(remove) == 0:
		return s.MultiSet(ctx, set)
	case len(set) == 0:
		return s.MultiRemove(ctx, remove...)
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, s.key, remove...)
		pipe.HSet(ctx, s.key, flatten(set))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis update: %w", err)
	}
	return nil
}

func flatten(values map[string]string) []string {
	pairs := make([]string, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, k, v)
	}
	return pairs
}

func (s *RedisStorage) MultiRemove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.HDel(ctx, s.key, keys...).Err(); err != nil {
		return fmt.Errorf("redis hdel: %w", err)
	}
	return nil
}
