package selection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"smartentrance/internal/utils/logger"
)

// redisKV is the subset of *redis.Client the storage needs.
type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RedisStorage persists entries in redis with a sliding TTL, so an abandoned tab's
// selection disappears the way browser session storage does.
type RedisStorage struct {
	client redisKV
	prefix string
	ttl    time.Duration
	log    *logger.Logger
}

func NewRedisStorage(client redisKV, ttl time.Duration) *RedisStorage {
	return &RedisStorage{
		client: client,
		prefix: "selection:",
		ttl:    ttl,
		log:    logger.New("selection_storage"),
	}
}

func (r *RedisStorage) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	if err := r.client.Expire(ctx, r.prefix+key, r.ttl).Err(); err != nil {
		r.log.Warn("failed to refresh ttl for %s: %v", key, err)
	}
	return data, nil
}

func (r *RedisStorage) Write(ctx context.Context, key string, data []byte) error {
	if err := r.client.Set(ctx, r.prefix+key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisStorage) Remove(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
