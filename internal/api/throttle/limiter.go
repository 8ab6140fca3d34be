package throttle

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Limiter decides whether one more attempt is allowed for identifier.
type Limiter interface {
	Allow(ctx context.Context, identifier string) (bool, error)
}

type Limit struct {
	Window      time.Duration // e.g., 15 minutes
	MaxAttempts int           // max attempts per window
}

// RedisLimiter is a sliding-window limiter shared by every gateway instance.
type RedisLimiter struct {
	redis *redis.Client
	name  string
	limit Limit
}

func NewRedisLimiter(client *redis.Client, name string, limit Limit) *RedisLimiter {
	return &RedisLimiter{
		redis: client,
		name:  name,
		limit: limit,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, identifier string) (bool, error) {
	key := fmt.Sprintf("rate_limit:%s:%s", l.name, identifier)

	pipe := l.redis.Pipeline()
	now := time.Now()
	windowStart := now.Add(-l.limit.Window).UnixMilli()

	// Remove old entries
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))

	// Count current window
	pipe.ZCard(ctx, key)

	// Add new entry; members must be unique or attempts in the same instant collapse
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixMilli()), Member: uuid.NewString()})

	// Set expiration
	pipe.Expire(ctx, key, l.limit.Window*2)

	results, err := pipe.Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("redis pipeline error: %w", err)
	}

	count := results[1].(*redis.IntCmd).Val()
	return count < int64(l.limit.MaxAttempts), nil
}

// MemoryLimiter is a per-process token bucket per identifier.
type MemoryLimiter struct {
	mu       sync.Mutex
	limit    Limit
	limiters map[string]*rate.Limiter
}

func NewMemoryLimiter(limit Limit) *MemoryLimiter {
	return &MemoryLimiter{limit: limit, limiters: make(map[string]*rate.Limiter)}
}

func (m *MemoryLimiter) Allow(_ context.Context, identifier string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.limiters[identifier]
	if !ok {
		every := m.limit.Window / time.Duration(max(m.limit.MaxAttempts, 1))
		l = rate.NewLimiter(rate.Every(every), m.limit.MaxAttempts)
		m.limiters[identifier] = l
	}
	return l.Allow(), nil
}
