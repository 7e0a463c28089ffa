package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// RateLimiter defines an interface for rate limiting functionality
type RateLimiter interface {
	// Allow checks if the request should be allowed based on the key
	Allow(ctx context.Context, key string) (bool, int, time.Time, error)
	// Reset resets the counter for a specific key
	Reset(ctx context.Context, key string) error
	// WithLimit creates a new rate limiter with the specified limit
	WithLimit(maxAttempts int64, window time.Duration) RateLimiter
}

// RedisRateLimiter implements fixed-window rate limiting using Redis
type RedisRateLimiter struct {
	client      *redis.Client
	prefix      string
	window      time.Duration
	maxAttempts int64
}

// NewRedisRateLimiter creates a new rate limiter using Redis
func NewRedisRateLimiter(client *redis.Client, window time.Duration, maxAttempts int64) *RedisRateLimiter {
	return &RedisRateLimiter{
		client:      client,
		prefix:      "resumehub:ratelimit:",
		window:      window,
		maxAttempts: maxAttempts,
	}
}

// WithLimit creates a new rate limiter with the specified limit
func (rl *RedisRateLimiter) WithLimit(maxAttempts int64, window time.Duration) RateLimiter {
	return &RedisRateLimiter{
		client:      rl.client,
		prefix:      rl.prefix,
		window:      window,
		maxAttempts: maxAttempts,
	}
}

// Allow checks if the request should be allowed based on the key
func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, int, time.Time, error) {
	redisKey := fmt.Sprintf("%s%s", rl.prefix, key)
	windowStart := time.Now().Truncate(rl.window)

	pipe := rl.client.Pipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireAt(ctx, redisKey, windowStart.Add(rl.window))

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, fmt.Errorf("rate limiter error: %w", err)
	}

	return decide(incr.Val(), rl.maxAttempts, windowStart.Add(rl.window))
}

// Reset resets the counter for a specific key
func (rl *RedisRateLimiter) Reset(ctx context.Context, key string) error {
	return rl.client.Del(ctx, rl.prefix+key).Err()
}

// MemoryRateLimiter is the single-process limiter used when Redis is disabled.
type MemoryRateLimiter struct {
	mu          *sync.Mutex
	counters    map[string]*windowCounter
	window      time.Duration
	maxAttempts int64
	now         func() time.Time
}

type windowCounter struct {
	start time.Time
	count int64
}

func NewMemoryRateLimiter(window time.Duration, maxAttempts int64) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		mu:          &sync.Mutex{},
		counters:    make(map[string]*windowCounter),
		window:      window,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

func (rl *MemoryRateLimiter) WithLimit(maxAttempts int64, window time.Duration) RateLimiter {
	return &MemoryRateLimiter{
		mu:          rl.mu,
		counters:    make(map[string]*windowCounter),
		window:      window,
		maxAttempts: maxAttempts,
		now:         rl.now,
	}
}

func (rl *MemoryRateLimiter) Allow(_ context.Context, key string) (bool, int, time.Time, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	windowStart := rl.now().Truncate(rl.window)
	c, ok := rl.counters[key]
	if !ok || !c.start.Equal(windowStart) {
		c = &windowCounter{start: windowStart}
		rl.counters[key] = c
	}
	c.count++

	return decide(c.count, rl.maxAttempts, windowStart.Add(rl.window))
}

func (rl *MemoryRateLimiter) Reset(_ context.Context, key string) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.counters, key)
	return nil
}

func decide(count, maxAttempts int64, reset time.Time) (bool, int, time.Time, error) {
	remaining := maxAttempts - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= maxAttempts, int(remaining), reset, nil
}
