// Package ratelimit bounds how often a user may start ledger mutations.
package ratelimit

import (
	"context"
	"fmt"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"strconv"
	"sync"
	"time"
	"walletledger/internal/app/apperr"
	"walletledger/internal/app/logger"
	"walletledger/internal/app/service"
)

var (
	_ service.RateLimiter = (*Redis)(nil)
	_ service.RateLimiter = (*Memory)(nil)
)

// Redis is a fixed window counter shared by all instances. It fails open when
// redis is unreachable.
type Redis struct {
	rdb    *redis.Client
	prefix string
	limit  int64
	window time.Duration
}

func (r *Redis) LoggerComponent() string {
	return "RateLimit.Redis"
}

func NewRedis(rdb *redis.Client, prefix string, limit int, window time.Duration) *Redis {
	return &Redis{
		rdb:    rdb,
		prefix: prefix,
		limit:  int64(limit),
		window: window,
	}
}

func (r *Redis) key(userID uuid.UUID, action string) string {
	return fmt.Sprintf("%s:%s:%s", r.prefix, action, userID)
}

// Consume implementation of interface service.RateLimiter
func (r *Redis) Consume(ctx context.Context, userID uuid.UUID, action string) error {
	if r.limit <= 0 {
		return nil
	}

	key := r.key(userID, action)

	// the window and its expiry are created together, so a key never outlives it
	pipe := r.rdb.TxPipeline()
	pipe.SetNX(ctx, key, 0, r.window)
	incr := pipe.Incr(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		l := logger.Get(ctx, r)
		l.Warn().Err(err).Str("key", key).Msg("Rate limiter unavailable, letting request through")
		return nil
	}

	if n := incr.Val(); n > r.limit {
		ttl, _ := r.rdb.TTL(ctx, key).Result()
		return apperr.ErrThrottled.With("retry_after", strconv.Itoa(int(ttl.Seconds())))
	}

	return nil
}

// Memory is a per process fixed window counter. Expired windows are dropped
// at most once per window length.
type Memory struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	swept   time.Time
	buckets map[string]*bucket
}

type bucket struct {
	start time.Time
	count int
}

func NewMemory(limit int, window time.Duration) *Memory {
	return &Memory{
		limit:   limit,
		window:  window,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

// Consume implementation of interface service.RateLimiter
func (m *Memory) Consume(ctx context.Context, userID uuid.UUID, action string) error {
	if m.limit <= 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweep(now)
	key := action + ":" + userID.String()

	b, ok := m.buckets[key]
	if !ok || now.Sub(b.start) >= m.window {
		b = &bucket{start: now}
		m.buckets[key] = b
	}

	if b.count >= m.limit {
		retry := b.start.Add(m.window).Sub(now)
		return apperr.ErrThrottled.With("retry_after", strconv.Itoa(int(retry.Seconds())))
	}
	b.count++

	return nil
}

func (m *Memory) sweep(now time.Time) {
	if now.Sub(m.swept) < m.window {
		return
	}
	for key, b := range m.buckets {
		if now.Sub(b.start) >= m.window {
			delete(m.buckets, key)
		}
	}
	m.swept = now
}
