// ===========================================
// Package database - Redis Connection
// ===========================================
// Redis backs three concerns:
// 1. The link cache (see linkcache.go)
// 2. Rate limiting counters
// 3. Distributed locks for scheduled jobs
// ===========================================

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rdrlink/shortener/internal/config"
)

// RedisDB wraps the Redis client with application-specific methods.
type RedisDB struct {
	Client *redis.Client
}

// NewRedisDB creates a new Redis connection.
// It validates the connection before returning.
func NewRedisDB(ctx context.Context, cfg config.RedisConfig) (*RedisDB, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// Apply additional configuration (only if set, don't overwrite URL values)
	if cfg.Password != "" {
		opt.Password = cfg.Password
	}
	if cfg.DB != 0 {
		opt.DB = cfg.DB
	}
	if cfg.PoolSize > 0 {
		opt.PoolSize = cfg.PoolSize
	}
	if cfg.MinIdleConns > 0 {
		opt.MinIdleConns = cfg.MinIdleConns
	}

	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &RedisDB{Client: client}, nil
}

// Close gracefully shuts down the Redis connection.
func (r *RedisDB) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

// Health checks if Redis is responsive.
func (r *RedisDB) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.Client.Ping(ctx).Err()
}

// ===========================================
// RATE LIMITING OPERATIONS
// ===========================================
// Fixed one-minute windows implemented with INCR + EXPIRE.
// 1. Key = "ratelimit:{client}:{minute}"
// 2. INCR key (atomic increment)
// 3. If first request, set expiry to the window size
// 4. If count > limit, reject request

// RateLimitKey generates a key for rate limiting.
// Pattern: "ratelimit:{identifier}:{window}"
func RateLimitKey(identifier string, window time.Time) string {
	return fmt.Sprintf("ratelimit:%s:%d", identifier, window.Unix()/60)
}

// IncrementRateLimit increments the rate limit counter and returns the new count.
func (r *RedisDB) IncrementRateLimit(ctx context.Context, key string, windowSize time.Duration) (int64, error) {
	count, err := r.Client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("rate limit incr failed: %w", err)
	}

	// Only the first request of a window sets the expiry.
	if count == 1 {
		if err := r.Client.Expire(ctx, key, windowSize).Err(); err != nil {
			return count, fmt.Errorf("rate limit expire failed: %w", err)
		}
	}

	return count, nil
}
