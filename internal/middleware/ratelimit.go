// ===========================================
// Package middleware - Rate Limiting
// ===========================================
// Fixed one-minute windows counted per client.
//
// HOW IT WORKS:
// 1. Key = "ratelimit:{identifier}:{minute}"
// 2. INCR key → get current count
// 3. If count == 1, set expiry to the window size
// 4. If count > limit, reject with 429
//
// Redis shares the windows across instances. Without Redis each
// instance counts on its own.
// ===========================================

package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rdrlink/shortener/internal/database"
	"github.com/rdrlink/shortener/internal/models"
)

// WindowCounter increments the request count stored under key, starting a
// new window of the given size on the first hit. *database.RedisDB and
// *MemoryCounter implement it.
type WindowCounter interface {
	IncrementRateLimit(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimiter is the middleware for rate limiting.
type RateLimiter struct {
	counter      WindowCounter
	defaultLimit int
	windowSize   time.Duration
	scope        string
	logger       *zap.Logger
}

// NewRateLimiter creates a new rate limiter middleware.
func NewRateLimiter(counter WindowCounter, defaultLimit int, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		counter:      counter,
		defaultLimit: defaultLimit,
		windowSize:   time.Minute,
		logger:       logger,
	}
}

// Scoped returns a limiter whose windows are counted apart from rl's.
func (rl *RateLimiter) Scoped(scope string) *RateLimiter {
	scoped := *rl
	scoped.scope = scope
	return &scoped
}

// Middleware returns the Gin middleware handler.
// Authenticated callers are counted by key with the key's own limit;
// everyone else by client IP.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := rl.defaultLimit
		identifier := ClientIP(c)

		if key := GetAPIKeyFromContext(c); key != nil {
			identifier = key.ID.String()
			if key.RateLimit > 0 {
				limit = key.RateLimit
			}
		}

		window := time.Now().Truncate(rl.windowSize)
		counted := identifier
		if rl.scope != "" {
			counted = rl.scope + ":" + identifier
		}
		key := database.RateLimitKey(counted, window)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		count, err := rl.counter.IncrementRateLimit(ctx, key, rl.windowSize)
		if err != nil {
			// Fail open.
			rl.logger.Warn("rate limit check failed", zap.String("identifier", identifier), zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(max(0, limit-int(count))))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(window.Add(rl.windowSize).Unix(), 10))

		if int(count) > limit {
			retryAfter := int(time.Until(window.Add(rl.windowSize)).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{
				Error:   "Rate limit exceeded",
				Code:    models.ErrCodeRateLimited,
				Details: "Try again in " + strconv.Itoa(retryAfter) + " seconds",
			})
			return
		}

		c.Next()
	}
}

// ClientIP returns the originating client address: the first
// X-Forwarded-For entry, then X-Real-IP, then the peer address.
//
// SECURITY NOTE:
// X-Forwarded-For can be spoofed! Only trust it behind a proxy that
// overwrites it.
func ClientIP(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if realIP := strings.TrimSpace(c.GetHeader("X-Real-IP")); realIP != "" {
		return realIP
	}

	return c.ClientIP()
}

// ===========================================
// In-memory counter
// ===========================================

type memoryWindow struct {
	count     int64
	expiresAt time.Time
}

// MemoryCounter is a process-local WindowCounter used when Redis is not
// configured.
type MemoryCounter struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

// NewMemoryCounter creates a counter that drops expired windows every
// cleanupInterval.
func NewMemoryCounter(cleanupInterval time.Duration) *MemoryCounter {
	m := &MemoryCounter{
		windows: make(map[string]*memoryWindow),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go m.cleanupLoop(cleanupInterval)
	}
	return m
}

// IncrementRateLimit implements WindowCounter.
func (m *MemoryCounter) IncrementRateLimit(_ context.Context, key string, window time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w, ok := m.windows[key]
	if !ok || !now.Before(w.expiresAt) {
		w = &memoryWindow{expiresAt: now.Add(window)}
		m.windows[key] = w
	}
	w.count++
	return w.count, nil
}

// Close stops the cleanup goroutine.
func (m *MemoryCounter) Close() {
	m.once.Do(func() { close(m.stop) })
}

func (m *MemoryCounter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *MemoryCounter) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for key, w := range m.windows {
		if !now.Before(w.expiresAt) {
			delete(m.windows, key)
		}
	}
}
