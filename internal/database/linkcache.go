package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/cache/v9"

	"github.com/rdrlink/shortener/internal/models"
)

// go-redis/cache rounds TTLs below one second up to an hour.
const minLinkCacheTTL = time.Second

// LinkCache is a two-tier (in-process TinyLFU + Redis) cache of resolved
// links keyed by domain and short code.
type LinkCache struct {
	cache *cache.Cache
	ttl   time.Duration
	now   func() time.Time
}

// linkEntry is the cached value. A nil Link records that the domain has
// no link with the code.
type linkEntry struct {
	Link *models.Link
}

// NewLinkCache builds a cache over rdb. localSize 0 disables the
// in-process tier.
func NewLinkCache(rdb *RedisDB, localSize int, ttl time.Duration) *LinkCache {
	opts := &cache.Options{Redis: rdb.Client}
	if localSize > 0 {
		opts.LocalCache = cache.NewTinyLFU(localSize, time.Minute)
	}
	return newLinkCache(opts, ttl)
}

func newLinkCache(opts *cache.Options, ttl time.Duration) *LinkCache {
	return &LinkCache{
		cache: cache.New(opts),
		ttl:   ttl,
		now:   time.Now,
	}
}

// LinkCacheKey is the cache key of a link.
// Pattern: "link:{domain}:{shortCode}"
func LinkCacheKey(domain, shortCode string) string {
	return fmt.Sprintf("link:%s:%s", domain, shortCode)
}

// Get returns the cached entry. found is false on a miss; a found entry
// with a nil link is an absent marker.
func (c *LinkCache) Get(ctx context.Context, domain, shortCode string) (*models.Link, bool, error) {
	var entry linkEntry
	err := c.cache.Get(ctx, LinkCacheKey(domain, shortCode), &entry)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("link cache get: %w", err)
	}
	return entry.Link, true, nil
}

// Set caches link under its own domain. The entry never outlives the
// link's expiry; links about to expire are not cached at all.
func (c *LinkCache) Set(ctx context.Context, link *models.Link) error {
	ttl := c.ttl
	if link.ExpiresAt != nil {
		if remaining := link.ExpiresAt.Sub(c.now()); remaining < ttl {
			ttl = remaining
		}
	}
	if ttl < minLinkCacheTTL {
		return nil
	}
	return c.set(ctx, LinkCacheKey(link.Domain, link.ShortCode), linkEntry{Link: link}, ttl)
}

// SetAbsent records that domain holds no link with shortCode. Creating
// such a link must Delete the marker.
func (c *LinkCache) SetAbsent(ctx context.Context, domain, shortCode string) error {
	return c.set(ctx, LinkCacheKey(domain, shortCode), linkEntry{}, c.ttl)
}

func (c *LinkCache) set(ctx context.Context, key string, entry linkEntry, ttl time.Duration) error {
	err := c.cache.Set(&cache.Item{
		Ctx:   ctx,
		Key:   key,
		Value: &entry,
		TTL:   ttl,
	})
	if err != nil {
		return fmt.Errorf("link cache set: %w", err)
	}
	return nil
}

// Delete evicts an entry from both tiers.
func (c *LinkCache) Delete(ctx context.Context, domain, shortCode string) error {
	err := c.cache.Delete(ctx, LinkCacheKey(domain, shortCode))
	if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		return fmt.Errorf("link cache delete: %w", err)
	}
	return nil
}
