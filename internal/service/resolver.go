package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rdrlink/shortener/internal/metrics"
	"github.com/rdrlink/shortener/internal/models"
	"github.com/rdrlink/shortener/internal/repository"
)

// Resolver finds the link for a (short code, domain) pair. A link on the
// request domain wins over one on the primary domain.
//
// PERFORMANCE CRITICAL: called on every redirect.
// 1. Check cache first (sub-ms)
// 2. Only hit the DB on a miss
type Resolver struct {
	links         LinkStore
	cache         LinkCache
	primaryDomain string
	logger        *zap.Logger
	now           func() time.Time
}

// NewResolver creates a resolver. cache may be nil.
func NewResolver(links LinkStore, cache LinkCache, primaryDomain string, logger *zap.Logger) *Resolver {
	return &Resolver{
		links:         links,
		cache:         cache,
		primaryDomain: primaryDomain,
		logger:        logger,
		now:           time.Now,
	}
}

// Resolve returns the link or ErrLinkNotFound / ErrLinkExpired. The
// domain should already be normalized.
func (r *Resolver) Resolve(ctx context.Context, shortCode, domain string) (*models.Link, error) {
	domains := []string{domain}
	if domain != r.primaryDomain {
		domains = append(domains, r.primaryDomain)
	}

	link := r.fromCache(ctx, shortCode, domains)

	if link == nil {
		var err error
		link, err = r.links.FindByCode(ctx, shortCode, domains)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLinkNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve link: %w", err)
		}
		r.store(ctx, link, domains)
	}

	if link.IsExpiredAt(r.now()) {
		return nil, ErrLinkExpired
	}
	return link, nil
}

// Invalidate drops a link from the cache.
func (r *Resolver) Invalidate(ctx context.Context, link *models.Link) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Delete(ctx, link.Domain, link.ShortCode); err != nil {
		r.logger.Warn("link cache invalidation failed",
			zap.String("domain", link.Domain), zap.String("short_code", link.ShortCode), zap.Error(err))
	}
}

// fromCache walks domains in precedence order. A domain cached as absent
// passes the lookup on to the next one; any miss or error falls back to
// the database. A cache outage degrades to database lookups.
func (r *Resolver) fromCache(ctx context.Context, shortCode string, domains []string) *models.Link {
	if r.cache == nil {
		return nil
	}
	for _, domain := range domains {
		link, found, err := r.cache.Get(ctx, domain, shortCode)
		switch {
		case err != nil:
			metrics.LinkCacheLookupsTotal.WithLabelValues("error").Inc()
			r.logger.Warn("link cache read failed", zap.String("short_code", shortCode), zap.Error(err))
			return nil
		case !found:
			metrics.LinkCacheLookupsTotal.WithLabelValues("miss").Inc()
			return nil
		case link != nil:
			metrics.LinkCacheLookupsTotal.WithLabelValues("hit").Inc()
			return link
		}
	}
	metrics.LinkCacheLookupsTotal.WithLabelValues("miss").Inc()
	return nil
}

// store caches link under its own domain and marks every domain that
// precedes it as absent, so the next lookup through those hosts is served
// from the cache too.
func (r *Resolver) store(ctx context.Context, link *models.Link, domains []string) {
	if r.cache == nil {
		return
	}
	for _, domain := range domains {
		if domain == link.Domain {
			break
		}
		if err := r.cache.SetAbsent(ctx, domain, link.ShortCode); err != nil {
			r.logger.Warn("link cache write failed", zap.String("short_code", link.ShortCode), zap.Error(err))
			return
		}
	}
	if err := r.cache.Set(ctx, link); err != nil {
		r.logger.Warn("link cache write failed", zap.String("short_code", link.ShortCode), zap.Error(err))
	}
}
