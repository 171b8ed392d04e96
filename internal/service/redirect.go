package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/rdrlink/shortener/internal/metrics"
	"github.com/rdrlink/shortener/internal/models"
	"github.com/rdrlink/shortener/internal/queue"
)

// Outcome is the result class of a redirect request.
type Outcome string

const (
	OutcomeFound         Outcome = "found"
	OutcomeNotFound      Outcome = "not_found"
	OutcomeExpired       Outcome = "expired"
	OutcomeInternalError Outcome = "internal_error"
)

// Scheduler runs work after the response has been sent.
type Scheduler interface {
	Submit(task queue.Task) bool
}

// RedirectRequest is what the redirect endpoint extracts from HTTP.
type RedirectRequest struct {
	ShortCode string
	Host      string
	RawQuery  string
	ClientIP  string
	UserAgent string
	Referer   string
}

// RedirectResult tells the handler what to send. Location and Link are
// set only for OutcomeFound.
type RedirectResult struct {
	Outcome  Outcome
	Location string
	Link     *models.Link
}

// RedirectService turns a short link visit into a destination URL and
// schedules click recording without waiting for it.
type RedirectService struct {
	resolver      *Resolver
	recorder      *ClickRecorder
	scheduler     Scheduler
	primaryDomain string
	prefixMatch   bool
	logger        *zap.Logger
}

// NewRedirectService wires the redirect flow.
func NewRedirectService(resolver *Resolver, recorder *ClickRecorder, scheduler Scheduler, primaryDomain string, utmPrefixMatch bool, logger *zap.Logger) *RedirectService {
	return &RedirectService{
		resolver:      resolver,
		recorder:      recorder,
		scheduler:     scheduler,
		primaryDomain: primaryDomain,
		prefixMatch:   utmPrefixMatch,
		logger:        logger,
	}
}

// HandleRedirect never returns an error; every failure maps to an Outcome.
//
// FLOW:
// 1. Resolve (short code, domain) with primary-domain fallback
// 2. Reject expired links
// 3. Merge campaign parameters into the destination
// 4. Schedule click recording and return immediately
func (s *RedirectService) HandleRedirect(ctx context.Context, req RedirectRequest) (result RedirectResult) {
	defer func() {
		if p := recover(); p != nil {
			s.logger.Error("redirect panicked", zap.Any("panic", p), zap.String("short_code", req.ShortCode), zap.Stack("stack"))
			result = RedirectResult{Outcome: OutcomeInternalError}
		}
		metrics.RedirectsTotal.WithLabelValues(string(result.Outcome)).Inc()
	}()

	domain := NormalizeDomain(req.Host, s.primaryDomain)
	link, err := s.resolver.Resolve(ctx, req.ShortCode, domain)
	switch {
	case errors.Is(err, ErrLinkNotFound):
		return RedirectResult{Outcome: OutcomeNotFound}
	case errors.Is(err, ErrLinkExpired):
		return RedirectResult{Outcome: OutcomeExpired}
	case err != nil:
		s.logger.Error("link lookup failed", zap.String("short_code", req.ShortCode), zap.String("domain", domain), zap.Error(err))
		return RedirectResult{Outcome: OutcomeInternalError}
	}

	location, utm, err := MergeUTM(link.URL, req.RawQuery, s.prefixMatch)
	if err != nil {
		s.logger.Error("stored destination is not a valid URL", zap.String("link_id", link.ID.String()), zap.Error(err))
		return RedirectResult{Outcome: OutcomeInternalError}
	}

	meta := models.ClickMetadata{
		IP:        optional(req.ClientIP),
		UserAgent: &req.UserAgent,
		Referer:   optional(req.Referer),
		UTM:       utm,
	}
	linkID := link.ID
	if !s.scheduler.Submit(func(ctx context.Context) {
		s.recorder.Record(ctx, linkID, meta)
	}) {
		s.logger.Warn("click not recorded", zap.String("link_id", linkID.String()))
	}

	return RedirectResult{Outcome: OutcomeFound, Location: location, Link: link}
}
