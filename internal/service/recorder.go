package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rdrlink/shortener/internal/geo"
	"github.com/rdrlink/shortener/internal/metrics"
	"github.com/rdrlink/shortener/internal/models"
	"github.com/rdrlink/shortener/internal/useragent"
)

// ClickRecorder persists a click event and bumps the link's counter.
// Failures are logged and counted, never returned: the visitor has
// already been redirected.
type ClickRecorder struct {
	links   LinkStore
	clicks  ClickStore
	locator geo.Locator
	sinks   []ClickSink
	logger  *zap.Logger
	now     func() time.Time
}

// NewClickRecorder creates a recorder. locator may be nil.
func NewClickRecorder(links LinkStore, clicks ClickStore, locator geo.Locator, logger *zap.Logger, sinks ...ClickSink) *ClickRecorder {
	if locator == nil {
		locator = geo.Nop{}
	}
	return &ClickRecorder{
		links:   links,
		clicks:  clicks,
		locator: locator,
		sinks:   sinks,
		logger:  logger,
		now:     time.Now,
	}
}

// Record writes one event for linkID. The counter is incremented even if
// the event insert fails.
func (r *ClickRecorder) Record(ctx context.Context, linkID uuid.UUID, meta models.ClickMetadata) {
	event := r.buildEvent(linkID, meta)

	eventStored := true
	if err := r.clicks.Insert(ctx, &event); err != nil {
		eventStored = false
		metrics.ClickWriteFailuresTotal.WithLabelValues("event").Inc()
		r.logger.Error("failed to record click event", zap.String("link_id", linkID.String()), zap.Error(err))
	} else {
		metrics.ClicksRecordedTotal.Inc()
	}

	if err := r.links.IncrementClicks(ctx, linkID); err != nil {
		metrics.ClickWriteFailuresTotal.WithLabelValues("counter").Inc()
		r.logger.Error("failed to increment click counter", zap.String("link_id", linkID.String()), zap.Error(err))
	}

	if eventStored {
		for _, sink := range r.sinks {
			sink.Push(event)
		}
	}
}

func (r *ClickRecorder) buildEvent(linkID uuid.UUID, meta models.ClickMetadata) models.ClickEvent {
	event := models.ClickEvent{
		ID:          uuid.New(),
		LinkID:      linkID,
		Timestamp:   r.now().UTC(),
		IP:          meta.IP,
		UserAgent:   meta.UserAgent,
		Referer:     meta.Referer,
		Device:      meta.Device,
		Browser:     meta.Browser,
		OS:          meta.OS,
		Country:     meta.Country,
		Region:      meta.Region,
		City:        meta.City,
		UTMSource:   meta.UTM.Source,
		UTMMedium:   meta.UTM.Medium,
		UTMCampaign: meta.UTM.Campaign,
		UTMTerm:     meta.UTM.Term,
		UTMContent:  meta.UTM.Content,
	}

	if event.Device == nil && meta.UserAgent != nil {
		if info, ok := r.classify(*meta.UserAgent); ok {
			event.Device = &info.Device
			if event.Browser == nil {
				event.Browser = &info.Browser
			}
			if event.OS == nil {
				event.OS = &info.OS
			}
		}
	}

	if event.Country == nil && meta.IP != nil {
		loc, err := r.locator.Lookup(*meta.IP)
		if err != nil {
			r.logger.Debug("geo lookup failed", zap.String("ip", *meta.IP), zap.Error(err))
		} else {
			event.Country = optional(loc.Country)
			if event.Region == nil {
				event.Region = optional(loc.Region)
			}
			if event.City == nil {
				event.City = optional(loc.City)
			}
		}
	}

	return event
}

// A classifier fault leaves the derived fields empty.
func (r *ClickRecorder) classify(ua string) (info useragent.Info, ok bool) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Warn("user agent classification failed", zap.Any("panic", p))
			ok = false
		}
	}()
	return useragent.Classify(ua), true
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
