package service

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/rdrlink/shortener/internal/models"
)

const (
	topDimensionSize = 10
	recentEventLimit = 100
	directReferrer   = "Direct"
)

// AnalyticsService aggregates click events for link owners.
type AnalyticsService struct {
	links  LinkStore
	clicks ClickStore
	now    func() time.Time
}

// NewAnalyticsService creates a new analytics service.
func NewAnalyticsService(links LinkStore, clicks ClickStore) *AnalyticsService {
	return &AnalyticsService{links: links, clicks: clicks, now: time.Now}
}

// ParseInterval maps the query value to an Interval; empty means the default.
func ParseInterval(s string) (models.Interval, error) {
	if s == "" {
		return models.DefaultInterval, nil
	}
	interval := models.Interval(s)
	if _, ok := interval.Duration(); !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidInterval, s)
	}
	return interval, nil
}

// Aggregate reports on the owner's link over the interval. Ownership is
// checked before any event is read.
func (s *AnalyticsService) Aggregate(ctx context.Context, owner, linkID uuid.UUID, interval models.Interval) (*models.AnalyticsReport, error) {
	window, ok := interval.Duration()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidInterval, interval)
	}

	link, err := s.links.GetByID(ctx, linkID)
	if err != nil || !link.IsOwnedBy(owner) {
		return nil, notFoundOr(err)
	}

	start := s.now().Add(-window)
	events, err := s.clicks.ListSince(ctx, linkID, start)
	if err != nil {
		return nil, fmt.Errorf("failed to load click events: %w", err)
	}

	report := BuildReport(events)
	report.LinkID = linkID
	report.Interval = interval
	report.WindowStart = start
	return report, nil
}

// BuildReport aggregates events, which must be ordered by timestamp
// ascending. Missing values are excluded from the country, device and
// browser tables; missing or unparseable referrers count as Direct.
func BuildReport(events []models.ClickEvent) *models.AnalyticsReport {
	var countries, devices, browsers, referrers tally
	ips := make(map[string]struct{})

	for _, e := range events {
		// A missing IP is one distinct value.
		ips[deref(e.IP)] = struct{}{}

		countries.add(deref(e.Country))
		devices.add(deref(e.Device))
		browsers.add(deref(e.Browser))
		referrers.add(referrerHost(e.Referer))
	}

	recent := events
	if len(recent) > recentEventLimit {
		recent = recent[len(recent)-recentEventLimit:]
	}
	if recent == nil {
		recent = []models.ClickEvent{}
	}

	return &models.AnalyticsReport{
		TotalClicks:  len(events),
		UniqueClicks: len(ips),
		Countries:    countries.top(topDimensionSize),
		Devices:      devices.top(topDimensionSize),
		Browsers:     browsers.top(topDimensionSize),
		Referrers:    referrers.top(topDimensionSize),
		ClickEvents:  recent,
	}
}

// referrerHost buckets a Referer header by host name.
func referrerHost(ref *string) string {
	if ref == nil || *ref == "" {
		return directReferrer
	}
	u, err := url.Parse(*ref)
	if err != nil || u.Scheme == "" || u.Hostname() == "" {
		return directReferrer
	}
	return u.Hostname()
}

// tally counts labels and remembers first-seen order so ties are stable.
type tally struct {
	order  []string
	counts map[string]int
}

func (t *tally) add(label string) {
	if label == "" {
		return
	}
	if t.counts == nil {
		t.counts = make(map[string]int)
	}
	if _, ok := t.counts[label]; !ok {
		t.order = append(t.order, label)
	}
	t.counts[label]++
}

func (t *tally) top(n int) []models.DimensionCount {
	rows := make([]models.DimensionCount, 0, len(t.order))
	for _, label := range t.order {
		rows = append(rows, models.DimensionCount{Label: label, Count: t.counts[label]})
	}
	slices.SortStableFunc(rows, func(a, b models.DimensionCount) int {
		return b.Count - a.Count
	})
	if len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func notFoundOr(err error) error {
	if err == nil || isNotFound(err) {
		return ErrLinkNotFound
	}
	return fmt.Errorf("failed to get link: %w", err)
}
