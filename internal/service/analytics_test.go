package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdrlink/shortener/internal/models"
	"github.com/rdrlink/shortener/internal/repository"
	"github.com/rdrlink/shortener/internal/service/mocks"
)

func click(country, device, browser, ip, referer string) models.ClickEvent {
	opt := func(s string) *string {
		if s == "" {
			return nil
		}
		return &s
	}
	return models.ClickEvent{
		ID:      uuid.New(),
		Country: opt(country),
		Device:  opt(device),
		Browser: opt(browser),
		IP:      opt(ip),
		Referer: opt(referer),
	}
}

func TestBuildReportCountsDimensions(t *testing.T) {
	events := []models.ClickEvent{
		click("US", "Desktop", "Chrome", "1.1.1.1", "https://news.example.com/story?id=1"),
		click("US", "Mobile", "Safari", "1.1.1.1", ""),
		click("CA", "Desktop", "Chrome", "2.2.2.2", "not a url"),
	}

	report := BuildReport(events)

	assert.Equal(t, 3, report.TotalClicks)
	assert.Equal(t, 2, report.UniqueClicks)
	assert.Equal(t, []models.DimensionCount{{Label: "US", Count: 2}, {Label: "CA", Count: 1}}, report.Countries)
	assert.Equal(t, []models.DimensionCount{{Label: "Desktop", Count: 2}, {Label: "Mobile", Count: 1}}, report.Devices)
	assert.Equal(t, []models.DimensionCount{{Label: "Chrome", Count: 2}, {Label: "Safari", Count: 1}}, report.Browsers)
	assert.Equal(t, []models.DimensionCount{{Label: "Direct", Count: 2}, {Label: "news.example.com", Count: 1}}, report.Referrers)
	assert.Len(t, report.ClickEvents, 3)
}

func TestBuildReportSkipsMissingValues(t *testing.T) {
	report := BuildReport([]models.ClickEvent{
		click("", "", "", "", ""),
		click("", "", "", "", ""),
		click("DE", "", "", "3.3.3.3", ""),
	})

	assert.Equal(t, 3, report.TotalClicks)
	// Missing IPs collapse into one visitor.
	assert.Equal(t, 2, report.UniqueClicks)
	assert.Equal(t, []models.DimensionCount{{Label: "DE", Count: 1}}, report.Countries)
	assert.Empty(t, report.Devices)
	assert.Empty(t, report.Browsers)
	assert.Equal(t, []models.DimensionCount{{Label: "Direct", Count: 3}}, report.Referrers)
}

func TestBuildReportTopTenKeepsFirstSeenOrderOnTies(t *testing.T) {
	var events []models.ClickEvent
	for i := 0; i < 12; i++ {
		events = append(events, click(fmt.Sprintf("C%02d", i), "", "", "", ""))
	}
	events = append(events, click("C11", "", "", "", ""))

	report := BuildReport(events)

	require.Len(t, report.Countries, 10)
	assert.Equal(t, models.DimensionCount{Label: "C11", Count: 2}, report.Countries[0])
	for i := 1; i < 10; i++ {
		assert.Equal(t, fmt.Sprintf("C%02d", i-1), report.Countries[i].Label)
	}
}

func TestBuildReportKeepsLatestEvents(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	events := make([]models.ClickEvent, 150)
	for i := range events {
		events[i] = models.ClickEvent{ID: uuid.New(), Timestamp: base.Add(time.Duration(i) * time.Minute)}
	}

	report := BuildReport(events)

	require.Len(t, report.ClickEvents, 100)
	assert.Equal(t, events[50].ID, report.ClickEvents[0].ID)
	assert.Equal(t, events[149].ID, report.ClickEvents[99].ID)
}

func TestBuildReportEmpty(t *testing.T) {
	report := BuildReport(nil)
	assert.Zero(t, report.TotalClicks)
	assert.Zero(t, report.UniqueClicks)
	assert.NotNil(t, report.ClickEvents)
	assert.Empty(t, report.Countries)
}

func TestParseInterval(t *testing.T) {
	for _, s := range []string{"24h", "7d", "30d", "90d"} {
		got, err := ParseInterval(s)
		require.NoError(t, err)
		assert.Equal(t, models.Interval(s), got)
	}

	got, err := ParseInterval("")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultInterval, got)

	_, err = ParseInterval("1y")
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestAggregateUsesWindow(t *testing.T) {
	ctrl := gomock.NewController(t)
	links := mocks.NewMockLinkStore(ctrl)
	clicks := mocks.NewMockClickStore(ctrl)
	owner := uuid.New()
	link := &models.Link{ID: uuid.New(), OwnerID: &owner}
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	links.EXPECT().GetByID(gomock.Any(), link.ID).Return(link, nil)
	clicks.EXPECT().ListSince(gomock.Any(), link.ID, now.Add(-30*24*time.Hour)).
		Return([]models.ClickEvent{click("US", "", "", "", "")}, nil)

	svc := NewAnalyticsService(links, clicks)
	svc.now = func() time.Time { return now }

	report, err := svc.Aggregate(context.Background(), owner, link.ID, models.Interval30d)
	require.NoError(t, err)
	assert.Equal(t, link.ID, report.LinkID)
	assert.Equal(t, models.Interval30d, report.Interval)
	assert.Equal(t, now.Add(-30*24*time.Hour), report.WindowStart)
	assert.Equal(t, 1, report.TotalClicks)
}

func TestAggregateChecksOwnershipBeforeReadingEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	links := mocks.NewMockLinkStore(ctrl)
	// No ListSince expectation: reading events would fail the test.
	clicks := mocks.NewMockClickStore(ctrl)
	owner := uuid.New()
	other := uuid.New()
	linkID := uuid.New()

	links.EXPECT().GetByID(gomock.Any(), linkID).Return(&models.Link{ID: linkID, OwnerID: &other}, nil)
	links.EXPECT().GetByID(gomock.Any(), linkID).Return(nil, repository.ErrNotFound)
	links.EXPECT().GetByID(gomock.Any(), linkID).Return(nil, errors.New("connection reset"))

	svc := NewAnalyticsService(links, clicks)

	_, err := svc.Aggregate(context.Background(), owner, linkID, models.Interval7d)
	assert.ErrorIs(t, err, ErrLinkNotFound)

	_, err = svc.Aggregate(context.Background(), owner, linkID, models.Interval7d)
	assert.ErrorIs(t, err, ErrLinkNotFound)

	_, err = svc.Aggregate(context.Background(), owner, linkID, models.Interval7d)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrLinkNotFound)
}

func TestAggregateRejectsUnknownInterval(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := NewAnalyticsService(mocks.NewMockLinkStore(ctrl), mocks.NewMockClickStore(ctrl))

	_, err := svc.Aggregate(context.Background(), uuid.New(), uuid.New(), models.Interval("1h"))
	assert.ErrorIs(t, err, ErrInvalidInterval)
}
