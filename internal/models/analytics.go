package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Interval is a look-back window for analytics.
type Interval string

const (
	Interval24h Interval = "24h"
	Interval7d  Interval = "7d"
	Interval30d Interval = "30d"
	Interval90d Interval = "90d"

	DefaultInterval = Interval7d
)

var intervalDurations = map[Interval]time.Duration{
	Interval24h: 24 * time.Hour,
	Interval7d:  7 * 24 * time.Hour,
	Interval30d: 30 * 24 * time.Hour,
	Interval90d: 90 * 24 * time.Hour,
}

// Duration returns the window length, or false for an unknown interval.
func (i Interval) Duration() (time.Duration, bool) {
	d, ok := intervalDurations[i]
	return d, ok
}

// DimensionCount is one row of a top-N table. It serializes as a
// two-element JSON array: ["US", 2].
type DimensionCount struct {
	Label string
	Count int
}

// MarshalJSON implements json.Marshaler.
func (d DimensionCount) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{d.Label, d.Count})
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *DimensionCount) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("dimension count: want [label, count], got %s", data)
	}
	if err := json.Unmarshal(pair[0], &d.Label); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &d.Count)
}

// AnalyticsReport summarizes the click events of one link within a window.
type AnalyticsReport struct {
	LinkID       uuid.UUID        `json:"link_id"`
	Interval     Interval         `json:"interval"`
	WindowStart  time.Time        `json:"window_start"`
	TotalClicks  int              `json:"total_clicks"`
	UniqueClicks int              `json:"unique_clicks"`
	Countries    []DimensionCount `json:"countries"`
	Devices      []DimensionCount `json:"devices"`
	Browsers     []DimensionCount `json:"browsers"`
	Referrers    []DimensionCount `json:"referrers"`
	ClickEvents  []ClickEvent     `json:"click_events"` // Most recent, oldest first
}
