// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// RedirectsTotal is labelled by outcome: found, not_found, expired, internal_error.
	RedirectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortener_redirects_total",
			Help: "Redirect requests by outcome",
		},
		[]string{"outcome"},
	)

	LinksCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortener_links_created_total",
			Help: "Links created, by code kind (custom or generated)",
		},
		[]string{"kind"},
	)

	CodeGenerationFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shortener_code_generation_failures_total",
			Help: "Link creations that exhausted short code attempts",
		},
	)

	// ClickWriteFailuresTotal is labelled by step: event, counter.
	ClickWriteFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortener_click_write_failures_total",
			Help: "Failed click analytics writes",
		},
		[]string{"step"},
	)

	ClicksRecordedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shortener_clicks_recorded_total",
			Help: "Click events persisted",
		},
	)

	BackgroundTasksDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shortener_background_tasks_dropped_total",
			Help: "Background tasks rejected because the queue was full or closed",
		},
	)

	LinkCacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortener_link_cache_lookups_total",
			Help: "Link cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	ClicksReconciledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shortener_clicks_reconciled_total",
			Help: "Links whose click counter was corrected by reconciliation",
		},
	)
)
