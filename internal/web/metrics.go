package web

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric label values.
const (
	OutcomeOK          = "ok"
	OutcomeInvalid     = "invalid"
	OutcomeFailed      = "failed"
	OutcomeCanceled    = "canceled"
	OutcomeTooLarge    = "too_large"
	OutcomeBadRequest  = "bad_request"
	OutcomePlaceholder = "placeholder"

	ReasonRateLimited = "rate_limited"

	ErrorTypeStore  = "store_error"
	ErrorTypeRender = "render_error"
)

var (
	// SubmissionsTotal counts /analyze submissions by outcome.
	SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fakenews_submissions_total",
		Help: "Total number of news submissions",
	}, []string{"outcome"})

	// DetailViewsTotal counts fact-check detail views by outcome.
	DetailViewsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fakenews_detail_views_total",
		Help: "Total number of fact-check detail page views",
	}, []string{"outcome"})

	// SnapshotWritesTotal counts evidence snapshot writes by outcome.
	SnapshotWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fakenews_snapshot_writes_total",
		Help: "Total number of evidence snapshot writes",
	}, []string{"outcome"})

	// DeniedTotal counts denied requests by reason.
	DeniedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fakenews_denied_total",
		Help: "Total number of denied requests",
	}, []string{"reason"})

	// ErrorsTotal counts errors by type.
	ErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fakenews_web_errors_total",
		Help: "Total number of web frontend errors",
	}, []string{"type"})

	// LatencyHistogram measures request latency per route.
	LatencyHistogram = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fakenews_web_latency_seconds",
		Help:    "Latency of web frontend requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
)
