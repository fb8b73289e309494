package submission

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// AnalysisLatency measures backend round-trip time per submission.
var AnalysisLatency = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "fakenews_analysis_latency_seconds",
	Help:    "Latency of analysis backend calls",
	Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 90},
})
