package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BuildInfo is set to 1 with the running version as a label.
	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fakenews_build_info",
		Help: "Build information of the running fakenews web frontend",
	}, []string{"version", "snapshot_backend"})

	// StartTime records the process start as a Unix timestamp.
	StartTime = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fakenews_start_time_seconds",
		Help: "Start time of the process since unix epoch in seconds",
	})
)
