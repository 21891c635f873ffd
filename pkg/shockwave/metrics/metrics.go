// Package metrics exposes the engine's connection and request counters as
// Prometheus metrics. The core driver keeps its own atomic counters
// (pkg/shockwave/server.Stats) regardless of whether metrics are wired up;
// the stats collector reads the connection counters from them, and
// Instrument keeps its own request counter and request-duration histogram
// around the handler.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/shockwave-http/shockwave/pkg/shockwave/http11"
	"github.com/shockwave-http/shockwave/pkg/shockwave/server"
)

var (
	requestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "shockwave",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests handled.",
	})

	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "shockwave",
		Name:      "request_duration_seconds",
		Help:      "Request handling duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	})
)

// Instrument wraps h so every call records shockwave_requests_total and
// shockwave_request_duration_seconds around the underlying handler.
func Instrument(h server.Handler) server.Handler {
	return func(w *http11.ResponseWriter, r *http11.Request) {
		start := time.Now()
		h(w, r)
		requestsTotal.Inc()
		requestDuration.Observe(time.Since(start).Seconds())
	}
}

// statsCollector adapts a *server.Stats snapshot into a prometheus.Collector,
// reading the atomics the driver already maintains instead of tracking its
// own counters for connection-level state.
type statsCollector struct {
	stats *server.Stats

	connectionsTotal  *prometheus.Desc
	activeConnections *prometheus.Desc
}

// NewStatsCollector returns a prometheus.Collector backed by stats. Register
// it once per process with prometheus.MustRegister.
func NewStatsCollector(stats *server.Stats) prometheus.Collector {
	return &statsCollector{
		stats: stats,
		connectionsTotal: prometheus.NewDesc(
			"shockwave_connections_total",
			"Total number of accepted TCP connections.",
			nil, nil,
		),
		activeConnections: prometheus.NewDesc(
			"shockwave_active_connections",
			"Number of currently active connections.",
			nil, nil,
		),
	}
}

func (c *statsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.connectionsTotal
	ch <- c.activeConnections
}

func (c *statsCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.connectionsTotal, prometheus.CounterValue, float64(c.stats.TotalConnections.Load()))
	ch <- prometheus.MustNewConstMetric(c.activeConnections, prometheus.GaugeValue, float64(c.stats.ActiveConnections.Load()))
}
