package buffer

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Pool-wide counters, updated by New/Release/Reset. Unlike the teacher's
// build-tagged buffer_pool_prometheus.go (which wraps promauto counters
// directly around its sync.Pool-of-[]byte), these are plain atomics always
// compiled in; a Collector below exposes them to Prometheus on demand, so
// taking a buffer never pays for a metrics registration lookup.
var (
	acquires atomic.Uint64
	releases atomic.Uint64
	discards atomic.Uint64 // oversized backing arrays given back to the pool by Reset instead of being kept by their Buffer
)

type statsCollector struct {
	acquiresDesc *prometheus.Desc
	releasesDesc *prometheus.Desc
	discardsDesc *prometheus.Desc
}

// NewStatsCollector returns a prometheus.Collector exposing this package's
// pool acquire/release/discard counters as shockwave_buffer_pool_* metrics.
func NewStatsCollector() prometheus.Collector {
	return &statsCollector{
		acquiresDesc: prometheus.NewDesc("shockwave_buffer_pool_acquires_total", "Total number of buffers acquired from the pool.", nil, nil),
		releasesDesc: prometheus.NewDesc("shockwave_buffer_pool_releases_total", "Total number of buffers returned to the pool.", nil, nil),
		discardsDesc: prometheus.NewDesc("shockwave_buffer_pool_discards_total", "Total number of oversized backing arrays released by Reset instead of retained.", nil, nil),
	}
}

func (c *statsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.acquiresDesc
	ch <- c.releasesDesc
	ch <- c.discardsDesc
}

func (c *statsCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.acquiresDesc, prometheus.CounterValue, float64(acquires.Load()))
	ch <- prometheus.MustNewConstMetric(c.releasesDesc, prometheus.CounterValue, float64(releases.Load()))
	ch <- prometheus.MustNewConstMetric(c.discardsDesc, prometheus.CounterValue, float64(discards.Load()))
}
