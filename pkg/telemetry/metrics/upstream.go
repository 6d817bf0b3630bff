package metrics

import (
	"time"

	"github.com/mnbossa/AImend/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// UpstreamMetrics tracks calls to the upstream chat-completion API.
//
// Metrics:
//   - aimend_gateway_upstream_requests_total: calls by status class
//   - aimend_gateway_upstream_duration_seconds: call latency
type UpstreamMetrics struct {
	requests *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewUpstreamMetrics creates and registers upstream metrics with the provided registry.
func NewUpstreamMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *UpstreamMetrics {
	um := &UpstreamMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_requests_total",
				Help:      "Total number of upstream calls by status class",
			},
			[]string{"status_class"},
		),

		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_duration_seconds",
				Help:      "Upstream call latency in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
		),
	}

	registry.MustRegister(um.requests, um.duration)

	return um
}

// Record records one upstream call.
func (um *UpstreamMetrics) Record(statusClass string, duration time.Duration) {
	um.requests.WithLabelValues(statusClass).Inc()
	um.duration.Observe(duration.Seconds())
}
