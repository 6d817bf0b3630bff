package metrics

import (
	"time"

	"github.com/mnbossa/AImend/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics tracks inbound /chat requests.
//
// Metrics:
//   - aimend_gateway_requests_total: requests by outcome and status
//   - aimend_gateway_request_duration_seconds: end-to-end latency by outcome
//   - aimend_gateway_request_body_bytes: accepted body sizes
//   - aimend_gateway_requests_in_flight: requests being handled
type RequestMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	bodyBytes       prometheus.Histogram
	inFlight        prometheus.Gauge
}

// NewRequestMetrics creates and registers request metrics with the provided registry.
func NewRequestMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RequestMetrics {
	rm := &RequestMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "requests_total",
				Help:      "Total number of chat requests by outcome and HTTP status",
			},
			[]string{"outcome", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "request_duration_seconds",
				Help:      "Duration of chat requests in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"outcome"},
		),

		bodyBytes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "request_body_bytes",
				Help:      "Size of accepted request bodies in bytes",
				Buckets:   prometheus.ExponentialBuckets(256, 2, 9), // 256B to 64KB
			},
		),

		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "requests_in_flight",
				Help:      "Number of chat requests currently being handled",
			},
		),
	}

	registry.MustRegister(
		rm.requestsTotal,
		rm.requestDuration,
		rm.bodyBytes,
		rm.inFlight,
	)

	return rm
}

// RecordRequest records a completed request.
func (rm *RequestMetrics) RecordRequest(outcome, status string, duration time.Duration) {
	rm.requestsTotal.WithLabelValues(outcome, status).Inc()
	rm.requestDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordBodySize records an accepted body size.
func (rm *RequestMetrics) RecordBodySize(bytes int) {
	rm.bodyBytes.Observe(float64(bytes))
}
