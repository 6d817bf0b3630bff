package metrics

import (
	"strconv"
	"time"

	"github.com/mnbossa/AImend/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Collector owns every gateway metric and the registry they live in.
// A nil *Collector is valid and records nothing, so components can be
// built without metrics in tests.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	requestMetrics  *RequestMetrics
	upstreamMetrics *UpstreamMetrics
	securityMetrics *SecurityMetrics
}

// NewCollector creates a collector and registers its metrics. If registry is
// nil a fresh registry with the Go and process collectors is created.
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		cfg.RequestDurationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}
	}

	return &Collector{
		config:          cfg,
		registry:        registry,
		requestMetrics:  NewRequestMetrics(cfg, registry),
		upstreamMetrics: NewUpstreamMetrics(cfg, registry),
		securityMetrics: NewSecurityMetrics(cfg, registry),
	}
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordRequest records a completed /chat request.
//
//	collector.RecordRequest("ok", 200, 850*time.Millisecond)
func (c *Collector) RecordRequest(outcome string, status int, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.requestMetrics.RecordRequest(outcome, strconv.Itoa(status), duration)
}

// RecordBodySize records the size of an accepted inbound body.
func (c *Collector) RecordBodySize(bytes int) {
	if !c.enabled() {
		return
	}
	c.requestMetrics.RecordBodySize(bytes)
}

// InFlight increments the in-flight gauge and returns a func that
// decrements it.
func (c *Collector) InFlight() func() {
	if !c.enabled() {
		return func() {}
	}
	c.requestMetrics.inFlight.Inc()
	return c.requestMetrics.inFlight.Dec
}

// RecordUpstream records one upstream exchange. status is 0 when no
// response was received.
func (c *Collector) RecordUpstream(status int, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.upstreamMetrics.Record(StatusClass(status), duration)
}

// RecordAuthFailure records an envelope rejected by the authenticator.
func (c *Collector) RecordAuthFailure(kind string) {
	if !c.enabled() {
		return
	}
	c.securityMetrics.authFailures.WithLabelValues(kind).Inc()
}

// RecordReplayRejection records an envelope rejected for a reused nonce.
func (c *Collector) RecordReplayRejection() {
	if !c.enabled() {
		return
	}
	c.securityMetrics.replayRejections.Inc()
}

// RecordReplayPruned records entries removed by the replay sweeper.
func (c *Collector) RecordReplayPruned(n int) {
	if !c.enabled() || n <= 0 {
		return
	}
	c.securityMetrics.replayPruned.Add(float64(n))
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// StatusClass maps an HTTP status to its class label ("2xx", "4xx", ...).
// A zero status maps to "error".
func StatusClass(status int) string {
	if status < 100 || status > 599 {
		return "error"
	}
	return strconv.Itoa(status/100) + "xx"
}
