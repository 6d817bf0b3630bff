package metrics

import (
	"github.com/mnbossa/AImend/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// SecurityMetrics tracks envelope rejections and replay-guard activity.
//
// Metrics:
//   - aimend_gateway_auth_failures_total: authenticator rejections by kind
//   - aimend_gateway_replay_rejections_total: envelopes with a reused nonce
//   - aimend_gateway_replay_pruned_total: expired nonces removed by the sweeper
type SecurityMetrics struct {
	authFailures     *prometheus.CounterVec
	replayRejections prometheus.Counter
	replayPruned     prometheus.Counter
}

// NewSecurityMetrics creates and registers security metrics with the provided registry.
func NewSecurityMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *SecurityMetrics {
	sm := &SecurityMetrics{
		authFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "auth_failures_total",
				Help:      "Total number of rejected envelopes by failure kind",
			},
			[]string{"kind"},
		),

		replayRejections: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "replay_rejections_total",
				Help:      "Total number of envelopes rejected for a reused nonce",
			},
		),

		replayPruned: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "replay_pruned_total",
				Help:      "Total number of expired nonces removed from the replay store",
			},
		),
	}

	registry.MustRegister(sm.authFailures, sm.replayRejections, sm.replayPruned)

	return sm
}
