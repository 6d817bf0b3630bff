// Package metrics provides Prometheus metrics for the gateway.
//
// # Metrics Categories
//
//   - Request Metrics: chat request count, duration, body size and in-flight
//   - Upstream Metrics: upstream call count by status class and latency
//   - Security Metrics: authentication failures, replay rejections and
//     nonces pruned by the sweeper
//
// All metrics live in a private registry exposed through Handler, so tests
// can build as many collectors as they need.
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordRequest("ok", 200, time.Second)
//	collector.RecordUpstream(200, 800*time.Millisecond)
//	mux.Handle("/metrics", collector.Handler())
package metrics
