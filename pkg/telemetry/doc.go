// Package telemetry groups the relay gateway's observability.
//
// # Components
//
//   - logging: slog setup with secret redaction and request-scoped attributes
//   - metrics: Prometheus collectors on a private registry
//   - tracing: OpenTelemetry spans exported over OTLP gRPC
//   - health: liveness, readiness and version endpoints
//
// # Usage
//
//	logger, err := logging.New(logging.ConfigFrom(cfg.Telemetry.Logging))
//	if err != nil {
//	    return err
//	}
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(ctx)
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, prometheus.NewRegistry())
//	collector.RecordRequest("ok", http.StatusOK, time.Since(start))
//
// # Redaction
//
// The shared secret, the upstream API key and the X-Signature value never
// reach a log record. The logging package masks attributes with sensitive
// keys and bearer or hex-signature shaped values before the handler sees
// them.
package telemetry
