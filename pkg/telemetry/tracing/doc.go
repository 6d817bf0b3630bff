// Package tracing provides OpenTelemetry distributed tracing for the gateway.
//
// # Overview
//
// The package installs an OTLP gRPC exporter behind a ParentBased sampler,
// propagates W3C Trace Context on inbound and outbound HTTP requests and
// offers small helpers for the span attributes the gateway records.
//
// Three spans are emitted per chat request:
//   - gateway.chat: the whole pipeline
//   - envelope.authenticate: header parsing, HMAC check, freshness and nonce
//   - upstream.forward: the single upstream HTTP exchange
//
// # Sampling Strategies
//
//   - always: Sample all traces (development/debugging)
//   - never: Sample no new traces
//   - ratio: Sample a fraction of traces (production)
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, tracing.SpanChat)
//	defer span.End()
//
// When tracing is disabled New returns a noop tracer and StartSpan yields
// noop spans.
package tracing
