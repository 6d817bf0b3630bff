// Package logging builds the gateway's structured logger on log/slog.
//
// # Overview
//
// New returns a *slog.Logger whose handler chain is:
//
//	ContextHandler -> RedactingHandler -> JSON or text handler
//
// The context handler appends request_id, trace_id and span_id when a record
// is logged through a *Context method. The redacting handler masks the value
// of any attribute whose key names secret material (secret, token,
// signature, authorization, ...) and rewrites Bearer tokens and
// "sha256=<hex>" signatures found inside string values.
//
// # Usage
//
//	logger, err := logging.New(logging.ConfigFrom(cfg.Telemetry.Logging))
//	if err != nil {
//	    return err
//	}
//	logger.InfoContext(ctx, "chat request completed",
//	    "status", 200,
//	    "signature", header, // logged as [REDACTED]
//	)
package logging
