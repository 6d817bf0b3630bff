// Package middleware provides HTTP middleware for cross-cutting concerns.
//
// # Middleware Chain
//
// The server wraps its mux in this order (outermost first):
//
//	Recovery -> RequestID -> tracing.HTTPMiddleware -> Logging -> CORS -> Timeout -> mux
//
// CORS sits inside Logging so that preflight requests are logged, and in
// front of the mux so that OPTIONS on any path is answered with 204.
//
// # Middleware Types
//
// Request tracking:
//   - RequestIDMiddleware: UUID request ID in the context and X-Request-ID header
//   - LoggingMiddleware: one log line per request, level chosen by status
//
// Security and resilience:
//   - CORSMiddleware: fixed CORS headers on every response
//   - RecoveryMiddleware: panics become a generic 500
//   - TimeoutMiddleware: context deadline for the whole request
//
// # Request Log
//
// Handlers add their own fields to the request log line with AddLogAttrs;
// nothing is logged twice.
package middleware
