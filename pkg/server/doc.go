// Package server provides the relay gateway's HTTP server.
//
// This package ties together the envelope authenticator, the payload
// validator, the upstream forwarder and the telemetry components, and
// manages the server lifecycle.
//
// # Basic Usage
//
//	cfg, err := config.LoadConfigWithEnvOverrides(path)
//	if err != nil {
//	    return err
//	}
//
//	manager, err := secrets.NewManagerFromConfig(cfg.Secrets, logger)
//	if err != nil {
//	    return err
//	}
//	defer manager.Close()
//
//	creds, err := secrets.Resolve(ctx, manager, cfg.Secrets)
//	if err != nil {
//	    return err
//	}
//
//	srv, err := server.New(cfg, creds, server.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	return srv.Start(ctx)
//
// Credentials are read once. Changing them requires a restart.
//
// # TLS
//
// With server.tls.enabled the listener serves HTTPS using the configured
// certificate pair. When server.tls.watch_certs is set a renewed pair is
// picked up without a restart.
//
// # Graceful Shutdown
//
// Start returns after ctx is cancelled and the shutdown completes:
//  1. Stops accepting new connections
//  2. Waits for active requests (up to server.shutdown_timeout)
//  3. Stops the nonce sweeper
//  4. Closes the replay store, idle upstream connections and the
//     certificate watcher
//
// # Routes
//
//   - POST /chat - Signed chat relay
//   - OPTIONS (any path) - CORS preflight, 204
//   - GET /health, /ready, /version - Probes and build info
//   - GET /metrics - Prometheus exposition
//   - anything else - 404 {"error":"Only POST /chat supported"}
//
// # Middleware Chain
//
// Requests pass through the following middleware (outermost first):
//  1. Recovery
//  2. RequestID
//  3. Tracing (extracts W3C trace context)
//  4. Logging (one line per request)
//  5. CORS
//  6. Timeout (server.request_timeout)
package server
