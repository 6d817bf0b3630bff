// Package health provides the gateway's liveness, readiness and version
// endpoints.
//
// # Endpoints
//
//   - /health: liveness, answers 200 while the process serves requests
//   - /ready: readiness, 200 only when every registered check passes
//   - /version: build information
//
// The gateway registers two readiness checks: CredentialsCheck, which fails
// while the shared secret or upstream key is missing, and ReplayStoreCheck,
// which pings an external replay store (redis or sqlite).
//
// # Usage
//
//	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
//	checker.RegisterCheck("credentials", health.CredentialsCheck(creds))
//	checker.RegisterCheck("replay_store", health.ReplayStoreCheck(store))
//	health.Register(mux, checker, cfg.Telemetry.Health, info)
package health
