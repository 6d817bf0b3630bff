/*
Package security groups the gateway's credential handling and transport
security.

# Secrets

Package secrets resolves the two credentials the gateway needs, the
envelope shared secret and the upstream API key, from environment
variables and mounted secret files:

	manager, err := secrets.NewManagerFromConfig(cfg.Secrets, logger)
	if err != nil {
		return err
	}
	defer manager.Close()

	creds, err := secrets.Resolve(ctx, manager, cfg.Secrets)

# TLS

Package tls terminates HTTPS when server.tls.enabled is set, reloading
the certificate pair when it changes on disk:

	reloader, err := tls.NewCertificateReloader(certFile, keyFile, true, logger)
	if err != nil {
		return err
	}
	tlsConfig, err := tls.ServerConfig(cfg.Server.TLS, reloader)
*/
package security
