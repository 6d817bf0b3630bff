/*
Package tls terminates HTTPS for the relay gateway.

When server.tls.enabled is set the listener serves the certificate pair
named by cert_file and key_file:

	reloader, err := tls.NewCertificateReloader(cfg.CertFile, cfg.KeyFile, cfg.WatchCerts, logger)
	if err != nil {
		return err
	}
	defer reloader.Close()

	tlsConfig, err := tls.ServerConfig(cfg, reloader)

# Certificate Reload

With watch_certs the reloader watches the directories holding the pair
and swaps the certificate in after a write or rename. Handshakes that
start afterwards use the new pair. A pair that does not parse, or whose
leaf is outside its validity period, is logged and ignored.

Certificates within ExpiryWarning of their NotAfter are logged at warn
level each time they are loaded.
*/
package tls
