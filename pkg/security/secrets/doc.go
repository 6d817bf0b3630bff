/*
Package secrets resolves the gateway's credentials from environment
variables and secret files.

# Credentials

The gateway needs two secrets: the shared secret that signs inbound
envelopes and the upstream bearer token. Resolve looks both up once at
startup and returns them as an immutable Credentials value:

	manager, err := secrets.NewManagerFromConfig(cfg.Secrets, logger)
	if err != nil {
		return err
	}
	defer manager.Close()

	creds, err := secrets.Resolve(ctx, manager, cfg.Secrets)

A credential that no provider holds is left empty. The gateway still
starts; every request then fails with a configuration error and the
readiness endpoint reports the missing names.

Credentials formats itself with %v and slog as presence flags only.

# Environment Variable Provider

Secret names map to variables by upper-casing and replacing hyphens with
underscores, after an optional prefix:

	worker-shared-secret -> WORKER_SHARED_SECRET
	secret-hf-token      -> SECRET_HF_TOKEN

# File-Based Provider

Each secret is a file named after the secret inside a directory, the way
Kubernetes mounts secrets. Files must be regular files with mode 0600 or
0400, names cannot escape the directory, and values are whitespace
trimmed. With watch enabled, changes are logged as a restart-required
warning.

# Provider Priority

Providers are tried in configuration order. The first that returns a
value wins; a provider that merely lacks the name is skipped.
*/
package secrets
