// Package config provides configuration management for the AImend gateway.
//
// Configuration is loaded from a YAML file, decoded on top of the defaults
// returned by Default, optionally overridden by environment variables, and
// validated before use.
//
//	cfg, err := config.LoadConfigWithEnvOverrides("aimend.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention AIMEND_SECTION_FIELD:
//
//   - AIMEND_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - AIMEND_UPSTREAM_ENDPOINT overrides upstream.endpoint
//   - AIMEND_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// ALLOWED_ORIGIN is honoured as an alias for cors.allowed_origin.
//
// When secrets.dotenv_file (or AIMEND_SECRETS_DOTENV_FILE) is set, the file
// is loaded into the process environment first. Variables that are already
// set are left untouched.
//
// # Credentials
//
// The shared signing secret and the upstream API key are never part of the
// YAML document. The config only names them; package secrets resolves the
// values once at startup.
package config
