package config

import (
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateCORS(&cfg.CORS)...)
	errs = append(errs, validateEnvelope(&cfg.Envelope)...)
	errs = append(errs, validateReplay(&cfg.Replay)...)
	errs = append(errs, validateUpstream(&cfg.Upstream, &cfg.Server)...)
	errs = append(errs, validateSecrets(&cfg.Secrets)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	}

	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "read timeout must be positive",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "write timeout must be positive",
		})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.idle_timeout",
			Message: "idle timeout must be positive",
		})
	}
	if cfg.RequestTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.request_timeout",
			Message: "request timeout must be positive",
		})
	}

	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes must be non-negative",
		})
	}
	if cfg.MaxHeaderBytes > 10*1024*1024 { // 10MB is excessive
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes exceeds reasonable limit (10MB)",
		})
	}

	errs = append(errs, validateTLS(&cfg.TLS)...)

	return errs
}

// TLSCipherSuites lists the TLS 1.2 cipher suite names accepted in
// server.tls.cipher_suites.
var TLSCipherSuites = []string{
	"TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256",
	"TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384",
	"TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256",
	"TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384",
	"TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256",
	"TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256",
}

func validateTLS(cfg *TLSConfig) []FieldError {
	if !cfg.Enabled {
		return nil
	}

	var errs []FieldError

	if cfg.CertFile == "" {
		errs = append(errs, FieldError{
			Field:   "server.tls.cert_file",
			Message: "cert file is required when TLS is enabled",
		})
	}
	if cfg.KeyFile == "" {
		errs = append(errs, FieldError{
			Field:   "server.tls.key_file",
			Message: "key file is required when TLS is enabled",
		})
	}
	if cfg.MinVersion != "1.2" && cfg.MinVersion != "1.3" {
		errs = append(errs, FieldError{
			Field:   "server.tls.min_version",
			Message: fmt.Sprintf("unsupported TLS version %q (use 1.2 or 1.3)", cfg.MinVersion),
		})
	}
	for i, name := range cfg.CipherSuites {
		if !slices.Contains(TLSCipherSuites, name) {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("server.tls.cipher_suites[%d]", i),
				Message: fmt.Sprintf("unknown or insecure cipher suite %q", name),
			})
		}
	}

	return errs
}

func validateCORS(cfg *CORSConfig) []FieldError {
	var errs []FieldError

	if cfg.AllowedOrigin != "*" {
		u, err := url.Parse(cfg.AllowedOrigin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, FieldError{
				Field:   "cors.allowed_origin",
				Message: fmt.Sprintf("invalid origin %q: must be \"*\" or scheme://host[:port]", cfg.AllowedOrigin),
			})
		}
	}
	if cfg.MaxAge < 0 {
		errs = append(errs, FieldError{
			Field:   "cors.max_age",
			Message: "max age must be non-negative",
		})
	}

	return errs
}

func validateEnvelope(cfg *EnvelopeConfig) []FieldError {
	var errs []FieldError

	if cfg.MaxBodyBytes <= 0 {
		errs = append(errs, FieldError{
			Field:   "envelope.max_body_bytes",
			Message: "max body bytes must be positive",
		})
	}
	if cfg.MaxBodyBytes > 16*1024*1024 {
		errs = append(errs, FieldError{
			Field:   "envelope.max_body_bytes",
			Message: "max body bytes exceeds reasonable limit (16MB)",
		})
	}
	if cfg.FreshnessWindow <= 0 {
		errs = append(errs, FieldError{
			Field:   "envelope.freshness_window",
			Message: "freshness window must be positive",
		})
	}
	if strings.TrimSpace(cfg.SignatureHeader) == "" {
		errs = append(errs, FieldError{
			Field:   "envelope.signature_header",
			Message: "signature header is required",
		})
	}
	if cfg.MaxModelLength <= 0 {
		errs = append(errs, FieldError{
			Field:   "envelope.max_model_length",
			Message: "max model length must be positive",
		})
	}

	return errs
}

func validateReplay(cfg *ReplayConfig) []FieldError {
	var errs []FieldError

	if !cfg.Enabled {
		return nil
	}

	switch cfg.Backend {
	case "memory":
		if cfg.MaxEntries <= 0 {
			errs = append(errs, FieldError{
				Field:   "replay.max_entries",
				Message: "max entries must be positive for the memory backend",
			})
		}
	case "redis":
		if cfg.Redis.Address == "" {
			errs = append(errs, FieldError{
				Field:   "replay.redis.address",
				Message: "redis address is required when backend is 'redis'",
			})
		}
		if cfg.Redis.OpTimeout <= 0 {
			errs = append(errs, FieldError{
				Field:   "replay.redis.op_timeout",
				Message: "redis operation timeout must be positive",
			})
		}
	case "sqlite":
		if cfg.SQLite.Path == "" {
			errs = append(errs, FieldError{
				Field:   "replay.sqlite.path",
				Message: "sqlite path is required when backend is 'sqlite'",
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "replay.backend",
			Message: fmt.Sprintf("invalid backend %q: must be 'memory', 'redis', or 'sqlite'", cfg.Backend),
		})
	}

	if _, err := cron.ParseStandard(cfg.SweepSchedule); err != nil {
		errs = append(errs, FieldError{
			Field:   "replay.sweep_schedule",
			Message: fmt.Sprintf("invalid cron expression %q: %v", cfg.SweepSchedule, err),
		})
	}

	return errs
}

func validateUpstream(cfg *UpstreamConfig, server *ServerConfig) []FieldError {
	var errs []FieldError

	u, err := url.Parse(cfg.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, FieldError{
			Field:   "upstream.endpoint",
			Message: fmt.Sprintf("invalid endpoint %q: must be an absolute http(s) URL", cfg.Endpoint),
		})
	}
	if cfg.Timeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "upstream.timeout",
			Message: "upstream timeout must be positive",
		})
	} else if server.WriteTimeout > 0 && cfg.Timeout >= server.WriteTimeout {
		errs = append(errs, FieldError{
			Field:   "upstream.timeout",
			Message: fmt.Sprintf("upstream timeout %v must be shorter than server.write_timeout %v", cfg.Timeout, server.WriteTimeout),
		})
	}
	if cfg.MaxResponseBytes <= 0 {
		errs = append(errs, FieldError{
			Field:   "upstream.max_response_bytes",
			Message: "max response bytes must be positive",
		})
	}
	if cfg.MaxIdleConns < 0 {
		errs = append(errs, FieldError{
			Field:   "upstream.max_idle_conns",
			Message: "max idle connections must be non-negative",
		})
	}

	return errs
}

func validateSecrets(cfg *SecretsConfig) []FieldError {
	var errs []FieldError

	for i, p := range cfg.Providers {
		field := fmt.Sprintf("secrets.providers[%d]", i)
		switch p.Type {
		case "env":
		case "file":
			if p.Path == "" {
				errs = append(errs, FieldError{
					Field:   field + ".path",
					Message: "path is required for the file provider",
				})
			}
		default:
			errs = append(errs, FieldError{
				Field:   field + ".type",
				Message: fmt.Sprintf("invalid provider type %q: must be 'env' or 'file'", p.Type),
			})
		}
	}

	if cfg.SharedSecretName == "" {
		errs = append(errs, FieldError{
			Field:   "secrets.shared_secret_name",
			Message: "shared secret name is required",
		})
	}
	if cfg.UpstreamKeyName == "" {
		errs = append(errs, FieldError{
			Field:   "secrets.upstream_key_name",
			Message: "upstream key name is required",
		})
	}
	if cfg.SharedSecretName != "" && cfg.SharedSecretName == cfg.UpstreamKeyName {
		errs = append(errs, FieldError{
			Field:   "secrets.upstream_key_name",
			Message: "upstream key and shared secret must be distinct secrets",
		})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}

	for i, p := range cfg.Logging.RedactPatterns {
		if p.Pattern == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("telemetry.logging.redact_patterns[%d].pattern", i),
				Message: "pattern is required",
			})
		} else if _, err := regexp.Compile(p.Pattern); err != nil {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("telemetry.logging.redact_patterns[%d].pattern", i),
				Message: fmt.Sprintf("invalid regular expression: %v", err),
			})
		}
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with '/'",
		})
	}

	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "tracing endpoint is required when tracing is enabled",
		})
	}
	switch cfg.Tracing.Sampler {
	case "always", "never", "ratio":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never', or 'ratio'", cfg.Tracing.Sampler),
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}

	if cfg.Health.Enabled {
		paths := map[string]string{
			"telemetry.health.liveness_path":  cfg.Health.LivenessPath,
			"telemetry.health.readiness_path": cfg.Health.ReadinessPath,
			"telemetry.health.version_path":   cfg.Health.VersionPath,
		}
		for field, p := range paths {
			if !strings.HasPrefix(p, "/") {
				errs = append(errs, FieldError{
					Field:   field,
					Message: "path must start with '/'",
				})
			}
		}
	}

	return errs
}
