package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every configuration override variable.
const EnvPrefix = "AIMEND_"

// LoadConfig loads configuration from a YAML file at the specified path.
// YAML is decoded on top of Default(), so omitted keys keep their defaults.
// An empty path yields the validated defaults. Environment variables are not
// consulted; use LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention AIMEND_SECTION_FIELD (e.g., AIMEND_SERVER_LISTEN_ADDRESS).
//
// The loading sequence is:
// 1. Load YAML from file (defaults applied)
// 2. Load secrets.dotenv_file, if set, without overwriting the environment
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if val := os.Getenv(EnvPrefix + "SECRETS_DOTENV_FILE"); val != "" {
		cfg.Secrets.DotenvFile = val
	}
	if cfg.Secrets.DotenvFile != "" {
		if err := godotenv.Load(cfg.Secrets.DotenvFile); err != nil {
			return nil, fmt.Errorf("failed to load dotenv file %q: %w", cfg.Secrets.DotenvFile, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Values that fail to parse are ignored.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	envString("SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	envDuration("SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	envDuration("SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	envDuration("SERVER_IDLE_TIMEOUT", &cfg.Server.IdleTimeout)
	envDuration("SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	envDuration("SERVER_REQUEST_TIMEOUT", &cfg.Server.RequestTimeout)
	envInt("SERVER_MAX_HEADER_BYTES", &cfg.Server.MaxHeaderBytes)
	envBool("SERVER_TLS_ENABLED", &cfg.Server.TLS.Enabled)
	envString("SERVER_TLS_CERT_FILE", &cfg.Server.TLS.CertFile)
	envString("SERVER_TLS_KEY_FILE", &cfg.Server.TLS.KeyFile)
	envString("SERVER_TLS_MIN_VERSION", &cfg.Server.TLS.MinVersion)

	// ALLOWED_ORIGIN is the name the worker deployment has always used.
	if val := os.Getenv("ALLOWED_ORIGIN"); val != "" {
		cfg.CORS.AllowedOrigin = val
	}
	envString("CORS_ALLOWED_ORIGIN", &cfg.CORS.AllowedOrigin)
	envInt("CORS_MAX_AGE", &cfg.CORS.MaxAge)

	// Envelope overrides
	if val := os.Getenv(EnvPrefix + "ENVELOPE_MAX_BODY_BYTES"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Envelope.MaxBodyBytes = i
		}
	}
	envDuration("ENVELOPE_FRESHNESS_WINDOW", &cfg.Envelope.FreshnessWindow)
	envString("ENVELOPE_SIGNATURE_HEADER", &cfg.Envelope.SignatureHeader)
	envInt("ENVELOPE_MAX_MODEL_LENGTH", &cfg.Envelope.MaxModelLength)

	// Replay overrides
	envBool("REPLAY_ENABLED", &cfg.Replay.Enabled)
	envString("REPLAY_BACKEND", &cfg.Replay.Backend)
	envInt("REPLAY_MAX_ENTRIES", &cfg.Replay.MaxEntries)
	envString("REPLAY_SWEEP_SCHEDULE", &cfg.Replay.SweepSchedule)
	envString("REPLAY_REDIS_ADDRESS", &cfg.Replay.Redis.Address)
	envString("REPLAY_REDIS_PASSWORD", &cfg.Replay.Redis.Password)
	envInt("REPLAY_REDIS_DB", &cfg.Replay.Redis.DB)
	envString("REPLAY_SQLITE_PATH", &cfg.Replay.SQLite.Path)

	// Upstream overrides
	envString("UPSTREAM_ENDPOINT", &cfg.Upstream.Endpoint)
	envDuration("UPSTREAM_TIMEOUT", &cfg.Upstream.Timeout)
	envString("UPSTREAM_REASONING_DELIMITER", &cfg.Upstream.ReasoningDelimiter)

	// Secrets overrides
	envString("SECRETS_SHARED_SECRET_NAME", &cfg.Secrets.SharedSecretName)
	envString("SECRETS_UPSTREAM_KEY_NAME", &cfg.Secrets.UpstreamKeyName)

	// Telemetry overrides
	envString("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	envString("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	envBool("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	envString("TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
	envBool("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	envString("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	if val := os.Getenv(EnvPrefix + "TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}
}

func envString(name string, dst *string) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		*dst = strings.TrimSpace(val)
	}
}

func envDuration(name string, dst *time.Duration) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}

func envInt(name string, dst *int) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func envBool(name string, dst *bool) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}
