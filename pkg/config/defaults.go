package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8787"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 45 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultRequestTimeout  = 40 * time.Second
	DefaultMaxHeaderBytes  = 65536
	DefaultTLSMinVersion   = "1.3"
	DefaultTLSWatchCerts   = true

	// CORS defaults
	DefaultCORSAllowedOrigin = "*"
	DefaultCORSMaxAge        = 600

	// Envelope defaults
	DefaultMaxBodyBytes    = int64(64 * 1024)
	DefaultFreshnessWindow = 120 * time.Second
	DefaultSignatureHeader = "X-Signature"
	DefaultMaxModelLength  = 200

	// Replay defaults
	DefaultReplayEnabled       = true
	DefaultReplayBackend       = "memory"
	DefaultReplayMaxEntries    = 100000
	DefaultReplaySweepSchedule = "@every 1m"
	DefaultRedisAddress        = "localhost:6379"
	DefaultRedisKeyPrefix      = "aimend:nonce:"
	DefaultRedisOpTimeout      = 500 * time.Millisecond
	DefaultSQLitePath          = "data/nonces.db"
	DefaultSQLiteBusyTimeout   = 5 * time.Second

	// Upstream defaults
	DefaultUpstreamEndpoint         = "https://router.huggingface.co/v1/chat/completions"
	DefaultUpstreamTimeout          = 30 * time.Second
	DefaultReasoningDelimiter       = "</think>"
	DefaultUpstreamMaxResponseBytes = int64(4 * 1024 * 1024)
	DefaultUpstreamMaxIdleConns     = 32

	// Secrets defaults
	DefaultSharedSecretName = "worker-shared-secret"
	DefaultUpstreamKeyName  = "secret-hf-token"

	// Telemetry defaults
	DefaultLoggingLevel        = "info"
	DefaultLoggingFormat       = "json"
	DefaultLoggingRedact       = true
	DefaultMetricsEnabled      = true
	DefaultMetricsPath         = "/metrics"
	DefaultMetricsNamespace    = "aimend"
	DefaultMetricsSubsystem    = "gateway"
	DefaultTracingSampler      = "ratio"
	DefaultTracingSampleRatio  = 0.1
	DefaultTracingServiceName  = "aimend-gateway"
	DefaultOTLPInsecure        = true
	DefaultOTLPTimeout         = 10 * time.Second
	DefaultHealthEnabled       = true
	DefaultHealthLivenessPath  = "/health"
	DefaultHealthReadinessPath = "/ready"
	DefaultHealthVersionPath   = "/version"
	DefaultHealthCheckTimeout  = 2 * time.Second
)

// Default returns a configuration with every default applied, including the
// boolean switches that default to true. LoadConfig unmarshals YAML on top of
// it so that omitted keys keep their defaults.
func Default() *Config {
	cfg := &Config{
		Server: ServerConfig{TLS: TLSConfig{WatchCerts: DefaultTLSWatchCerts}},
		Replay: ReplayConfig{Enabled: DefaultReplayEnabled},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{Redact: DefaultLoggingRedact},
			Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
			Tracing: TracingConfig{OTLP: OTLPConfig{Insecure: DefaultOTLPInsecure}},
			Health:  HealthConfig{Enabled: DefaultHealthEnabled},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Server.TLS.MinVersion == "" {
		cfg.Server.TLS.MinVersion = DefaultTLSMinVersion
	}

	// Envelope defaults
	if cfg.Envelope.MaxBodyBytes == 0 {
		cfg.Envelope.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Envelope.FreshnessWindow == 0 {
		cfg.Envelope.FreshnessWindow = DefaultFreshnessWindow
	}
	if cfg.Envelope.SignatureHeader == "" {
		cfg.Envelope.SignatureHeader = DefaultSignatureHeader
	}
	if cfg.Envelope.MaxModelLength == 0 {
		cfg.Envelope.MaxModelLength = DefaultMaxModelLength
	}

	applyCORSDefaults(cfg)
	applyReplayDefaults(cfg)

	// Upstream defaults
	if cfg.Upstream.Endpoint == "" {
		cfg.Upstream.Endpoint = DefaultUpstreamEndpoint
	}
	if cfg.Upstream.Timeout == 0 {
		cfg.Upstream.Timeout = DefaultUpstreamTimeout
	}
	if cfg.Upstream.ReasoningDelimiter == "" {
		cfg.Upstream.ReasoningDelimiter = DefaultReasoningDelimiter
	}
	if cfg.Upstream.MaxResponseBytes == 0 {
		cfg.Upstream.MaxResponseBytes = DefaultUpstreamMaxResponseBytes
	}
	if cfg.Upstream.MaxIdleConns == 0 {
		cfg.Upstream.MaxIdleConns = DefaultUpstreamMaxIdleConns
	}

	// Secrets defaults
	if len(cfg.Secrets.Providers) == 0 {
		cfg.Secrets.Providers = []SecretProviderConfig{{Type: "env"}}
	}
	if cfg.Secrets.SharedSecretName == "" {
		cfg.Secrets.SharedSecretName = DefaultSharedSecretName
	}
	if cfg.Secrets.UpstreamKeyName == "" {
		cfg.Secrets.UpstreamKeyName = DefaultUpstreamKeyName
	}

	applyTelemetryDefaults(cfg)
}

// applyCORSDefaults applies default values to CORS configuration.
func applyCORSDefaults(cfg *Config) {
	cors := &cfg.CORS

	if cors.AllowedOrigin == "" {
		cors.AllowedOrigin = DefaultCORSAllowedOrigin
	}
	if len(cors.AllowedMethods) == 0 {
		cors.AllowedMethods = []string{"POST", "OPTIONS"}
	}
	if len(cors.AllowedHeaders) == 0 {
		cors.AllowedHeaders = []string{"Content-Type", cfg.Envelope.SignatureHeader}
	}
	if cors.MaxAge == 0 {
		cors.MaxAge = DefaultCORSMaxAge
	}
}

func applyReplayDefaults(cfg *Config) {
	r := &cfg.Replay

	if r.Backend == "" {
		r.Backend = DefaultReplayBackend
	}
	if r.MaxEntries == 0 {
		r.MaxEntries = DefaultReplayMaxEntries
	}
	if r.SweepSchedule == "" {
		r.SweepSchedule = DefaultReplaySweepSchedule
	}
	if r.Redis.Address == "" {
		r.Redis.Address = DefaultRedisAddress
	}
	if r.Redis.KeyPrefix == "" {
		r.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if r.Redis.OpTimeout == 0 {
		r.Redis.OpTimeout = DefaultRedisOpTimeout
	}
	if r.SQLite.Path == "" {
		r.SQLite.Path = DefaultSQLitePath
	}
	if r.SQLite.BusyTimeout == 0 {
		r.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}
}

func applyTelemetryDefaults(cfg *Config) {
	t := &cfg.Telemetry

	if t.Logging.Level == "" {
		t.Logging.Level = DefaultLoggingLevel
	}
	if t.Logging.Format == "" {
		t.Logging.Format = DefaultLoggingFormat
	}

	if t.Metrics.Path == "" {
		t.Metrics.Path = DefaultMetricsPath
	}
	if t.Metrics.Namespace == "" {
		t.Metrics.Namespace = DefaultMetricsNamespace
	}
	if t.Metrics.Subsystem == "" {
		t.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(t.Metrics.RequestDurationBuckets) == 0 {
		t.Metrics.RequestDurationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}
	}

	if t.Tracing.Sampler == "" {
		t.Tracing.Sampler = DefaultTracingSampler
	}
	if t.Tracing.SampleRatio == 0 && t.Tracing.Sampler == "ratio" {
		t.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if t.Tracing.ServiceName == "" {
		t.Tracing.ServiceName = DefaultTracingServiceName
	}
	if t.Tracing.OTLP.Timeout == 0 {
		t.Tracing.OTLP.Timeout = DefaultOTLPTimeout
	}

	if t.Health.LivenessPath == "" {
		t.Health.LivenessPath = DefaultHealthLivenessPath
	}
	if t.Health.ReadinessPath == "" {
		t.Health.ReadinessPath = DefaultHealthReadinessPath
	}
	if t.Health.VersionPath == "" {
		t.Health.VersionPath = DefaultHealthVersionPath
	}
	if t.Health.CheckTimeout == 0 {
		t.Health.CheckTimeout = DefaultHealthCheckTimeout
	}
}
