package config

import "time"

// Config is the root configuration structure for the AImend relay gateway.
// It contains all configuration sections for the HTTP server, envelope
// authentication, replay protection, upstream forwarding, secrets and telemetry.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, and header limits.
	Server ServerConfig `yaml:"server"`

	// CORS contains the cross-origin headers attached to every response.
	CORS CORSConfig `yaml:"cors"`

	// Envelope contains signed envelope verification settings.
	Envelope EnvelopeConfig `yaml:"envelope"`

	// Replay contains nonce replay protection settings.
	Replay ReplayConfig `yaml:"replay"`

	// Upstream contains the chat-completion API the gateway relays to.
	Upstream UpstreamConfig `yaml:"upstream"`

	// Secrets controls where the shared secret and the upstream credential
	// are resolved from at startup.
	Secrets SecretsConfig `yaml:"secrets"`

	// Telemetry contains configuration for observability including logging,
	// metrics, and distributed tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port for the gateway to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8787", "0.0.0.0:8787").
	// Default: "127.0.0.1:8787"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	// Default: 15s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. Must exceed upstream.timeout or slow upstream replies are cut off.
	// Default: 45s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// RequestTimeout bounds the whole handling of one request.
	// Default: 40s
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server will
	// read parsing the request header.
	// Default: 65536
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// TLS enables HTTPS termination in the gateway itself. Leave it off
	// when a load balancer terminates TLS in front of the gateway.
	TLS TLSConfig `yaml:"tls"`
}

// TLSConfig contains HTTPS termination settings.
type TLSConfig struct {
	// Enabled indicates whether the listener serves HTTPS.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// CertFile is the path to the PEM-encoded certificate chain.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the PEM-encoded private key.
	KeyFile string `yaml:"key_file"`

	// MinVersion is the minimum TLS version to accept ("1.2" or "1.3").
	// Default: "1.3"
	MinVersion string `yaml:"min_version"`

	// CipherSuites restricts TLS 1.2 cipher suites by name. Empty keeps
	// Go's defaults. TLS 1.3 suites are not configurable.
	CipherSuites []string `yaml:"cipher_suites"`

	// WatchCerts reloads the certificate when either file changes.
	// Default: true
	WatchCerts bool `yaml:"watch_certs"`
}

// CORSConfig contains CORS (Cross-Origin Resource Sharing) configuration.
type CORSConfig struct {
	// AllowedOrigin is the value of Access-Control-Allow-Origin.
	// Default: "*"
	AllowedOrigin string `yaml:"allowed_origin"`

	// AllowedMethods is a list of allowed HTTP methods for CORS requests.
	// Default: ["POST", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is a list of allowed HTTP headers for CORS requests.
	// Default: ["Content-Type", "X-Signature"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// MaxAge is the maximum age (in seconds) for preflight request cache.
	// Default: 600
	MaxAge int `yaml:"max_age"`
}

// EnvelopeConfig contains signed envelope verification settings.
type EnvelopeConfig struct {
	// MaxBodyBytes is the request body ceiling. Larger bodies are rejected
	// before they are hashed or parsed.
	// Default: 65536
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// FreshnessWindow is the maximum allowed distance between the envelope
	// timestamp and the gateway clock, in either direction.
	// Default: 120s
	FreshnessWindow time.Duration `yaml:"freshness_window"`

	// SignatureHeader is the request header carrying "sha256=<hex>".
	// Default: "X-Signature"
	SignatureHeader string `yaml:"signature_header"`

	// MaxModelLength bounds the model identifier, in characters.
	// Default: 200
	MaxModelLength int `yaml:"max_model_length"`
}

// ReplayConfig contains nonce replay protection settings.
type ReplayConfig struct {
	// Enabled controls whether nonces are checked for reuse.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Backend selects the nonce store.
	// Options: "memory", "redis", "sqlite"
	// Default: "memory"
	Backend string `yaml:"backend"`

	// MaxEntries bounds the memory store.
	// Default: 100000
	MaxEntries int `yaml:"max_entries"`

	// SweepSchedule is the cron expression for pruning expired nonces.
	// Default: "@every 1m"
	SweepSchedule string `yaml:"sweep_schedule"`

	// Redis contains settings for the "redis" backend.
	Redis RedisConfig `yaml:"redis"`

	// SQLite contains settings for the "sqlite" backend.
	SQLite SQLiteConfig `yaml:"sqlite"`
}

// RedisConfig contains Redis connection settings.
type RedisConfig struct {
	// Address is the Redis server address.
	// Default: "localhost:6379"
	Address string `yaml:"address"`

	// Password is the Redis AUTH password. Prefer AIMEND_REPLAY_REDIS_PASSWORD.
	Password string `yaml:"password"`

	// DB is the Redis database number.
	DB int `yaml:"db"`

	// KeyPrefix is prepended to every nonce key.
	// Default: "aimend:nonce:"
	KeyPrefix string `yaml:"key_prefix"`

	// OpTimeout bounds each Redis command.
	// Default: 500ms
	OpTimeout time.Duration `yaml:"op_timeout"`
}

// SQLiteConfig contains SQLite storage settings.
type SQLiteConfig struct {
	// Path is the database file path.
	// Default: "data/nonces.db"
	Path string `yaml:"path"`

	// BusyTimeout is how long to wait for locks.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// UpstreamConfig contains the chat-completion API settings.
type UpstreamConfig struct {
	// Endpoint is the full chat-completions URL.
	// Default: "https://router.huggingface.co/v1/chat/completions"
	Endpoint string `yaml:"endpoint"`

	// Timeout bounds a single upstream call. There are no retries.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// ReasoningDelimiter separates a model's reasoning trace from its answer.
	// Default: "</think>"
	ReasoningDelimiter string `yaml:"reasoning_delimiter"`

	// MaxResponseBytes bounds how much of an upstream body is read.
	// Default: 4194304 (4MB)
	MaxResponseBytes int64 `yaml:"max_response_bytes"`

	// MaxIdleConns is the size of the outbound connection pool.
	// Default: 32
	MaxIdleConns int `yaml:"max_idle_conns"`
}

// SecretsConfig contains secret resolution configuration.
type SecretsConfig struct {
	// DotenvFile is an optional .env file loaded before resolution.
	// Variables already present in the environment are not overwritten.
	DotenvFile string `yaml:"dotenv_file"`

	// Providers is a list of secret providers to use.
	// Providers are tried in order until one successfully returns a value.
	// Default: a single "env" provider with no prefix.
	Providers []SecretProviderConfig `yaml:"providers"`

	// SharedSecretName is the name of the inbound signing secret.
	// With the env provider it resolves to WORKER_SHARED_SECRET.
	// Default: "worker-shared-secret"
	SharedSecretName string `yaml:"shared_secret_name"`

	// UpstreamKeyName is the name of the upstream API credential.
	// With the env provider it resolves to SECRET_HF_TOKEN.
	// Default: "secret-hf-token"
	UpstreamKeyName string `yaml:"upstream_key_name"`
}

// SecretProviderConfig contains configuration for a secret provider.
type SecretProviderConfig struct {
	// Type is the provider type.
	// Options: "env", "file"
	Type string `yaml:"type"`

	// Prefix is the environment variable prefix (for "env" provider).
	// Example: "AIMEND_SECRET_"
	Prefix string `yaml:"prefix,omitempty"`

	// Path is the base path for file-based secrets (for "file" provider).
	// Example: "/var/run/secrets/aimend"
	Path string `yaml:"path,omitempty"`

	// Watch reports secret file changes in the log (for "file" provider).
	// Resolved values never change while the process runs.
	Watch bool `yaml:"watch,omitempty"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`

	// Health contains health check configuration.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// Redact masks credentials and signatures in log attributes.
	// Default: true
	Redact bool `yaml:"redact"`

	// RedactPatterns contains extra redaction patterns.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactPattern defines a custom redaction pattern.
type RedactPattern struct {
	// Name is a descriptive name for the pattern.
	Name string `yaml:"name"`

	// Pattern is the regular expression to match.
	Pattern string `yaml:"pattern"`

	// Replacement is the string to replace matches with.
	Replacement string `yaml:"replacement"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "aimend"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "gateway"
	Subsystem string `yaml:"subsystem"`

	// RequestDurationBuckets defines histogram buckets for request duration (seconds).
	// Default: [0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30]
	RequestDurationBuckets []float64 `yaml:"request_duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Default: 0.1
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "aimend-gateway"
	ServiceName string `yaml:"service_name"`

	// OTLP contains OTLP exporter specific configuration.
	OTLP OTLPConfig `yaml:"otlp"`
}

// OTLPConfig contains OTLP exporter configuration.
type OTLPConfig struct {
	// Insecure disables TLS for OTLP connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// HealthConfig contains health check endpoint configuration.
type HealthConfig struct {
	// Enabled controls whether health check endpoints are enabled.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// LivenessPath is the path for the liveness probe endpoint.
	// Default: "/health"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the path for the readiness probe endpoint.
	// Default: "/ready"
	ReadinessPath string `yaml:"readiness_path"`

	// VersionPath is the path for the version information endpoint.
	// Default: "/version"
	VersionPath string `yaml:"version_path"`

	// CheckTimeout is the timeout for individual component health checks.
	// Default: 2s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}
