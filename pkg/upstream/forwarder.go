package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/mnbossa/AImend/pkg/config"
	"github.com/mnbossa/AImend/pkg/telemetry/tracing"
)

// Config holds the settings of a Forwarder. APIKey is the outbound
// credential and is distinct from the inbound shared secret.
type Config struct {
	Endpoint           string
	APIKey             string
	Timeout            time.Duration
	ReasoningDelimiter string
	MaxResponseBytes   int64
	MaxIdleConns       int
}

// ConfigFrom builds a forwarder Config from the upstream section and the
// resolved upstream key.
func ConfigFrom(cfg config.UpstreamConfig, apiKey string) Config {
	return Config{
		Endpoint:           cfg.Endpoint,
		APIKey:             apiKey,
		Timeout:            cfg.Timeout,
		ReasoningDelimiter: cfg.ReasoningDelimiter,
		MaxResponseBytes:   cfg.MaxResponseBytes,
		MaxIdleConns:       cfg.MaxIdleConns,
	}
}

// Request is the payload sent upstream.
type Request struct {
	Model    string          `json:"model,omitempty"`
	Messages json.RawMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

// Option configures a Forwarder.
type Option func(*Forwarder)

// WithHTTPClient replaces the pooled default client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Forwarder) {
		f.client = c
	}
}

// WithLogger sets the logger used for upstream diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(f *Forwarder) {
		f.logger = l
	}
}

// Forwarder sends chat payloads to the upstream API over a pooled client.
// It is safe for concurrent use.
type Forwarder struct {
	config Config
	client *http.Client
	logger *slog.Logger
	host   string
}

// NewForwarder creates a Forwarder with connection pooling.
func NewForwarder(cfg Config, opts ...Option) *Forwarder {
	if cfg.Timeout <= 0 {
		cfg.Timeout = config.DefaultUpstreamTimeout
	}
	if cfg.ReasoningDelimiter == "" {
		cfg.ReasoningDelimiter = config.DefaultReasoningDelimiter
	}
	if cfg.MaxResponseBytes <= 0 {
		cfg.MaxResponseBytes = config.DefaultUpstreamMaxResponseBytes
	}
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = config.DefaultUpstreamMaxIdleConns
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConns,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	f := &Forwarder{
		config: cfg,
		// No client timeout: Forward bounds each call with a context
		// deadline, which also carries inbound cancellation.
		client: &http.Client{Transport: transport},
		logger: slog.Default(),
	}
	if u, err := url.Parse(cfg.Endpoint); err == nil {
		f.host = u.Host
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Configured reports whether an upstream credential is present.
func (f *Forwarder) Configured() bool {
	return f.config.APIKey != ""
}

// Host returns the upstream host, for logs and span attributes.
func (f *Forwarder) Host() string {
	return f.host
}

// Forward sends req upstream once. The call is bounded by the configured
// timeout and abandoned when ctx is cancelled.
func (f *Forwarder) Forward(ctx context.Context, req Request) (*Result, error) {
	if !f.Configured() {
		return nil, &NotConfiguredError{}
	}

	if len(req.Messages) == 0 {
		req.Messages = json.RawMessage("[]")
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("upstream: failed to encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	ctx, span := tracing.StartSpan(ctx, tracing.SpanForward)
	defer span.End()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, f.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("upstream: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+f.config.APIKey)
	tracing.Inject(ctx, httpReq.Header)

	start := time.Now()
	resp, err := f.client.Do(httpReq)
	if err != nil {
		tracing.SetUpstreamAttributes(span, f.host, 0)
		tracing.SetErrorAttributes(span, err, "upstream_unreachable")
		f.logger.WarnContext(ctx, "upstream request failed",
			"host", f.host,
			"duration", time.Since(start),
			"error", err,
		)
		return nil, &UnreachableError{Err: err}
	}
	defer resp.Body.Close()

	tracing.SetUpstreamAttributes(span, f.host, resp.StatusCode)

	respBody, err := readLimited(resp.Body, f.config.MaxResponseBytes)
	if err != nil {
		tracing.SetErrorAttributes(span, err, "upstream_unreachable")
		return nil, &UnreachableError{Err: err}
	}

	f.logger.DebugContext(ctx, "upstream request completed",
		"host", f.host,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"response_bytes", len(respBody),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{
			StatusCode: resp.StatusCode,
			Body:       errorPayload(respBody),
		}
		tracing.SetErrorAttributes(span, statusErr, "upstream_error")
		return nil, statusErr
	}

	result := ParseReply(respBody, f.config.ReasoningDelimiter)
	result.StatusCode = resp.StatusCode
	tracing.SetStatus(span, nil)

	return result, nil
}

// Close releases idle connections held by the pool.
func (f *Forwarder) Close() {
	f.client.CloseIdleConnections()
}

func readLimited(r io.Reader, max int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(data)) > max {
		return nil, ErrResponseTooLarge
	}
	return data, nil
}
