package proxy

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/mnbossa/AImend/pkg/envelope"
	"github.com/mnbossa/AImend/pkg/telemetry/logging"
)

// RequestMetadata describes an inbound chat request for the request log
// and spans. It never holds the signature, the nonce or message content.
type RequestMetadata struct {
	// RequestID is a unique identifier for the request.
	RequestID string

	// Method is the HTTP method.
	Method string

	// Path is the HTTP request path.
	Path string

	// UserAgent is the client's user agent string.
	UserAgent string

	// RemoteAddr is the client's address.
	RemoteAddr string

	// BodyBytes is the size of the raw envelope.
	BodyBytes int

	// Model is the requested model, once the envelope is authenticated.
	Model string

	// MessageCount is the number of messages, once authenticated.
	MessageCount int

	// Stream is the caller's stream flag.
	Stream bool

	// Timestamp is when the request was received.
	Timestamp time.Time
}

// ResponseMetadata describes how a chat request ended.
type ResponseMetadata struct {
	// StatusCode is the HTTP response status code.
	StatusCode int

	// Outcome is the metrics label for the result.
	Outcome string

	// Latency is the total request processing time.
	Latency time.Duration

	// UpstreamStatus is the upstream status code, zero when not called
	// or unreachable.
	UpstreamStatus int

	// UpstreamLatency is the time spent waiting for the upstream.
	UpstreamLatency time.Duration

	// ReplyBytes is the size of the extracted reply.
	ReplyBytes int

	// Error contains any error that occurred.
	Error error
}

// ExtractRequestMetadata reads the transport-level fields of r.
func ExtractRequestMetadata(r *http.Request) *RequestMetadata {
	return &RequestMetadata{
		RequestID:  logging.GetRequestID(r.Context()),
		Method:     r.Method,
		Path:       r.URL.Path,
		UserAgent:  r.UserAgent(),
		RemoteAddr: r.RemoteAddr,
		Timestamp:  time.Now(),
	}
}

// SetPayload records the shape of an authenticated envelope.
func (m *RequestMetadata) SetPayload(p *envelope.Payload) {
	m.Model = p.Model
	m.Stream = p.StreamRequested()
	m.MessageCount = CountMessages(p.Messages)
}

// CountMessages returns the length of a messages array, or zero when raw is
// not an array.
func CountMessages(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	res := gjson.ParseBytes(raw)
	if !res.IsArray() {
		return 0
	}
	return int(res.Get("#").Int())
}

// LogAttrs returns the pipeline attributes added to the request log line.
// Transport fields (method, path, status) are logged by the middleware.
func (m *RequestMetadata) LogAttrs(resp *ResponseMetadata) []any {
	attrs := []any{
		"body_bytes", m.BodyBytes,
		"outcome", resp.Outcome,
	}
	if m.Model != "" || m.MessageCount > 0 {
		attrs = append(attrs,
			"model", m.Model,
			"messages", m.MessageCount,
			"stream", m.Stream,
		)
	}
	if resp.UpstreamStatus > 0 || resp.UpstreamLatency > 0 {
		attrs = append(attrs,
			"upstream_status", resp.UpstreamStatus,
			"upstream_latency_ms", resp.UpstreamLatency.Milliseconds(),
		)
	}
	if resp.ReplyBytes > 0 {
		attrs = append(attrs, "reply_bytes", resp.ReplyBytes)
	}
	if resp.Error != nil {
		attrs = append(attrs, "error", resp.Error)
	}
	return attrs
}

// IsSuccess reports whether the request produced a reply.
func (r *ResponseMetadata) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
