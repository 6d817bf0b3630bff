package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/mnbossa/AImend/pkg/envelope"
	"github.com/mnbossa/AImend/pkg/proxy"
	"github.com/mnbossa/AImend/pkg/proxy/middleware"
	"github.com/mnbossa/AImend/pkg/proxy/types"
	"github.com/mnbossa/AImend/pkg/telemetry/logging"
	"github.com/mnbossa/AImend/pkg/telemetry/metrics"
	"github.com/mnbossa/AImend/pkg/telemetry/tracing"
	"github.com/mnbossa/AImend/pkg/upstream"
	"github.com/mnbossa/AImend/pkg/validation"
)

// Authenticator verifies a raw envelope against its signature header.
type Authenticator interface {
	Authenticate(ctx context.Context, raw []byte, header string) (*envelope.Payload, error)
}

// Validator checks an authenticated payload before it is forwarded.
type Validator interface {
	Validate(p *envelope.Payload) error
}

// Forwarder sends a validated payload upstream.
type Forwarder interface {
	Forward(ctx context.Context, req upstream.Request) (*upstream.Result, error)
	Host() string
}

// ChatConfig holds the request-level limits of the chat handler.
type ChatConfig struct {
	// MaxBodyBytes bounds the raw envelope.
	MaxBodyBytes int64

	// SignatureHeader names the header carrying "sha256=<hex>".
	SignatureHeader string
}

// ChatHandler serves POST /chat.
type ChatHandler struct {
	config    ChatConfig
	auth      Authenticator
	validator Validator
	forwarder Forwarder
	metrics   *metrics.Collector
}

// Compile-time check.
var _ Validator = (*validation.Validator)(nil)

// NewChatHandler wires the pipeline stages. collector may be nil.
func NewChatHandler(cfg ChatConfig, auth Authenticator, validator Validator, forwarder Forwarder, collector *metrics.Collector) *ChatHandler {
	if cfg.SignatureHeader == "" {
		cfg.SignatureHeader = envelope.DefaultHeaderName
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = envelope.DefaultMaxBodyBytes
	}
	return &ChatHandler{
		config:    cfg,
		auth:      auth,
		validator: validator,
		forwarder: forwarder,
		metrics:   collector,
	}
}

// ServeHTTP runs read, authenticate, validate, forward and respond. Each
// stage stops the pipeline on error; nothing after a failed stage runs.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(r.Context(), w, types.NewMethodNotAllowedError())
		return
	}

	defer h.metrics.InFlight()()

	ctx, span := tracing.StartSpan(r.Context(), tracing.SpanChat)
	defer span.End()

	md := proxy.ExtractRequestMetadata(r)
	res := &proxy.ResponseMetadata{}

	defer func() {
		res.Latency = time.Since(md.Timestamp)
		h.metrics.RecordRequest(res.Outcome, res.StatusCode, res.Latency)
		tracing.SetOutcome(span, res.Outcome, res.StatusCode)
		middleware.AddLogAttrs(ctx, md.LogAttrs(res)...)
	}()

	raw, err := envelope.ReadBody(r.Body, h.config.MaxBodyBytes)
	if err != nil {
		h.fail(ctx, w, res, err)
		return
	}
	md.BodyBytes = len(raw)
	h.metrics.RecordBodySize(len(raw))
	tracing.SetRequestAttributes(span, md.RequestID, len(raw))

	payload, err := h.authenticate(ctx, raw, r.Header.Get(h.config.SignatureHeader))
	if err != nil {
		h.fail(ctx, w, res, err)
		return
	}
	md.SetPayload(payload)
	tracing.SetPayloadAttributes(span, md.Model, md.Stream, md.MessageCount)

	if err := h.validator.Validate(payload); err != nil {
		h.fail(ctx, w, res, err)
		return
	}

	result, err := h.forward(ctx, payload, res)
	if err != nil {
		h.fail(ctx, w, res, err)
		return
	}

	res.StatusCode = http.StatusOK
	res.Outcome = types.OutcomeOK
	res.ReplyBytes = len(result.Reply)
	tracing.SetStatus(span, nil)

	if err := proxy.WriteChatResponse(w, &types.ChatResponse{Reply: result.Reply, Raw: result.Raw}); err != nil {
		logging.FromContext(ctx).WarnContext(ctx, "failed to write response", "error", err)
	}
}

func (h *ChatHandler) authenticate(ctx context.Context, raw []byte, header string) (*envelope.Payload, error) {
	ctx, span := tracing.StartSpan(ctx, tracing.SpanAuthenticate)
	defer span.End()

	payload, err := h.auth.Authenticate(ctx, raw, header)
	if err != nil {
		var envErr *envelope.Error
		kind := "unknown"
		if errors.As(err, &envErr) {
			kind = envErr.Kind.String()
			if envErr.Kind == envelope.KindReplayedNonce {
				h.metrics.RecordReplayRejection()
			}
		}
		h.metrics.RecordAuthFailure(kind)
		tracing.SetErrorAttributes(span, err, kind)
		return nil, err
	}

	tracing.SetStatus(span, nil)
	return payload, nil
}

func (h *ChatHandler) forward(ctx context.Context, payload *envelope.Payload, res *proxy.ResponseMetadata) (*upstream.Result, error) {
	start := time.Now()
	result, err := h.forwarder.Forward(ctx, upstream.Request{
		Model:    payload.Model,
		Messages: payload.Messages,
		Stream:   payload.StreamRequested(),
	})

	var notConfigured *upstream.NotConfiguredError
	if errors.As(err, &notConfigured) {
		return nil, err
	}

	res.UpstreamLatency = time.Since(start)
	var statusErr *upstream.StatusError
	switch {
	case err == nil:
		res.UpstreamStatus = result.StatusCode
	case errors.As(err, &statusErr):
		res.UpstreamStatus = statusErr.StatusCode
	}
	h.metrics.RecordUpstream(res.UpstreamStatus, res.UpstreamLatency)

	return result, err
}

func (h *ChatHandler) fail(ctx context.Context, w http.ResponseWriter, res *proxy.ResponseMetadata, err error) {
	errResp := proxy.HandleError(err)
	res.StatusCode = errResp.StatusCode
	res.Outcome = errResp.Outcome
	res.Error = err
	writeError(ctx, w, errResp)
}

func writeError(ctx context.Context, w http.ResponseWriter, errResp *types.ErrorResponse) {
	if err := proxy.WriteErrorResponse(w, errResp); err != nil {
		logging.FromContext(ctx).WarnContext(ctx, "failed to write error response", "error", err)
	}
}
