package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys in the "aimend.*" namespace. Signatures, nonces and
// credentials are never recorded on spans.
const (
	AttrRequestID   = "aimend.request_id"
	AttrModel       = "aimend.model"
	AttrStream      = "aimend.stream"
	AttrBodyBytes   = "aimend.body_bytes"
	AttrMessages    = "aimend.messages"
	AttrOutcome     = "aimend.outcome"
	AttrErrorKind   = "aimend.error.kind"
	AttrUpstreamURL = "aimend.upstream.host"
	AttrStatusCode  = "http.status_code"
	AttrReplyBytes  = "aimend.reply_bytes"
)

// SetRequestAttributes records the request ID and inbound body size.
func SetRequestAttributes(span trace.Span, requestID string, bodyBytes int) {
	span.SetAttributes(
		attribute.String(AttrRequestID, requestID),
		attribute.Int(AttrBodyBytes, bodyBytes),
	)
}

// SetPayloadAttributes records the validated payload shape.
func SetPayloadAttributes(span trace.Span, model string, stream bool, messages int) {
	span.SetAttributes(
		attribute.String(AttrModel, model),
		attribute.Bool(AttrStream, stream),
		attribute.Int(AttrMessages, messages),
	)
}

// SetUpstreamAttributes records the upstream host and its status code.
func SetUpstreamAttributes(span trace.Span, host string, statusCode int) {
	attrs := []attribute.KeyValue{attribute.String(AttrUpstreamURL, host)}
	if statusCode > 0 {
		attrs = append(attrs, attribute.Int(AttrStatusCode, statusCode))
	}
	span.SetAttributes(attrs...)
}

// SetOutcome records the final outcome label of a chat request.
func SetOutcome(span trace.Span, outcome string, statusCode int) {
	span.SetAttributes(
		attribute.String(AttrOutcome, outcome),
		attribute.Int(AttrStatusCode, statusCode),
	)
}

// SetErrorAttributes records err on the span under the given kind and marks
// the span as failed.
//
//	SetErrorAttributes(span, err, "invalid_signature")
func SetErrorAttributes(span trace.Span, err error, kind string) {
	if err == nil {
		return
	}

	span.SetAttributes(
		attribute.Bool("error", true),
		attribute.String(AttrErrorKind, kind),
	)
	span.RecordError(err)
	span.SetStatus(codes.Error, kind)
}
