package types

import (
	"encoding/json"
	"net/http"
)

// Outcome labels recorded in metrics, spans and the request log.
const (
	OutcomeOK                    = "ok"
	OutcomePayloadTooLarge       = "payload_too_large"
	OutcomeMalformedSignature    = "malformed_signature"
	OutcomeSecretNotConfigured   = "secret_not_configured"
	OutcomeInvalidSignature      = "invalid_signature"
	OutcomeMalformedPayload      = "malformed_payload"
	OutcomeStaleTimestamp        = "stale_timestamp"
	OutcomeReplayedNonce         = "replayed_nonce"
	OutcomeReplayUnavailable     = "replay_unavailable"
	OutcomeInvalidRequest        = "invalid_request"
	OutcomeUpstreamNotConfigured = "upstream_not_configured"
	OutcomeUpstreamUnreachable   = "upstream_unreachable"
	OutcomeUpstreamError         = "upstream_error"
	OutcomeNotFound              = "not_found"
	OutcomeMethodNotAllowed      = "method_not_allowed"
	OutcomeInternal              = "internal_error"
)

// Messages returned to callers.
const (
	MessageRouteNotSupported     = "Only POST /chat supported"
	MessageUpstreamNotConfigured = "Upstream token not configured"
	MessageUpstreamFailed        = "Upstream request failed"
	MessageInternal              = "Internal server error"
)

// ErrorResponse is a failure ready to be written.
type ErrorResponse struct {
	// Error is the caller-facing message.
	Error string `json:"error"`

	// Message adds transport detail for upstream failures.
	Message string `json:"message,omitempty"`

	// StatusCode is the HTTP status to send.
	StatusCode int `json:"-"`

	// Outcome is the label used for metrics and logs.
	Outcome string `json:"-"`

	// Body, when set, is written verbatim instead of the fields above.
	Body json.RawMessage `json:"-"`
}

// NewErrorResponse creates an ErrorResponse with the given fields.
func NewErrorResponse(statusCode int, outcome, message string) *ErrorResponse {
	return &ErrorResponse{
		Error:      message,
		StatusCode: statusCode,
		Outcome:    outcome,
	}
}

// NewServerError creates a 500 response that reveals nothing internal.
func NewServerError() *ErrorResponse {
	return NewErrorResponse(http.StatusInternalServerError, OutcomeInternal, MessageInternal)
}

// NewNotFoundError is returned for any path other than /chat.
func NewNotFoundError() *ErrorResponse {
	return NewErrorResponse(http.StatusNotFound, OutcomeNotFound, MessageRouteNotSupported)
}

// NewMethodNotAllowedError is returned for /chat with a method other than POST.
func NewMethodNotAllowedError() *ErrorResponse {
	return NewErrorResponse(http.StatusMethodNotAllowed, OutcomeMethodNotAllowed, MessageRouteNotSupported)
}
