package envelope

import (
	"errors"
	"fmt"
)

// Kind classifies envelope failures. Each kind maps to one HTTP status.
type Kind int

const (
	// KindPayloadTooLarge means the body exceeded the ceiling or could not be read.
	KindPayloadTooLarge Kind = iota + 1
	// KindMalformedSignature means the signature header is missing or not "sha256=<hex>".
	KindMalformedSignature
	// KindSecretNotConfigured means the gateway has no shared secret.
	KindSecretNotConfigured
	// KindInvalidSignature means the digest does not match the body.
	KindInvalidSignature
	// KindMalformedPayload means the authenticated body is not a usable envelope.
	KindMalformedPayload
	// KindStaleTimestamp means the timestamp is missing or outside the window.
	KindStaleTimestamp
	// KindReplayedNonce means the nonce was already accepted within the window.
	KindReplayedNonce
	// KindReplayUnavailable means the nonce store could not answer.
	KindReplayUnavailable
)

// String returns the kind name used in logs and metric labels.
func (k Kind) String() string {
	switch k {
	case KindPayloadTooLarge:
		return "payload_too_large"
	case KindMalformedSignature:
		return "malformed_signature"
	case KindSecretNotConfigured:
		return "secret_not_configured"
	case KindInvalidSignature:
		return "invalid_signature"
	case KindMalformedPayload:
		return "malformed_payload"
	case KindStaleTimestamp:
		return "stale_timestamp"
	case KindReplayedNonce:
		return "replayed_nonce"
	case KindReplayUnavailable:
		return "replay_unavailable"
	default:
		return "unknown"
	}
}

// Error is returned by ReadBody and Authenticator.Authenticate.
// Message is safe to show to callers; it never contains secret or
// signature material.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("envelope: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("envelope: %s", e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// IsKind reports whether err is an envelope Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
