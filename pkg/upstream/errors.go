package upstream

import (
	"errors"
	"fmt"
)

// ErrResponseTooLarge is wrapped by UnreachableError when the upstream body
// exceeds the configured ceiling.
var ErrResponseTooLarge = errors.New("upstream response exceeds size limit")

// NotConfiguredError is returned when no upstream credential is available.
type NotConfiguredError struct{}

// Error implements the error interface.
func (e *NotConfiguredError) Error() string {
	return "upstream: token not configured"
}

// UnreachableError wraps a transport-level failure. The request may or may
// not have reached the upstream; it is not retried.
type UnreachableError struct {
	Err error
}

// Error implements the error interface.
func (e *UnreachableError) Error() string {
	return fmt.Sprintf("upstream: request failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *UnreachableError) Unwrap() error {
	return e.Err
}

// StatusError carries a non-2xx upstream response. Body is always a JSON
// document: the upstream body verbatim when it is valid JSON, otherwise
// {"reply": <text>} with no error key.
type StatusError struct {
	StatusCode int
	Body       []byte
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream: status %d", e.StatusCode)
}
