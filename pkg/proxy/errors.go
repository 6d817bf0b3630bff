package proxy

import (
	"errors"
	"net/http"

	"github.com/mnbossa/AImend/pkg/envelope"
	"github.com/mnbossa/AImend/pkg/proxy/types"
	"github.com/mnbossa/AImend/pkg/upstream"
	"github.com/mnbossa/AImend/pkg/validation"
)

// HandleError converts a pipeline error into the response sent to the
// caller. It is the only place errors are mapped to HTTP statuses.
//
// Example usage:
//
//	if err != nil {
//	    errResp := HandleError(err)
//	    WriteErrorResponse(w, errResp)
//	    return
//	}
func HandleError(err error) *types.ErrorResponse {
	var envErr *envelope.Error
	if errors.As(err, &envErr) {
		return handleEnvelopeError(envErr)
	}

	var valErr *validation.Error
	if errors.As(err, &valErr) {
		return types.NewErrorResponse(http.StatusBadRequest, types.OutcomeInvalidRequest, valErr.Message)
	}

	var notConfigured *upstream.NotConfiguredError
	if errors.As(err, &notConfigured) {
		return types.NewErrorResponse(
			http.StatusInternalServerError,
			types.OutcomeUpstreamNotConfigured,
			types.MessageUpstreamNotConfigured,
		)
	}

	var statusErr *upstream.StatusError
	if errors.As(err, &statusErr) {
		return &types.ErrorResponse{
			Error:      types.MessageUpstreamFailed,
			StatusCode: statusErr.StatusCode,
			Outcome:    types.OutcomeUpstreamError,
			Body:       statusErr.Body,
		}
	}

	var unreachable *upstream.UnreachableError
	if errors.As(err, &unreachable) {
		resp := types.NewErrorResponse(
			http.StatusBadGateway,
			types.OutcomeUpstreamUnreachable,
			types.MessageUpstreamFailed,
		)
		resp.Message = unreachable.Err.Error()
		return resp
	}

	return types.NewServerError()
}

// handleEnvelopeError maps each envelope kind to its status. The message
// was written to be shown to callers.
func handleEnvelopeError(err *envelope.Error) *types.ErrorResponse {
	var status int
	var outcome string

	switch err.Kind {
	case envelope.KindPayloadTooLarge:
		status, outcome = http.StatusRequestEntityTooLarge, types.OutcomePayloadTooLarge
	case envelope.KindMalformedSignature:
		status, outcome = http.StatusUnauthorized, types.OutcomeMalformedSignature
	case envelope.KindSecretNotConfigured:
		status, outcome = http.StatusInternalServerError, types.OutcomeSecretNotConfigured
	case envelope.KindInvalidSignature:
		status, outcome = http.StatusUnauthorized, types.OutcomeInvalidSignature
	case envelope.KindMalformedPayload:
		status, outcome = http.StatusBadRequest, types.OutcomeMalformedPayload
	case envelope.KindStaleTimestamp:
		status, outcome = http.StatusBadRequest, types.OutcomeStaleTimestamp
	case envelope.KindReplayedNonce:
		status, outcome = http.StatusConflict, types.OutcomeReplayedNonce
	case envelope.KindReplayUnavailable:
		status, outcome = http.StatusServiceUnavailable, types.OutcomeReplayUnavailable
	default:
		return types.NewServerError()
	}

	return types.NewErrorResponse(status, outcome, err.Message)
}
