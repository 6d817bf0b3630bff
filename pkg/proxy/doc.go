// Package proxy is the HTTP surface of the gateway.
//
// The gateway accepts one route, POST /chat, and runs each request
// through a fixed pipeline:
//
//	read body (bounded) -> authenticate envelope -> validate payload
//	    -> forward upstream -> build {"reply", "raw"}
//
// Each stage returns a typed error. HandleError maps those errors to
// statuses and bodies in one place; WriteErrorResponse and
// WriteChatResponse write them with the JSON content type.
//
// # Layout
//
//   - handlers: the chat handler and the 404/405 fallback
//   - middleware: CORS, request ID, recovery, request timeout
//   - types: response bodies and outcome labels
//
// # Error Mapping
//
//	envelope.KindPayloadTooLarge      413  Request body too large or unreadable
//	envelope.KindMalformedSignature   401  Missing or malformed X-Signature
//	envelope.KindSecretNotConfigured  500  Shared secret not configured
//	envelope.KindInvalidSignature     401  Invalid signature
//	envelope.KindMalformedPayload     400  Invalid JSON / Missing nonce
//	envelope.KindStaleTimestamp       400  Timestamp out of window
//	envelope.KindReplayedNonce        409  Nonce already used
//	envelope.KindReplayUnavailable    503  Replay protection unavailable
//	*validation.Error                 400  first shape violation
//	*upstream.NotConfiguredError      500  Upstream token not configured
//	*upstream.UnreachableError        502  Upstream request failed + message
//	*upstream.StatusError             upstream status, upstream body
//	anything else                     500  Internal server error
//
// No response body ever includes the shared secret, the upstream token or
// the signature a caller sent.
package proxy
