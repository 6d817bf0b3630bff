// Package envelope reads and authenticates signed request envelopes.
//
// An envelope is the raw JSON body of a chat request, signed by the caller
// with HMAC-SHA-256 under a shared secret and sent with a header of the form
//
//	X-Signature: sha256=<lowercase hex digest>
//
// The digest always covers the exact bytes received. The body is parsed
// only after the signature has been verified, and the embedded timestamp
// must fall inside the freshness window around the gateway clock. When a
// NonceGuard is attached, each nonce is accepted at most once within the
// window.
//
// Signer produces envelopes the way trusted callers do, for the CLI and
// for tests.
package envelope
