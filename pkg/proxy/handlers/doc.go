// Package handlers provides the gateway's HTTP handlers.
//
// ChatHandler serves POST /chat. Its collaborators are small interfaces
// so that each stage can be replaced in tests:
//
//   - Authenticator: *envelope.Authenticator
//   - Validator: *validation.Validator
//   - Forwarder: *upstream.Forwarder
//
// # Request Flow
//
//  1. Reject methods other than POST with 405
//  2. Read at most MaxBodyBytes of raw body
//  3. Authenticate the raw bytes (span envelope.authenticate)
//  4. Validate the payload shape
//  5. Forward to the upstream (span upstream.forward)
//  6. Write {"reply", "raw"}
//
// Any failing stage ends the request through proxy.HandleError. The
// outcome is recorded once: a metrics sample, span attributes and the
// fields of the request log line.
//
// NotFoundHandler answers every other path with 404.
package handlers
