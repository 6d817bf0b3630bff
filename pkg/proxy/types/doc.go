// Package types defines the JSON bodies the gateway writes.
//
// Success:
//
//	{"reply": "final answer", "raw": {...upstream completion...}}
//
// Failure:
//
//	{"error": "Invalid signature"}
//	{"error": "Upstream request failed", "message": "dial tcp: ..."}
//
// A non-2xx upstream answer is the exception: its JSON body is relayed
// verbatim with the upstream status, so ErrorResponse can carry a raw body
// instead of the error fields.
package types
