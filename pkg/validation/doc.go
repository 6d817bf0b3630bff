// Package validation checks the shape of an authenticated chat envelope
// before it is forwarded upstream.
//
// The messages array must be non-empty and every element must carry a role
// and content. The model identifier, when present, must be a string no
// longer than the configured bound. Shape rules live in an embedded JSON
// Schema; the length bound is checked in code so it can be configured.
package validation
