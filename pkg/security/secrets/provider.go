// Package secrets resolves the gateway's credentials from pluggable sources.
package secrets

import (
	"context"
	"errors"
)

// ErrNotFound reports that a provider holds no value for a secret name.
var ErrNotFound = errors.New("secret not found")

// SecretProvider retrieves secrets from a backend.
//
// Implementations include environment variables and files. Providers are
// chained by Manager with priority-based fallback.
type SecretProvider interface {
	// GetSecret retrieves a secret by name.
	// Returns an error wrapping ErrNotFound if the backend has no value.
	GetSecret(ctx context.Context, name string) (string, error)

	// Provider returns the provider name (env, file).
	Provider() string

	// Supports indicates if this provider supports the given secret name.
	// This is used to skip providers that cannot hold a name at all.
	Supports(name string) bool
}
