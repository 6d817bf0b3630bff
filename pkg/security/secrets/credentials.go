package secrets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mnbossa/AImend/pkg/config"
)

// Credentials holds the two secrets the gateway needs. They are resolved
// once at startup and passed by value; they are never conflated.
type Credentials struct {
	// SharedSecret verifies inbound envelope signatures.
	SharedSecret string

	// UpstreamKey is sent to the upstream as a bearer token.
	UpstreamKey string
}

const redacted = "[REDACTED]"

// String never reveals either value.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{SharedSecret:%s, UpstreamKey:%s}",
		presence(c.SharedSecret), presence(c.UpstreamKey))
}

// LogValue implements slog.LogValuer and reports presence only.
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("shared_secret_set", c.SharedSecret != ""),
		slog.Bool("upstream_key_set", c.UpstreamKey != ""),
	)
}

// Missing lists the names of credentials that are empty.
func (c Credentials) Missing() []string {
	var missing []string
	if c.SharedSecret == "" {
		missing = append(missing, "shared_secret")
	}
	if c.UpstreamKey == "" {
		missing = append(missing, "upstream_key")
	}
	return missing
}

func presence(v string) string {
	if v == "" {
		return "<unset>"
	}
	return redacted
}

// Resolve looks up both credentials by the names in cfg.
//
// A credential that no provider holds is left empty and logged as a
// warning: requests then fail with a configuration error and readiness
// reports unhealthy. Any other provider failure is returned.
func Resolve(ctx context.Context, m *Manager, cfg config.SecretsConfig) (Credentials, error) {
	var creds Credentials

	for _, item := range []struct {
		name string
		dst  *string
	}{
		{cfg.SharedSecretName, &creds.SharedSecret},
		{cfg.UpstreamKeyName, &creds.UpstreamKey},
	} {
		value, err := m.GetSecret(ctx, item.name)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				m.logger.Warn("credential not configured", "name", item.name)
				continue
			}
			return Credentials{}, err
		}
		*item.dst = value
	}

	return creds, nil
}
