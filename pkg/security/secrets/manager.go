package secrets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mnbossa/AImend/pkg/config"
)

// Manager orchestrates multiple secret providers with priority-based fallback.
//
// The manager tries each provider in order until one successfully returns
// a value.
type Manager struct {
	providers []SecretProvider
	logger    *slog.Logger
}

// NewManager creates a new secret manager with the given providers.
//
// Providers are tried in the order they are provided. The first provider
// that supports a secret and successfully returns a value wins.
func NewManager(providers []SecretProvider, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		providers: providers,
		logger:    logger,
	}
}

// NewManagerFromConfig builds the providers listed in cfg.
func NewManagerFromConfig(cfg config.SecretsConfig, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}

	providers := make([]SecretProvider, 0, len(cfg.Providers))
	for i, pc := range cfg.Providers {
		switch pc.Type {
		case "env":
			providers = append(providers, NewEnvProvider(pc.Prefix))
		case "file":
			fp, err := NewFileProvider(pc.Path, pc.Watch, logger)
			if err != nil {
				closeProviders(providers)
				return nil, fmt.Errorf("secrets.providers[%d]: %w", i, err)
			}
			providers = append(providers, fp)
		default:
			closeProviders(providers)
			return nil, fmt.Errorf("secrets.providers[%d]: unknown provider type %q", i, pc.Type)
		}
	}

	return NewManager(providers, logger), nil
}

// GetSecret retrieves a secret from the first provider that supports it.
//
// Returns an error wrapping ErrNotFound when no provider has a value, or
// the last provider failure otherwise.
func (m *Manager) GetSecret(ctx context.Context, name string) (string, error) {
	var lastErr error
	for _, provider := range m.providers {
		if !provider.Supports(name) {
			continue
		}

		value, err := provider.GetSecret(ctx, name)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				lastErr = err
			}
			m.logger.Debug("provider failed to get secret",
				"provider", provider.Provider(),
				"name", redactSecretName(name),
				"error", err,
			)
			continue
		}

		m.logger.Debug("secret retrieved",
			"provider", provider.Provider(),
			"name", redactSecretName(name),
		)
		return value, nil
	}

	if lastErr != nil {
		return "", fmt.Errorf("failed to get secret %q: %w", name, lastErr)
	}

	return "", fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Close releases provider resources such as file watchers.
func (m *Manager) Close() error {
	return closeProviders(m.providers)
}

func closeProviders(providers []SecretProvider) error {
	var errs []error
	for _, p := range providers {
		if c, ok := p.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// redactSecretName returns a shortened secret name for debug logs.
func redactSecretName(name string) string {
	if len(name) <= 4 {
		return "***"
	}
	return name[:2] + "..." + name[len(name)-2:]
}
