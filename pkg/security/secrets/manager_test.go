package secrets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/mnbossa/AImend/pkg/config"
)

func TestManager_GetSecret_ProviderPriority(t *testing.T) {
	t.Setenv("AIMEND_SECRET_TEST_KEY", "env-value")

	tmpDir := t.TempDir()
	writeSecret(t, tmpDir, "test-key", "file-value", 0600)

	fileProvider, err := NewFileProvider(tmpDir, false, nil)
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	defer fileProvider.Close()

	tests := []struct {
		name      string
		providers []SecretProvider
		want      string
	}{
		{"env first", []SecretProvider{NewEnvProvider("AIMEND_SECRET_"), fileProvider}, "env-value"},
		{"file first", []SecretProvider{fileProvider, NewEnvProvider("AIMEND_SECRET_")}, "file-value"},
		{"fallback to file", []SecretProvider{NewEnvProvider("OTHER_"), fileProvider}, "file-value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(tt.providers, slog.New(slog.DiscardHandler))
			got, err := m.GetSecret(context.Background(), "test-key")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestManager_GetSecret_NotFound(t *testing.T) {
	m := NewManager([]SecretProvider{NewEnvProvider("AIMEND_TEST_UNSET_")}, nil)

	_, err := m.GetSecret(context.Background(), "nothing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

type failingProvider struct{}

func (failingProvider) GetSecret(context.Context, string) (string, error) {
	return "", fmt.Errorf("backend offline")
}
func (failingProvider) Provider() string     { return "failing" }
func (failingProvider) Supports(string) bool { return true }

func TestManager_GetSecret_ProviderFailure(t *testing.T) {
	m := NewManager([]SecretProvider{failingProvider{}}, slog.New(slog.DiscardHandler))

	_, err := m.GetSecret(context.Background(), "anything")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("provider failure must not be reported as not found")
	}
	if !strings.Contains(err.Error(), "backend offline") {
		t.Errorf("expected wrapped provider error, got %v", err)
	}
}

func TestNewManagerFromConfig(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name      string
		providers []config.SecretProviderConfig
		wantErr   bool
	}{
		{"env only", []config.SecretProviderConfig{{Type: "env"}}, false},
		{"env and file", []config.SecretProviderConfig{{Type: "env"}, {Type: "file", Path: tmpDir}}, false},
		{"missing file dir", []config.SecretProviderConfig{{Type: "file", Path: "/nonexistent/dir"}}, true},
		{"unknown type", []config.SecretProviderConfig{{Type: "vault"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewManagerFromConfig(config.SecretsConfig{Providers: tt.providers}, slog.New(slog.DiscardHandler))
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if m != nil {
				if err := m.Close(); err != nil {
					t.Errorf("close: %v", err)
				}
			}
		})
	}
}

func TestManager_DebugLogsRedactName(t *testing.T) {
	t.Setenv("WORKER_SHARED_SECRET", "s3cr3t-value")

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	m := NewManager([]SecretProvider{NewEnvProvider("")}, logger)

	if _, err := m.GetSecret(context.Background(), "worker-shared-secret"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "s3cr3t-value") {
		t.Error("secret value leaked into logs")
	}
	if !strings.Contains(out, "wo...et") {
		t.Errorf("expected shortened name in logs, got %s", out)
	}
}

func TestRedactSecretName(t *testing.T) {
	tests := map[string]string{
		"abc":             "***",
		"abcd":            "***",
		"secret-hf-token": "se...en",
	}
	for in, want := range tests {
		if got := redactSecretName(in); got != want {
			t.Errorf("redactSecretName(%q) = %q, want %q", in, got, want)
		}
	}
}
