package secrets

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/mnbossa/AImend/pkg/config"
)

func defaultSecretsConfig() config.SecretsConfig {
	return config.Default().Secrets
}

func TestResolve(t *testing.T) {
	t.Setenv("WORKER_SHARED_SECRET", "shared")
	t.Setenv("SECRET_HF_TOKEN", "hf_upstream")

	m := NewManager([]SecretProvider{NewEnvProvider("")}, slog.New(slog.DiscardHandler))
	creds, err := Resolve(context.Background(), m, defaultSecretsConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if creds.SharedSecret != "shared" {
		t.Errorf("expected shared secret, got %q", creds.SharedSecret)
	}
	if creds.UpstreamKey != "hf_upstream" {
		t.Errorf("expected upstream key, got %q", creds.UpstreamKey)
	}
	if len(creds.Missing()) != 0 {
		t.Errorf("expected nothing missing, got %v", creds.Missing())
	}
}

func TestResolve_MissingIsNotFatal(t *testing.T) {
	t.Setenv("WORKER_SHARED_SECRET", "shared")
	t.Setenv("SECRET_HF_TOKEN", "")

	var buf bytes.Buffer
	m := NewManager([]SecretProvider{NewEnvProvider("")}, slog.New(slog.NewTextHandler(&buf, nil)))

	creds, err := Resolve(context.Background(), m, defaultSecretsConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	missing := creds.Missing()
	if len(missing) != 1 || missing[0] != "upstream_key" {
		t.Errorf("expected upstream_key missing, got %v", missing)
	}
	if !strings.Contains(buf.String(), "credential not configured") {
		t.Errorf("expected warning, got %s", buf.String())
	}
}

func TestResolve_ProviderFailure(t *testing.T) {
	m := NewManager([]SecretProvider{failingProvider{}}, slog.New(slog.DiscardHandler))

	if _, err := Resolve(context.Background(), m, defaultSecretsConfig()); err == nil {
		t.Fatal("expected provider failure to be returned")
	}
}

func TestCredentials_NeverPrintsValues(t *testing.T) {
	creds := Credentials{SharedSecret: "shared-value", UpstreamKey: "hf_upstream_value"}

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	logger.Info("resolved", "credentials", creds)

	outputs := []string{
		creds.String(),
		fmt.Sprintf("%v", creds),
		fmt.Sprintf("%+v", creds),
		buf.String(),
	}
	for _, out := range outputs {
		if strings.Contains(out, "shared-value") || strings.Contains(out, "hf_upstream_value") {
			t.Errorf("credential value leaked: %s", out)
		}
	}
	if !strings.Contains(buf.String(), `"shared_secret_set":true`) {
		t.Errorf("expected presence flag in log, got %s", buf.String())
	}
}

func TestCredentials_Missing(t *testing.T) {
	tests := []struct {
		name  string
		creds Credentials
		want  string
	}{
		{"both set", Credentials{SharedSecret: "a", UpstreamKey: "b"}, ""},
		{"none set", Credentials{}, "shared_secret,upstream_key"},
		{"secret only", Credentials{SharedSecret: "a"}, "upstream_key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strings.Join(tt.creds.Missing(), ",")
			if got != tt.want {
				t.Errorf("Missing() = %q, want %q", got, tt.want)
			}
		})
	}
}
