package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mnbossa/AImend/pkg/config"
	"github.com/mnbossa/AImend/pkg/envelope"
	"github.com/mnbossa/AImend/pkg/security/secrets"
	"github.com/mnbossa/AImend/pkg/telemetry/health"
	"github.com/mnbossa/AImend/pkg/telemetry/logging"
)

const testSecret = "server-test-secret"

func testConfig(t *testing.T, upstreamURL string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Server.ListenAddress = "127.0.0.1:0"
	cfg.Server.ShutdownTimeout = 2 * time.Second
	cfg.Upstream.Endpoint = upstreamURL
	cfg.Upstream.Timeout = 2 * time.Second
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config, creds secrets.Credentials) *Server {
	t.Helper()
	srv, err := New(cfg, creds,
		WithLogger(logging.Discard()),
		WithVersion(health.VersionInfo{Version: "1.2.3", Commit: "abc123"}),
	)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func fakeUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"<think>x</think>pong"}}]}`)
	}))
	t.Cleanup(up.Close)
	return up
}

func TestNew_NilConfig(t *testing.T) {
	if _, err := New(nil, secrets.Credentials{}); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestNew_UnknownReplayBackend(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.Replay.Backend = "postgres"

	if _, err := New(cfg, secrets.Credentials{}, WithLogger(logging.Discard())); err == nil {
		t.Fatal("expected error for unknown replay backend")
	}
}

func TestServer_ChatRoundTrip(t *testing.T) {
	up := fakeUpstream(t)
	srv := newTestServer(t, testConfig(t, up.URL), secrets.Credentials{SharedSecret: testSecret, UpstreamKey: "hf_x"})

	sealed, err := envelope.NewSigner(testSecret).Seal(envelope.Request{
		Messages: []envelope.Message{{Role: "user", Content: "ping"}},
	})
	if err != nil {
		t.Fatalf("seal: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, ChatPath, bytes.NewReader(sealed.Body))
	req.Header.Set("X-Signature", sealed.Signature)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Reply string `json:"reply"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if out.Reply != "pong" {
		t.Errorf("expected reply 'pong', got %q", out.Reply)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS headers on chat response")
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected request ID header")
	}

	// The same envelope again is a replay.
	req = httptest.NewRequest(http.MethodPost, ChatPath, bytes.NewReader(sealed.Body))
	req.Header.Set("X-Signature", sealed.Signature)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 on replay, got %d", rec.Code)
	}
}

func TestServer_Routes(t *testing.T) {
	up := fakeUpstream(t)
	srv := newTestServer(t, testConfig(t, up.URL), secrets.Credentials{SharedSecret: testSecret, UpstreamKey: "hf_x"})

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"unknown path", http.MethodPost, "/other", http.StatusNotFound, `{"error":"Only POST /chat supported"}`},
		{"root path", http.MethodGet, "/", http.StatusNotFound, `{"error":"Only POST /chat supported"}`},
		{"GET chat", http.MethodGet, ChatPath, http.StatusMethodNotAllowed, `{"error":"Only POST /chat supported"}`},
		{"preflight", http.MethodOptions, ChatPath, http.StatusNoContent, ""},
		{"preflight unknown path", http.MethodOptions, "/anything", http.StatusNoContent, ""},
		{"liveness", http.MethodGet, "/health", http.StatusOK, ""},
		{"readiness", http.MethodGet, "/ready", http.StatusOK, ""},
		{"version", http.MethodGet, "/version", http.StatusOK, ""},
		{"metrics", http.MethodGet, "/metrics", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("body = %s, want %s", rec.Body.String(), tt.wantBody)
			}
			if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "POST, OPTIONS" {
				t.Errorf("expected CORS methods on every response, got %q", got)
			}
		})
	}
}

func TestServer_ReadinessReportsMissingCredentials(t *testing.T) {
	srv := newTestServer(t, testConfig(t, "http://127.0.0.1:1"), secrets.Credentials{SharedSecret: testSecret})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "upstream_key") {
		t.Errorf("expected missing upstream key in readiness body: %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), testSecret) {
		t.Error("readiness body leaked the shared secret")
	}
}

func TestServer_MetricsExposeRequests(t *testing.T) {
	srv := newTestServer(t, testConfig(t, "http://127.0.0.1:1"), secrets.Credentials{SharedSecret: testSecret, UpstreamKey: "hf_x"})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, ChatPath, strings.NewReader("{}")))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without signature, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	for _, want := range []string{
		"aimend_gateway_requests_total",
		`outcome="malformed_signature"`,
		"aimend_gateway_auth_failures_total",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestServer_MetricsDisabled(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.Telemetry.Metrics.Enabled = false
	srv := newTestServer(t, cfg, secrets.Credentials{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 with metrics disabled, got %d", rec.Code)
	}
}

func TestServer_ReplayDisabled(t *testing.T) {
	up := fakeUpstream(t)
	cfg := testConfig(t, up.URL)
	cfg.Replay.Enabled = false
	srv := newTestServer(t, cfg, secrets.Credentials{SharedSecret: testSecret, UpstreamKey: "hf_x"})

	sealed, err := envelope.NewSigner(testSecret).Seal(envelope.Request{
		Messages: []envelope.Message{{Role: "user", Content: "ping"}},
	})
	if err != nil {
		t.Fatalf("seal: %v", err)
	}

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, ChatPath, bytes.NewReader(sealed.Body))
		req.Header.Set("X-Signature", sealed.Signature)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("attempt %d: expected 200 without replay protection, got %d", i+1, rec.Code)
		}
	}
}

func TestServer_StartAndShutdown(t *testing.T) {
	srv := newTestServer(t, testConfig(t, "http://127.0.0.1:1"), secrets.Credentials{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Start(ctx)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for srv.Addr() == nil && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if srv.Addr() == nil {
		t.Fatal("server did not start listening")
	}
	if !srv.IsRunning() {
		t.Error("expected server to report running")
	}

	resp, err := http.Get("http://" + srv.Addr().String() + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 from liveness, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("unexpected shutdown error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	if srv.IsRunning() {
		t.Error("expected server to report stopped")
	}
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Errorf("second shutdown should be a no-op, got %v", err)
	}
}

func TestServer_StartTwice(t *testing.T) {
	srv := newTestServer(t, testConfig(t, "http://127.0.0.1:1"), secrets.Credentials{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = srv.Start(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for !srv.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	if err := srv.Start(ctx); err == nil {
		t.Error("expected error starting a running server")
	}
}
