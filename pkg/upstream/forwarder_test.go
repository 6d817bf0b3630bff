package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newTestForwarder(t *testing.T, handler http.HandlerFunc, mutate func(*Config)) (*Forwarder, *int32) {
	t.Helper()

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	cfg := Config{
		Endpoint: server.URL + "/v1/chat/completions",
		APIKey:   "hf_test_key",
		Timeout:  2 * time.Second,
	}
	if mutate != nil {
		mutate(&cfg)
	}

	f := NewForwarder(cfg)
	t.Cleanup(f.Close)
	return f, &calls
}

func testRequest() Request {
	return Request{
		Model:    "meta-llama/Llama-3.1-8B-Instruct",
		Messages: json.RawMessage(`[{"role":"user","content":"hello"}]`),
	}
}

func TestForward_Success(t *testing.T) {
	var gotAuth, gotType string
	var gotBody map[string]json.RawMessage

	f, calls := newTestForwarder(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"<think>hmm</think>  hi  "}}]}`))
	}, nil)

	result, err := f.Forward(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Forward() error = %v", err)
	}

	if result.Reply != "hi" {
		t.Errorf("Reply = %q, want %q", result.Reply, "hi")
	}
	if result.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d", result.StatusCode)
	}
	if !json.Valid(result.Raw) {
		t.Errorf("Raw is not JSON: %s", result.Raw)
	}
	if atomic.LoadInt32(calls) != 1 {
		t.Errorf("expected exactly one upstream call, got %d", *calls)
	}
	if gotAuth != "Bearer hf_test_key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotType != "application/json" {
		t.Errorf("Content-Type = %q", gotType)
	}
	if string(gotBody["stream"]) != "false" {
		t.Errorf("stream should default to false, got %s", gotBody["stream"])
	}
	if string(gotBody["model"]) != `"meta-llama/Llama-3.1-8B-Instruct"` {
		t.Errorf("model = %s", gotBody["model"])
	}
	if _, ok := gotBody["timestamp"]; ok {
		t.Error("envelope fields must not be forwarded")
	}
}

func TestForward_OmitsEmptyModel(t *testing.T) {
	var gotBody map[string]json.RawMessage
	f, _ := newTestForwarder(t, func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}, nil)

	req := testRequest()
	req.Model = ""
	req.Stream = true
	if _, err := f.Forward(context.Background(), req); err != nil {
		t.Fatalf("Forward() error = %v", err)
	}
	if _, ok := gotBody["model"]; ok {
		t.Error("empty model should be omitted")
	}
	if string(gotBody["stream"]) != "true" {
		t.Errorf("stream = %s", gotBody["stream"])
	}
}

func TestForward_NotConfigured(t *testing.T) {
	f, calls := newTestForwarder(t, func(w http.ResponseWriter, r *http.Request) {}, func(c *Config) {
		c.APIKey = ""
	})

	_, err := f.Forward(context.Background(), testRequest())
	var notConfigured *NotConfiguredError
	if !errors.As(err, &notConfigured) {
		t.Fatalf("expected NotConfiguredError, got %v", err)
	}
	if atomic.LoadInt32(calls) != 0 {
		t.Error("no request should be made without a credential")
	}
}

func TestForward_StatusErrorNotRetried(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantBody string
	}{
		{
			name:     "JSON body relayed verbatim",
			status:   http.StatusTooManyRequests,
			body:     `{"error":"rate limited"}`,
			wantBody: `{"error":"rate limited"}`,
		},
		{
			name:     "text body wrapped",
			status:   http.StatusServiceUnavailable,
			body:     "overloaded",
			wantBody: `{"reply":"overloaded"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, calls := newTestForwarder(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, nil)

			_, err := f.Forward(context.Background(), testRequest())
			var statusErr *StatusError
			if !errors.As(err, &statusErr) {
				t.Fatalf("expected StatusError, got %v", err)
			}
			if statusErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", statusErr.StatusCode, tt.status)
			}
			if string(statusErr.Body) != tt.wantBody {
				t.Errorf("Body = %s, want %s", statusErr.Body, tt.wantBody)
			}
			if n := atomic.LoadInt32(calls); n != 1 {
				t.Errorf("expected 1 upstream call, got %d", n)
			}
		})
	}
}

func TestForward_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := server.URL
	server.Close()

	f := NewForwarder(Config{Endpoint: endpoint, APIKey: "k", Timeout: time.Second})
	_, err := f.Forward(context.Background(), testRequest())

	var unreachable *UnreachableError
	if !errors.As(err, &unreachable) {
		t.Fatalf("expected UnreachableError, got %v", err)
	}
	if strings.Contains(err.Error(), "Bearer") || strings.Contains(err.Error(), "k@") {
		t.Errorf("error leaks credential: %v", err)
	}
}

func TestForward_Timeout(t *testing.T) {
	release := make(chan struct{})
	f, _ := newTestForwarder(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, func(c *Config) {
		c.Timeout = 50 * time.Millisecond
	})
	defer close(release)

	start := time.Now()
	_, err := f.Forward(context.Background(), testRequest())
	var unreachable *UnreachableError
	if !errors.As(err, &unreachable) {
		t.Fatalf("expected UnreachableError, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded in chain, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("timeout not enforced, took %v", elapsed)
	}
}

func TestForward_CallerCancellation(t *testing.T) {
	release := make(chan struct{})
	f, _ := newTestForwarder(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, nil)
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := f.Forward(ctx, testRequest())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", err)
	}
}

func TestForward_ResponseTooLarge(t *testing.T) {
	f, _ := newTestForwarder(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 2048)))
	}, func(c *Config) {
		c.MaxResponseBytes = 1024
	})

	_, err := f.Forward(context.Background(), testRequest())
	if !errors.Is(err, ErrResponseTooLarge) {
		t.Errorf("expected ErrResponseTooLarge, got %v", err)
	}
}

func TestForward_NonJSONSuccess(t *testing.T) {
	f, _ := newTestForwarder(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("plain text answer"))
	}, nil)

	result, err := f.Forward(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Forward() error = %v", err)
	}
	if result.Reply != "plain text answer" {
		t.Errorf("Reply = %q", result.Reply)
	}
	if result.Raw != nil {
		t.Errorf("Raw should be nil for non-JSON bodies, got %s", result.Raw)
	}
}

func TestNewForwarder_Defaults(t *testing.T) {
	f := NewForwarder(Config{Endpoint: "https://router.huggingface.co/v1/chat/completions"})
	if f.Configured() {
		t.Error("forwarder without key should not be configured")
	}
	if f.Host() != "router.huggingface.co" {
		t.Errorf("Host() = %q", f.Host())
	}
	if f.config.ReasoningDelimiter != "</think>" {
		t.Errorf("delimiter default = %q", f.config.ReasoningDelimiter)
	}
	if f.client.Timeout != 0 {
		t.Errorf("client timeout = %v; the per-call context deadline is the only bound", f.client.Timeout)
	}
}
