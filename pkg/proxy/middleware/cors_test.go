package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mnbossa/AImend/pkg/config"
)

func TestCORSMiddleware(t *testing.T) {
	var called bool
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	wrapped := CORSMiddleware(config.Default().CORS)(handler)

	t.Run("adds CORS headers to every response", func(t *testing.T) {
		called = false
		req := httptest.NewRequest(http.MethodPost, "/chat", nil)
		w := httptest.NewRecorder()

		wrapped.ServeHTTP(w, req)

		want := map[string]string{
			"Access-Control-Allow-Origin":  "*",
			"Access-Control-Allow-Methods": "POST, OPTIONS",
			"Access-Control-Allow-Headers": "Content-Type, X-Signature",
			"Access-Control-Max-Age":       "600",
		}
		for k, v := range want {
			if got := w.Header().Get(k); got != v {
				t.Errorf("%s = %q, want %q", k, got, v)
			}
		}
		if !called {
			t.Error("expected next handler to run")
		}
	})

	t.Run("answers preflight on any path", func(t *testing.T) {
		for _, path := range []string{"/chat", "/unknown", "/"} {
			called = false
			req := httptest.NewRequest(http.MethodOptions, path, nil)
			w := httptest.NewRecorder()

			wrapped.ServeHTTP(w, req)

			if w.Code != http.StatusNoContent {
				t.Errorf("%s: status = %d, want 204", path, w.Code)
			}
			if w.Body.Len() != 0 {
				t.Errorf("%s: expected empty body, got %q", path, w.Body.String())
			}
			if called {
				t.Errorf("%s: preflight must not reach the handler", path)
			}
		}
	})
}

func TestCORSMiddleware_ConfiguredOrigin(t *testing.T) {
	cfg := config.Default().CORS
	cfg.AllowedOrigin = "https://chat.example.com"

	wrapped := CORSMiddleware(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodPost, "/chat", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://chat.example.com" {
		t.Errorf("expected configured origin regardless of request, got %q", got)
	}
	if w.Header().Get("Vary") != "Origin" {
		t.Error("expected Vary: Origin for a specific origin")
	}
}

func TestCORSMiddleware_EmptyOriginDefaultsToWildcard(t *testing.T) {
	wrapped := CORSMiddleware(config.CORSConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/chat", nil))

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard, got %q", got)
	}
	if w.Header().Get("Access-Control-Max-Age") != "" {
		t.Error("expected no max age when unset")
	}
}
