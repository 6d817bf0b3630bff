package proxy

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mnbossa/AImend/pkg/proxy/types"
)

func TestWriteJSONResponse(t *testing.T) {
	rec := httptest.NewRecorder()

	if err := WriteJSONResponse(rec, http.StatusAccepted, map[string]string{"ok": "yes"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Errorf("expected status 202, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != ContentType {
		t.Errorf("expected content type %q, got %q", ContentType, ct)
	}
	if rec.Body.String() != `{"ok":"yes"}` {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestWriteJSONResponse_EncodeFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := WriteJSONResponse(rec, http.StatusOK, make(chan int)); err == nil {
		t.Error("expected encoding error")
	}
}

func TestWriteErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		resp       *types.ErrorResponse
		wantStatus int
		wantBody   string
	}{
		{
			name:       "error only",
			resp:       types.NewErrorResponse(http.StatusUnauthorized, types.OutcomeInvalidSignature, "Invalid signature"),
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"Invalid signature"}`,
		},
		{
			name: "error with message",
			resp: &types.ErrorResponse{
				Error:      "Upstream request failed",
				Message:    "connection refused",
				StatusCode: http.StatusBadGateway,
			},
			wantStatus: http.StatusBadGateway,
			wantBody:   `{"error":"Upstream request failed","message":"connection refused"}`,
		},
		{
			name: "relayed body",
			resp: &types.ErrorResponse{
				Error:      "Upstream request failed",
				StatusCode: http.StatusTooManyRequests,
				Body:       json.RawMessage(`{"error":{"message":"rate limited"}}`),
			},
			wantStatus: http.StatusTooManyRequests,
			wantBody:   `{"error":{"message":"rate limited"}}`,
		},
		{
			name:       "route fallback",
			resp:       types.NewNotFoundError(),
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":"Only POST /chat supported"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			if err := WriteErrorResponse(rec, tt.resp); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if rec.Body.String() != tt.wantBody {
				t.Errorf("body = %s, want %s", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestWriteChatResponse(t *testing.T) {
	tests := []struct {
		name     string
		resp     *types.ChatResponse
		wantBody string
	}{
		{
			name:     "with raw",
			resp:     &types.ChatResponse{Reply: "hi", Raw: json.RawMessage(`{"choices":[]}`)},
			wantBody: `{"reply":"hi","raw":{"choices":[]}}`,
		},
		{
			name:     "without raw",
			resp:     &types.ChatResponse{Reply: "plain text"},
			wantBody: `{"reply":"plain text"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			if err := WriteChatResponse(rec, tt.resp); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != http.StatusOK {
				t.Errorf("expected 200, got %d", rec.Code)
			}
			if rec.Body.String() != tt.wantBody {
				t.Errorf("body = %s, want %s", rec.Body.String(), tt.wantBody)
			}
		})
	}
}
