package envelope

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
)

func TestSigner_SealRoundTrip(t *testing.T) {
	s := NewSigner(testSecret)
	s.now = fixedClock
	s.nonce = func() string { return "fixed-nonce" }

	stream := false
	sealed, err := s.Seal(Request{
		Model:    "deepseek-ai/DeepSeek-R1",
		Messages: []Message{{Role: "user", Content: "hello"}},
		Stream:   &stream,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `{"timestamp":1700000000,"nonce":"fixed-nonce","model":"deepseek-ai/DeepSeek-R1","messages":[{"role":"user","content":"hello"}],"stream":false}`
	if string(sealed.Body) != want {
		t.Errorf("unexpected body:\n got %s\nwant %s", sealed.Body, want)
	}

	a := NewAuthenticator(testSecret, WithClock(fixedClock))
	p, err := a.Authenticate(context.Background(), sealed.Body, sealed.Signature)
	if err != nil {
		t.Fatalf("sealed envelope rejected: %v", err)
	}
	if p.Nonce != "fixed-nonce" || p.Model != "deepseek-ai/DeepSeek-R1" {
		t.Errorf("unexpected payload: %+v", p)
	}

	var msgs []Message
	if err := json.Unmarshal(p.Messages, &msgs); err != nil || len(msgs) != 1 || msgs[0].Content != "hello" {
		t.Errorf("messages did not survive: %s", p.Messages)
	}
}

func TestSigner_EmptySecret(t *testing.T) {
	if _, err := NewSigner("").Seal(Request{}); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestSigner_NilMessagesEncodeAsArray(t *testing.T) {
	sealed, err := NewSigner(testSecret).Seal(Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(sealed.Body, &doc); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if string(doc["messages"]) != "[]" {
		t.Errorf("expected empty array, got %s", doc["messages"])
	}
}

func TestNewNonce(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9a-f]{32}$`)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		n := NewNonce()
		if !pattern.MatchString(n) {
			t.Fatalf("nonce %q is not 32 lowercase hex characters", n)
		}
		if seen[n] {
			t.Fatalf("duplicate nonce %q", n)
		}
		seen[n] = true
	}
}
