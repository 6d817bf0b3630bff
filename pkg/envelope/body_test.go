package envelope

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

// countingReader records how many bytes were pulled from the source.
type countingReader struct {
	r    *strings.Reader
	read int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.read += n
	return n, err
}

func TestReadBody(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		max      int64
		wantKind Kind
	}{
		{name: "empty body", body: "", max: 16},
		{name: "under limit", body: `{"a":1}`, max: 16},
		{name: "exactly at limit", body: strings.Repeat("x", 16), max: 16},
		{name: "one byte over", body: strings.Repeat("x", 17), max: 16, wantKind: KindPayloadTooLarge},
		{name: "far over", body: strings.Repeat("x", 1<<20), max: DefaultMaxBodyBytes, wantKind: KindPayloadTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := ReadBody(strings.NewReader(tt.body), tt.max)
			if tt.wantKind != 0 {
				if !IsKind(err, tt.wantKind) {
					t.Fatalf("expected %v, got %v", tt.wantKind, err)
				}
				if raw != nil {
					t.Error("expected no bytes on failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(raw, []byte(tt.body)) {
				t.Errorf("body was altered: got %q", raw)
			}
		})
	}
}

func TestReadBody_StopsAtLimit(t *testing.T) {
	src := &countingReader{r: strings.NewReader(strings.Repeat("x", 1<<20))}

	_, err := ReadBody(src, 1024)
	if !IsKind(err, KindPayloadTooLarge) {
		t.Fatalf("expected payload too large, got %v", err)
	}
	if src.read > 1025 {
		t.Errorf("read %d bytes, expected at most limit+1", src.read)
	}
}

func TestReadBody_ReadFailure(t *testing.T) {
	_, err := ReadBody(failingReader{}, 1024)
	if !IsKind(err, KindPayloadTooLarge) {
		t.Fatalf("expected payload too large for unreadable body, got %v", err)
	}
	if !strings.Contains(err.Error(), "connection reset") {
		t.Errorf("expected cause to be wrapped, got %v", err)
	}
}

func TestReadBody_PreservesBytes(t *testing.T) {
	// Whitespace, key order and escapes must survive untouched.
	body := "{ \"b\": 2,\n\t\"a\": \"\\u00e9\" }"
	raw, err := ReadBody(strings.NewReader(body), 1024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(raw) != body {
		t.Errorf("expected %q, got %q", body, raw)
	}
}
