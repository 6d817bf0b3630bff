package envelope

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Payload is an authenticated envelope. Fields that had an unexpected JSON
// type are left at their zero value; the validation package checks shape
// against Raw.
type Payload struct {
	// Timestamp is the envelope time in unix seconds.
	Timestamp int64

	// Nonce is the caller-chosen unique value, empty if absent.
	Nonce string

	// Model is the upstream model identifier, empty if absent.
	Model string

	// Messages is the messages array exactly as sent.
	Messages json.RawMessage

	// Stream is the caller's stream flag, nil when omitted.
	Stream *bool

	// Raw holds the authenticated bytes.
	Raw []byte
}

// StreamRequested reports the stream flag, defaulting to false.
func (p *Payload) StreamRequested() bool {
	return p.Stream != nil && *p.Stream
}

type wirePayload struct {
	Timestamp json.RawMessage `json:"timestamp"`
	Nonce     json.RawMessage `json:"nonce"`
	Model     json.RawMessage `json:"model"`
	Messages  json.RawMessage `json:"messages"`
	Stream    json.RawMessage `json:"stream"`
}

// parsePayload decodes an authenticated body. It fails only when raw is not
// a JSON object. The returned float is the timestamp as sent, NaN when it
// is absent or not numeric.
func parsePayload(raw []byte) (*Payload, float64, error) {
	var w wirePayload
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, math.NaN(), err
	}

	p := &Payload{Raw: raw}

	// Fractional seconds are truncated here only; freshness is checked
	// against the float as sent.
	ts := parseTimestamp(w.Timestamp)
	if !math.IsNaN(ts) && !math.IsInf(ts, 0) {
		p.Timestamp = int64(ts)
	}

	_ = json.Unmarshal(w.Nonce, &p.Nonce)
	_ = json.Unmarshal(w.Model, &p.Model)

	var stream bool
	if len(w.Stream) > 0 && json.Unmarshal(w.Stream, &stream) == nil {
		p.Stream = &stream
	}

	if len(w.Messages) > 0 && string(w.Messages) != "null" {
		p.Messages = w.Messages
	}

	return p, ts, nil
}

// parseTimestamp accepts a JSON number or a numeric string.
func parseTimestamp(v json.RawMessage) float64 {
	if len(v) == 0 {
		return math.NaN()
	}

	s := string(v)
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(v, &s); err != nil {
			return math.NaN()
		}
		s = strings.TrimSpace(s)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
