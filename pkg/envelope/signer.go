package envelope

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the chat payload a caller wants to send.
type Request struct {
	Model    string    `json:"model,omitempty"`
	Messages []Message `json:"messages"`
	Stream   *bool     `json:"stream,omitempty"`
}

// Sealed is a signed envelope ready to send.
type Sealed struct {
	Body      []byte
	Signature string
	Nonce     string
	Timestamp int64
}

type sealedBody struct {
	Timestamp int64     `json:"timestamp"`
	Nonce     string    `json:"nonce"`
	Model     string    `json:"model,omitempty"`
	Messages  []Message `json:"messages"`
	Stream    *bool     `json:"stream,omitempty"`
}

// Signer builds envelopes for a trusted caller.
type Signer struct {
	secret []byte
	now    func() time.Time
	nonce  func() string
}

// NewSigner creates a Signer with the wall clock and random nonces.
func NewSigner(secret string) *Signer {
	return &Signer{
		secret: []byte(secret),
		now:    time.Now,
		nonce:  NewNonce,
	}
}

// Seal stamps req with the current time and a fresh nonce, serializes it
// compactly and signs the resulting bytes.
func (s *Signer) Seal(req Request) (*Sealed, error) {
	if len(s.secret) == 0 {
		return nil, fmt.Errorf("envelope: signing secret is empty")
	}

	body := sealedBody{
		Timestamp: s.now().Unix(),
		Nonce:     s.nonce(),
		Model:     req.Model,
		Messages:  req.Messages,
		Stream:    req.Stream,
	}
	if body.Messages == nil {
		body.Messages = []Message{}
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("envelope: encode request: %w", err)
	}

	return &Sealed{
		Body:      raw,
		Signature: SignatureHeader(s.secret, raw),
		Nonce:     body.Nonce,
		Timestamp: body.Timestamp,
	}, nil
}

// NewNonce returns a random (version 4) UUID as 32 hex characters.
func NewNonce() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
