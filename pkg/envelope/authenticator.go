package envelope

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	// SignaturePrefix is the algorithm tag in front of the hex digest.
	SignaturePrefix = "sha256="

	// DefaultHeaderName is the request header carrying the signature.
	DefaultHeaderName = "X-Signature"

	// DefaultWindow is the freshness window used when none is configured.
	DefaultWindow = 120 * time.Second
)

// NonceGuard records nonces. Remember returns false when the nonce was
// already recorded and has not yet expired.
type NonceGuard interface {
	Remember(ctx context.Context, nonce string, expires time.Time) (bool, error)
}

// Authenticator verifies signed envelopes against one shared secret.
// It is safe for concurrent use; the secret never changes after construction.
type Authenticator struct {
	secret     []byte
	window     time.Duration
	now        func() time.Time
	guard      NonceGuard
	headerName string
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithWindow sets the freshness window.
func WithWindow(d time.Duration) Option {
	return func(a *Authenticator) {
		if d > 0 {
			a.window = d
		}
	}
}

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) {
		if now != nil {
			a.now = now
		}
	}
}

// WithNonceGuard enables replay protection.
func WithNonceGuard(g NonceGuard) Option {
	return func(a *Authenticator) {
		a.guard = g
	}
}

// WithHeaderName sets the header name used in error messages.
func WithHeaderName(name string) Option {
	return func(a *Authenticator) {
		if name != "" {
			a.headerName = name
		}
	}
}

// NewAuthenticator creates an Authenticator for the given shared secret.
// An empty secret is accepted; every request then fails with
// KindSecretNotConfigured.
func NewAuthenticator(secret string, opts ...Option) *Authenticator {
	a := &Authenticator{
		secret:     []byte(secret),
		window:     DefaultWindow,
		now:        time.Now,
		headerName: DefaultHeaderName,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Window returns the configured freshness window.
func (a *Authenticator) Window() time.Duration {
	return a.window
}

// Authenticate verifies raw against the signature header value and returns
// the parsed payload. The checks run in a fixed order: header shape, secret
// presence, digest, JSON, timestamp, nonce.
func (a *Authenticator) Authenticate(ctx context.Context, raw []byte, header string) (*Payload, error) {
	supplied, ok := ParseSignatureHeader(header)
	if !ok {
		return nil, newError(KindMalformedSignature, "Missing or malformed "+a.headerName, nil)
	}

	if len(a.secret) == 0 {
		return nil, newError(KindSecretNotConfigured, "Shared secret not configured", nil)
	}

	if !ConstantTimeEqual(Sign(a.secret, raw), supplied) {
		return nil, newError(KindInvalidSignature, "Invalid signature", nil)
	}

	payload, ts, err := parsePayload(raw)
	if err != nil {
		return nil, newError(KindMalformedPayload, "Invalid JSON", err)
	}

	now := a.now()
	if !a.fresh(ts, now) {
		return nil, newError(KindStaleTimestamp, "Timestamp out of window", nil)
	}

	if a.guard != nil {
		if payload.Nonce == "" {
			return nil, newError(KindMalformedPayload, "Missing nonce", nil)
		}
		// A replay can only succeed while the timestamp is still fresh. The
		// extra second covers the fraction dropped from Payload.Timestamp.
		expires := time.Unix(payload.Timestamp, 0).Add(a.window + time.Second)
		accepted, err := a.guard.Remember(ctx, payload.Nonce, expires)
		if err != nil {
			return nil, newError(KindReplayUnavailable, "Replay protection unavailable", err)
		}
		if !accepted {
			return nil, newError(KindReplayedNonce, "Nonce already used", nil)
		}
	}

	return payload, nil
}

func (a *Authenticator) fresh(ts float64, now time.Time) bool {
	if math.IsNaN(ts) || math.IsInf(ts, 0) || ts <= 0 {
		return false
	}
	nowSec := float64(now.Unix())
	return math.Abs(nowSec-ts) <= a.window.Seconds()
}

// ParseSignatureHeader extracts the hex digest from "sha256=<hex>".
func ParseSignatureHeader(value string) (string, bool) {
	if !strings.HasPrefix(value, SignaturePrefix) {
		return "", false
	}
	digest := value[len(SignaturePrefix):]
	if digest == "" {
		return "", false
	}
	return digest, true
}

// Sign returns the lowercase hex HMAC-SHA-256 of raw under secret.
func Sign(secret, raw []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(raw)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignatureHeader returns the full header value for raw.
func SignatureHeader(secret, raw []byte) string {
	return SignaturePrefix + Sign(secret, raw)
}

// ConstantTimeEqual compares two hex digests. Strings of different length
// are unequal immediately; otherwise every byte is compared.
func ConstantTimeEqual(computed, supplied string) bool {
	return subtle.ConstantTimeCompare([]byte(computed), []byte(supplied)) == 1
}

// String hides the secret when an Authenticator is printed.
func (a *Authenticator) String() string {
	return fmt.Sprintf("Authenticator{window: %s, replay: %t}", a.window, a.guard != nil)
}
