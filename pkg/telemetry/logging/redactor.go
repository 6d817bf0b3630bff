package logging

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/mnbossa/AImend/pkg/config"
)

// Redacted replaces the value of any attribute with a sensitive key.
const Redacted = "[REDACTED]"

// Redactor masks credentials and signing material in log attributes.
type Redactor struct {
	patterns []*redactPattern
}

// redactPattern contains a compiled regex and replacement string.
type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Built-in pattern names.
const (
	PatternBearerToken = "bearer_token"
	PatternSignature   = "signature"
	PatternHFToken     = "hf_token"
	PatternAPIKey      = "api_key"
	PatternPassword    = "password"
)

var defaultPatterns = []config.RedactPattern{
	{Name: PatternBearerToken, Pattern: `Bearer\s+[a-zA-Z0-9\-._~+/]+=*`, Replacement: "Bearer ***"},
	{Name: PatternSignature, Pattern: `sha256=[0-9a-fA-F]{8,}`, Replacement: "sha256=***"},
	{Name: PatternHFToken, Pattern: `\bhf_[a-zA-Z0-9]{16,}`, Replacement: "hf_***"},
	{Name: PatternAPIKey, Pattern: `\bsk-[a-zA-Z0-9_\-]{8,}`, Replacement: "sk-***"},
	{Name: PatternPassword, Pattern: `(?i)(password|passwd|pwd)[:=]\s*[^\s&]+`, Replacement: "$1=***"},
}

// sensitiveSubstrings mark a key as sensitive wherever they appear in it.
var sensitiveSubstrings = []string{
	"secret", "token", "password", "passwd",
	"authorization", "signature", "api_key", "apikey",
	"private_key", "credential",
}

// sensitiveExact mark a key as sensitive only on an exact match.
var sensitiveExact = map[string]bool{
	"key":  true,
	"auth": true,
	"sig":  true,
}

// NewRedactor creates a Redactor with the built-in patterns followed by the
// custom ones. An invalid custom pattern is an error.
func NewRedactor(custom []config.RedactPattern) (*Redactor, error) {
	r := &Redactor{}

	for _, p := range defaultPatterns {
		r.patterns = append(r.patterns, &redactPattern{
			name:        p.Name,
			regex:       regexp.MustCompile(p.Pattern),
			replacement: p.Replacement,
		})
	}

	for _, p := range custom {
		regex, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid redact pattern %q: %w", p.Name, err)
		}
		replacement := p.Replacement
		if replacement == "" {
			replacement = "***"
		}
		r.patterns = append(r.patterns, &redactPattern{
			name:        p.Name,
			regex:       regex,
			replacement: replacement,
		})
	}

	return r, nil
}

// RedactString applies every pattern to value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}

	redacted := value
	for _, pattern := range r.patterns {
		redacted = pattern.regex.ReplaceAllString(redacted, pattern.replacement)
	}

	return redacted
}

// RedactAttr returns a copy of a with sensitive content masked. Groups are
// redacted recursively and LogValuers are resolved first.
func (r *Redactor) RedactAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	if IsSensitiveKey(a.Key) {
		if a.Value.Kind() == slog.KindString && a.Value.String() == "" {
			return a
		}
		return slog.String(a.Key, Redacted)
	}

	switch a.Value.Kind() {
	case slog.KindString:
		return slog.String(a.Key, r.RedactString(a.Value.String()))
	case slog.KindGroup:
		group := a.Value.Group()
		redacted := make([]slog.Attr, len(group))
		for i, ga := range group {
			redacted[i] = r.RedactAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(redacted...)}
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok {
			return slog.String(a.Key, r.RedactString(err.Error()))
		}
	}

	return a
}

// IsSensitiveKey reports whether a key name indicates secret material.
func IsSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)

	if sensitiveExact[lowerKey] {
		return true
	}
	for _, sensitive := range sensitiveSubstrings {
		if strings.Contains(lowerKey, sensitive) {
			return true
		}
	}

	return false
}

// RedactingHandler is a slog.Handler that masks attributes before passing
// records on.
type RedactingHandler struct {
	next     slog.Handler
	redactor *Redactor
}

// NewRedactingHandler wraps next with redactor.
func NewRedactingHandler(next slog.Handler, redactor *Redactor) *RedactingHandler {
	return &RedactingHandler{next: next, redactor: redactor}
}

// Enabled implements slog.Handler.
func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *RedactingHandler) Handle(ctx context.Context, rec slog.Record) error {
	out := slog.NewRecord(rec.Time, rec.Level, h.redactor.RedactString(rec.Message), rec.PC)
	rec.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.redactor.RedactAttr(a))
		return true
	})
	return h.next.Handle(ctx, out)
}

// WithAttrs implements slog.Handler.
func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = h.redactor.RedactAttr(a)
	}
	return &RedactingHandler{next: h.next.WithAttrs(redacted), redactor: h.redactor}
}

// WithGroup implements slog.Handler.
func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{next: h.next.WithGroup(name), redactor: h.redactor}
}
