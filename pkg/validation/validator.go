package validation

import (
	_ "embed"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xeipuuv/gojsonschema"

	"github.com/mnbossa/AImend/pkg/envelope"
)

// DefaultMaxModelLength bounds the model identifier when none is configured.
const DefaultMaxModelLength = 200

//go:embed schema.json
var envelopeSchema []byte

// Error reports an envelope that does not have the expected shape.
// Message is safe to return to callers.
type Error struct {
	Message string
	Details []string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Details) == 0 {
		return "validation: " + e.Message
	}
	return fmt.Sprintf("validation: %s (%s)", e.Message, strings.Join(e.Details, "; "))
}

// Validator checks envelopes against the compiled schema.
// It is safe for concurrent use.
type Validator struct {
	schema         *gojsonschema.Schema
	maxModelLength int
}

// New compiles the envelope schema. maxModelLength <= 0 selects the default.
func New(maxModelLength int) (*Validator, error) {
	if maxModelLength <= 0 {
		maxModelLength = DefaultMaxModelLength
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(envelopeSchema))
	if err != nil {
		return nil, fmt.Errorf("validation: compile schema: %w", err)
	}

	return &Validator{schema: schema, maxModelLength: maxModelLength}, nil
}

// Validate returns nil when p may be forwarded, or an *Error.
func (v *Validator) Validate(p *envelope.Payload) error {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(p.Raw))
	if err != nil {
		return &Error{Message: "Invalid JSON", Details: []string{err.Error()}}
	}

	if !result.Valid() {
		return schemaError(result.Errors())
	}

	if utf8.RuneCountInString(p.Model) > v.maxModelLength {
		return &Error{
			Message: "Model identifier too long",
			Details: []string{fmt.Sprintf("model exceeds %d characters", v.maxModelLength)},
		}
	}

	return nil
}

// schemaError picks the caller-facing message by the most important
// failing field; every violation is kept in Details.
func schemaError(errs []gojsonschema.ResultError) *Error {
	out := &Error{}
	rank := 0

	for _, re := range errs {
		out.Details = append(out.Details, re.String())

		msg, r := classify(re)
		if r > rank {
			out.Message, rank = msg, r
		}
	}

	if out.Message == "" {
		out.Message = "Invalid request"
	}
	return out
}

func classify(re gojsonschema.ResultError) (string, int) {
	field := re.Field()

	switch {
	case field == "messages",
		field == "(root)" && re.Type() == "required" && re.Details()["property"] == "messages":
		return "Missing messages array", 4
	case strings.HasPrefix(field, "messages."):
		return "Each message needs a role and content", 3
	case field == "model":
		return "Model identifier must be a string", 2
	case field == "stream":
		return "stream must be a boolean", 1
	default:
		return "", 0
	}
}
