package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatText is plain text output (default).
	FormatText OutputFormat = "text"
	// FormatJSON is JSON output.
	FormatJSON OutputFormat = "json"
)

// Formatter formats command output.
type Formatter interface {
	FormatTo(w io.Writer, data interface{}) error
}

// TextFormatter writes values with their String form, one per line.
// Field lists are written as aligned "key: value" lines.
type TextFormatter struct{}

// Field is one line of text output.
type Field struct {
	Key   string
	Value interface{}
}

// Fields is an ordered list of key/value lines. JSONFormatter writes it
// as an object, which does not keep the order.
type Fields []Field

// FormatTo writes data to writer in text format.
func (f *TextFormatter) FormatTo(w io.Writer, data interface{}) error {
	fields, ok := data.(Fields)
	if !ok {
		_, err := fmt.Fprintf(w, "%v\n", data)
		return err
	}

	width := 0
	for _, field := range fields {
		if len(field.Key) > width {
			width = len(field.Key)
		}
	}
	for _, field := range fields {
		if _, err := fmt.Fprintf(w, "%-*s  %v\n", width+1, field.Key+":", field.Value); err != nil {
			return err
		}
	}
	return nil
}

// JSONFormatter formats output as JSON.
type JSONFormatter struct {
	Indent bool
}

// FormatTo writes data to writer in JSON format.
func (f *JSONFormatter) FormatTo(w io.Writer, data interface{}) error {
	if fields, ok := data.(Fields); ok {
		m := make(map[string]interface{}, len(fields))
		for _, field := range fields {
			m[field.Key] = field.Value
		}
		data = m
	}

	encoder := json.NewEncoder(w)
	if f.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

// NewFormatter creates a new formatter for the specified format.
func NewFormatter(format OutputFormat) (Formatter, error) {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}, nil
	case FormatText, "":
		return &TextFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q (use text or json)", format)
	}
}
