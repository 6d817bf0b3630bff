package upstream

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// ContentPath is the gjson path of the assistant answer in a
// chat-completion response.
const ContentPath = "choices.0.message.content"

// Result is a normalized upstream success.
type Result struct {
	// Reply is the user-facing answer.
	Reply string

	// Raw is the upstream JSON body. It is nil when the body was not JSON.
	Raw json.RawMessage

	// StatusCode is the upstream HTTP status.
	StatusCode int
}

// ExtractReply returns the text after the first occurrence of delimiter,
// trimmed of surrounding whitespace. Content without the delimiter is
// returned verbatim.
func ExtractReply(content, delimiter string) string {
	if delimiter == "" {
		return content
	}
	idx := strings.Index(content, delimiter)
	if idx < 0 {
		return content
	}
	return strings.TrimSpace(content[idx+len(delimiter):])
}

// ParseReply normalizes a 2xx upstream body. A body that is not JSON is
// taken as the literal reply.
func ParseReply(body []byte, delimiter string) *Result {
	if !gjson.ValidBytes(body) {
		return &Result{Reply: string(body)}
	}

	content := gjson.GetBytes(body, ContentPath)
	return &Result{
		Reply: ExtractReply(content.String(), delimiter),
		Raw:   json.RawMessage(body),
	}
}

type errorBody struct {
	Reply string `json:"reply"`
}

// errorPayload returns the body relayed to the caller for a non-2xx
// upstream response: JSON verbatim, anything else as {"reply": text}.
func errorPayload(body []byte) []byte {
	if len(body) > 0 && gjson.ValidBytes(body) {
		return body
	}
	wrapped, err := json.Marshal(errorBody{Reply: string(body)})
	if err != nil {
		return []byte(`{"reply":""}`)
	}
	return wrapped
}
