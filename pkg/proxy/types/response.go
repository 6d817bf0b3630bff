package types

import "encoding/json"

// ChatResponse is the success body of POST /chat.
type ChatResponse struct {
	// Reply is the assistant text with any reasoning prefix removed.
	Reply string `json:"reply"`

	// Raw is the full upstream completion, omitted when the upstream did
	// not answer with JSON.
	Raw json.RawMessage `json:"raw,omitempty"`
}
