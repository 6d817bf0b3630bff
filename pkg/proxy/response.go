package proxy

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mnbossa/AImend/pkg/proxy/types"
)

// ContentType is set on every gateway response.
const ContentType = "application/json; charset=UTF-8"

// WriteJSONResponse writes data as JSON with the given status.
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) error {
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}
	return writeBody(w, statusCode, body)
}

// WriteErrorResponse writes errResp. A relayed upstream body is written
// byte for byte.
func WriteErrorResponse(w http.ResponseWriter, errResp *types.ErrorResponse) error {
	if len(errResp.Body) > 0 {
		return writeBody(w, errResp.StatusCode, errResp.Body)
	}
	return WriteJSONResponse(w, errResp.StatusCode, errResp)
}

// WriteChatResponse writes the success body of POST /chat.
func WriteChatResponse(w http.ResponseWriter, resp *types.ChatResponse) error {
	return WriteJSONResponse(w, http.StatusOK, resp)
}

func writeBody(w http.ResponseWriter, statusCode int, body []byte) error {
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(statusCode)
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}
