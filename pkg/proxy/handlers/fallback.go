package handlers

import (
	"net/http"

	"github.com/mnbossa/AImend/pkg/proxy/types"
)

// NotFoundHandler answers every path the gateway does not serve.
func NotFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(r.Context(), w, types.NewNotFoundError())
	})
}
