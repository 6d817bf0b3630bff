package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/mnbossa/AImend/pkg/proxy"
	"github.com/mnbossa/AImend/pkg/proxy/types"
	"github.com/mnbossa/AImend/pkg/telemetry/logging"
)

// RecoveryMiddleware recovers from panics in HTTP handlers and returns a 500
// with a generic body. The panic and stack are logged; nothing internal is
// sent to the client.
//
// Example usage:
//
//	handler = RecoveryMiddleware(handler)
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}

				logging.FromContext(r.Context()).ErrorContext(r.Context(), "panic in handler",
					"error", err,
					"method", r.Method,
					"path", r.URL.Path,
					slog.String("stack", string(debug.Stack())),
				)

				_ = proxy.WriteErrorResponse(w, types.NewServerError())
			}
		}()

		next.ServeHTTP(w, r)
	})
}
