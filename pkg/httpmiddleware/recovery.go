package httpmiddleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/lewisedginton/genai_gateway/pkg/logger"
)

const internalErrorBody = `{"error":"internal server error"}`

// Recovery turns a handler panic into a JSON 500 and logs it with the stack
// trace and the request's correlation ID. http.ErrAbortHandler is re-raised.
func Recovery(log logger.Logger, withStack bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler { //nolint:errorlint // sentinel compared by identity, as net/http does
					panic(rec)
				}

				fields := []logger.LogField{
					logger.StringField("panic_error", fmt.Sprintf("%v", rec)),
					logger.StringField("method", r.Method),
					logger.StringField("path", r.URL.Path),
					logger.StringField("remote_addr", r.RemoteAddr),
				}
				if withStack {
					fields = append(fields, logger.StringField("stack_trace", string(debug.Stack())))
				}
				logger.FromContext(r.Context(), log).Error("HTTP request panic recovered", fields...)

				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Connection", "close")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(internalErrorBody))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
