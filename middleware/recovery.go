package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/alexander-edwards/asana-clone-app-fullstack/logging"
)

// Recover turns a panic into the generic 500 response. The panic value is
// only exposed when exposeDetail is set.
func Recover(exposeDetail bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logging.Logger.WithField("request_id", RequestIDFromContext(r.Context())).
					Errorf("Event ID: HTTP_PANIC, Description: Panic serving %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())

				body := map[string]string{"error": "Something went wrong!"}
				if exposeDetail {
					body["message"] = fmt.Sprint(rec)
				}
				writeJSON(w, http.StatusInternalServerError, body)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
