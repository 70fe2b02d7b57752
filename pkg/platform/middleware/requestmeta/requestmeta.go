// Package requestmeta stamps each request with an ID and a request-scoped
// timestamp so every log line and domain timestamp within one request agrees.
package requestmeta

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"eudrgate/pkg/requestcontext"
)

const headerRequestID = "X-Request-ID"

// Middleware assigns a request ID (honoring an inbound X-Request-ID) and
// captures the request start time into the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		ctx = requestcontext.WithTime(ctx, time.Now())
		w.Header().Set(headerRequestID, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
