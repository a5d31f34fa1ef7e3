package middleware

import (
	"net/http"
	"strings"

	"github.com/frahmantamala/payment-gateway/pkg/logger"

	"github.com/google/uuid"
)

const (
	TraceIDHeader = "X-Trace-ID"
	maxTraceIDLen = 128
)

// RequestID reuses a caller supplied X-Trace-ID or mints one, stores it on
// the request context for logging and echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := strings.TrimSpace(r.Header.Get(TraceIDHeader))
		if traceID == "" || len(traceID) > maxTraceIDLen {
			traceID = uuid.NewString()
		}

		w.Header().Set(TraceIDHeader, traceID)
		next.ServeHTTP(w, r.WithContext(logger.WithTraceID(r.Context(), traceID)))
	})
}
