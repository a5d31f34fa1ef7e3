package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/payment-gateway/internal/transport"
	"github.com/frahmantamala/payment-gateway/pkg/logger"
)

const (
	filteredValue  = "[FILTERED]"
	oversizedValue = "[BODY TOO LARGE]"
	maxLoggedBytes = 4 << 10
	// responses are redacted in full up to this size, then cut to maxLoggedBytes
	maxCapturedResponse = 1 << 20
)

// redactor decides which header and JSON keys are too sensitive to log.
// contains matches substrings of the lower-cased key, exact whole keys only.
type redactor struct {
	contains []string
	exact    map[string]struct{}
}

// card payloads: enc holds the encrypted card, cardBin and cardNumber the
// clear digits. cardLast4 stays visible for support lookups.
var defaultRedactor = redactor{
	contains: []string{
		"password",
		"token",
		"authorization",
		"secret",
		"api-key",
		"api_key",
		"apikey",
		"cookie",
		"credential",
		"cardbin",
		"card_bin",
		"cardnumber",
		"cvc",
		"cvv",
	},
	exact: map[string]struct{}{
		"enc":    {},
		"expiry": {},
		"pin":    {},
	},
}

func (rd redactor) sensitive(key string) bool {
	k := strings.ToLower(key)
	if _, ok := rd.exact[k]; ok {
		return true
	}
	for _, s := range rd.contains {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}

func (rd redactor) headers(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		if rd.sensitive(name) {
			out[name] = filteredValue
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

// body renders a JSON payload with sensitive keys masked. Non-JSON payloads
// are logged by size only.
func (rd redactor) body(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return "[NON-JSON BODY]"
	}
	out, err := json.Marshal(rd.value(v))
	if err != nil {
		return "[UNLOGGABLE BODY]"
	}
	if len(out) > maxLoggedBytes {
		return string(out[:maxLoggedBytes]) + "...[TRUNCATED]"
	}
	return string(out)
}

func (rd redactor) value(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			if rd.sensitive(k) {
				out[k] = filteredValue
				continue
			}
			out[k] = rd.value(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = rd.value(item)
		}
		return out
	default:
		return t
	}
}

// LoggingMiddleware logs each request and its response with card data and
// credentials masked. It expects RequestID to run first.
func LoggingMiddleware(lg *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := r.Context()
			reqLog := lg
			if traceID := logger.TraceID(ctx); traceID != "" {
				reqLog = lg.With("traceID", traceID)
			}

			reqBody := ""
			if r.Body != nil && r.Body != http.NoBody {
				prefix, _ := io.ReadAll(io.LimitReader(r.Body, transport.MaxBodyBytes+1))
				r.Body = replayBody{Reader: io.MultiReader(bytes.NewReader(prefix), r.Body), Closer: r.Body}
				if len(prefix) > transport.MaxBodyBytes {
					reqBody = oversizedValue
				} else {
					reqBody = defaultRedactor.body(prefix)
				}
			}

			reqLog.InfoContext(ctx, "incoming request",
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
				"headers", defaultRedactor.headers(r.Header),
				"body", reqBody,
			)

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			level := slog.LevelInfo
			switch {
			case rw.statusCode >= 500:
				level = slog.LevelError
			case rw.statusCode >= 400:
				level = slog.LevelWarn
			}
			reqLog.Log(ctx, level, "response",
				"method", r.Method,
				"path", r.URL.Path,
				"status_code", rw.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
				"response_size", rw.size,
				"body", rw.loggedBody(),
			)
		})
	}
}

// replayBody serves the logged prefix and then the unread rest of the
// client body, so handlers still enforce their own size limit.
type replayBody struct {
	io.Reader
	io.Closer
}

// responseWriter records the status and keeps a bounded copy of the body.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	size        int
	body        bytes.Buffer
	overflowed  bool
	wroteHeader bool
}

func (rw *responseWriter) loggedBody() string {
	if rw.overflowed {
		return oversizedValue
	}
	return defaultRedactor.body(rw.body.Bytes())
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	if !rw.overflowed {
		if rw.body.Len()+len(b) > maxCapturedResponse {
			rw.overflowed = true
			rw.body.Reset()
		} else {
			rw.body.Write(b)
		}
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}
