package transport

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"

	errors "github.com/frahmantamala/payment-gateway/internal"
	"github.com/frahmantamala/payment-gateway/pkg/logger"
)

// MaxBodyBytes caps request bodies read by DecodeJSON.
const MaxBodyBytes = 64 << 10

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// DecodeJSON reads a single JSON document into dst. Oversized, malformed or
// trailing input yields a VALIDATION_FAILED error.
func (h *BaseHandler) DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) *errors.AppError {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return errors.NewValidationError("request body too large", errors.ErrCodeValidationFailed).WithCause(err)
		}
		return errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed).WithCause(err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.NewValidationError("request body must contain a single JSON object", errors.ErrCodeValidationFailed)
	}
	return nil
}

// HandleError writes an AppError using its status and the {"error": ...}
// envelope. The request logger carries the trace id.
func (h *BaseHandler) HandleError(w http.ResponseWriter, r *http.Request, appErr *errors.AppError) {
	log := h.requestLogger(r)
	status, body := appErr.ToHTTPResponse()
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "code", appErr.Code, "category", appErr.Category, "error", appErr.Error())
	} else {
		log.Warn("request rejected", "code", appErr.Code, "category", appErr.Category, "message", appErr.Message)
	}
	h.WriteJSON(w, status, body)
}

// HandleServiceError renders AppErrors as-is and hides anything else behind a 500
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if appErr, ok := errors.IsAppError(err); ok {
		h.HandleError(w, r, appErr)
		return
	}
	h.HandleError(w, r, errors.NewInternalError("internal server error", err))
}

func (h *BaseHandler) requestLogger(r *http.Request) *slog.Logger {
	if r == nil {
		return h.Logger
	}
	if traceID := logger.TraceID(r.Context()); traceID != "" {
		return h.Logger.With("traceID", traceID)
	}
	return h.Logger
}
