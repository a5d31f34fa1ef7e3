package internal

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation    ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound      ErrorType = "NOT_FOUND"
	ErrorTypeUnprocessable ErrorType = "UNPROCESSABLE"
	ErrorTypeInternal      ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal      ErrorType = "EXTERNAL_ERROR"
)

// ErrorCategory tells the caller whether money may have moved.
type ErrorCategory string

const (
	CategoryClient                ErrorCategory = "CLIENT"
	CategoryUpstreamRejected      ErrorCategory = "UPSTREAM_REJECTED"
	CategoryUpstreamIndeterminate ErrorCategory = "UPSTREAM_INDETERMINATE"
	CategoryConsistency           ErrorCategory = "CONSISTENCY"
	CategoryInternal              ErrorCategory = "INTERNAL"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidAmount    ErrorCode = "INVALID_AMOUNT"
	ErrCodeInvalidCardBin   ErrorCode = "INVALID_CARD_BIN"
	ErrCodeInvalidCardLast4 ErrorCode = "INVALID_CARD_LAST4"
	ErrCodeInvalidQuery     ErrorCode = "INVALID_QUERY"

	ErrCodePartnerNotFound   ErrorCode = "PARTNER_NOT_FOUND"
	ErrCodePartnerInactive   ErrorCode = "PARTNER_INACTIVE"
	ErrCodeNoPgRoute         ErrorCode = "NO_PG_ROUTE"
	ErrCodeFeePolicyNotFound ErrorCode = "FEE_POLICY_NOT_FOUND"

	ErrCodePgUnauthorized      ErrorCode = "PG_UNAUTHORIZED"
	ErrCodePgInvalidCard       ErrorCode = "PG_INVALID_CARD"
	ErrCodePgStolenOrLost      ErrorCode = "PG_STOLEN_OR_LOST"
	ErrCodePgInsufficientLimit ErrorCode = "PG_INSUFFICIENT_LIMIT"
	ErrCodePgExpiredOrBlocked  ErrorCode = "PG_EXPIRED_OR_BLOCKED"
	ErrCodePgTamperedCard      ErrorCode = "PG_TAMPERED_CARD"
	ErrCodePgUnexpected        ErrorCode = "PG_UNEXPECTED"

	ErrCodeAttemptReconcileFailed ErrorCode = "ATTEMPT_RECONCILE_FAILED"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
)

type AppError struct {
	Type       ErrorType     `json:"type"`
	Category   ErrorCategory `json:"category"`
	Code       ErrorCode     `json:"code"`
	Message    string        `json:"message"`
	Details    interface{}   `json:"details,omitempty"`
	StatusCode int           `json:"-"`
	Cause      error         `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on code so sentinel values work with errors.Is after WithCause copies.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause returns a copy carrying cause, leaving shared sentinels untouched.
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

func (e *AppError) WithMessage(message string) *AppError {
	cp := *e
	cp.Message = message
	return &cp
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Category:   CategoryClient,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Category:   CategoryClient,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Category:   CategoryClient,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnprocessableError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnprocessable,
		Category:   CategoryClient,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

// NewUpstreamRejectedError is a definite refusal from the processor; no money moved.
func NewUpstreamRejectedError(message string, code ErrorCode, status int) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Category:   CategoryUpstreamRejected,
		Code:       code,
		Message:    message,
		StatusCode: status,
	}
}

// NewUpstreamIndeterminateError means the processor may or may not have charged.
func NewUpstreamIndeterminateError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Category:   CategoryUpstreamIndeterminate,
		Code:       ErrCodePgUnexpected,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

func NewConsistencyError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Category:   CategoryConsistency,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Category:   CategoryInternal,
		Code:       ErrCodeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrPartnerNotFound   = NewNotFoundError("partner not found", ErrCodePartnerNotFound)
	ErrPartnerInactive   = NewUnprocessableError("partner is inactive", ErrCodePartnerInactive)
	ErrNoPgRoute         = NewUnprocessableError("no payment gateway supports this partner", ErrCodeNoPgRoute)
	ErrFeePolicyNotFound = NewNotFoundError("no fee policy in effect for partner", ErrCodeFeePolicyNotFound)
	ErrInvalidQuery      = NewValidationError("invalid query", ErrCodeInvalidQuery)

	ErrPgUnauthorized       = NewUpstreamRejectedError("payment gateway authentication failed", ErrCodePgUnauthorized, http.StatusBadRequest)
	ErrPgUnexpected         = NewUpstreamIndeterminateError("payment gateway outcome unknown, manual confirmation required", nil)
	ErrAttemptNotReconciled = NewConsistencyError("payment attempt was not updated to approved", ErrCodeAttemptReconcileFailed)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CategoryOf reports the category of the first AppError in err's chain.
func CategoryOf(err error) ErrorCategory {
	if appErr, ok := IsAppError(err); ok {
		return appErr.Category
	}
	return CategoryInternal
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type     ErrorType     `json:"type"`
		Category ErrorCategory `json:"category"`
		Code     ErrorCode     `json:"code"`
		Message  string        `json:"message"`
		Details  interface{}   `json:"details,omitempty"`
	}{
		Type:     e.Type,
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Details:  e.Details,
	})
}
