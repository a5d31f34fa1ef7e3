package paymentgateway

import "fmt"

type ReasonCode string

const (
	ReasonUnauthorized      ReasonCode = "UNAUTHORIZED"
	ReasonInvalidCard       ReasonCode = "INVALID_CARD"
	ReasonStolenOrLost      ReasonCode = "STOLEN_OR_LOST"
	ReasonInsufficientLimit ReasonCode = "INSUFFICIENT_LIMIT"
	ReasonExpiredOrBlocked  ReasonCode = "EXPIRED_OR_BLOCKED"
	ReasonTamperedCard      ReasonCode = "TAMPERED_CARD"
	ReasonUnexpectedError   ReasonCode = "UNEXPECTED_ERROR"
)

// ParseReasonCode maps a processor error code onto a known reason. Unknown
// codes are treated as an invalid card.
func ParseReasonCode(code string) ReasonCode {
	switch ReasonCode(code) {
	case ReasonStolenOrLost, ReasonInsufficientLimit, ReasonExpiredOrBlocked, ReasonTamperedCard:
		return ReasonCode(code)
	default:
		return ReasonInvalidCard
	}
}

// AuthenticationError means the processor rejected our credentials.
type AuthenticationError struct {
	Provider string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("%s: authentication failed", e.Provider)
}

// ValidationError is a definite decline with a reason.
type ValidationError struct {
	Provider    string
	Reason      ReasonCode
	Code        int
	ErrorCode   string
	Message     string
	ReferenceID string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (code=%d, errorCode=%s, referenceId=%s)", e.Provider, e.Message, e.Code, e.ErrorCode, e.ReferenceID)
}

// UnexpectedError covers every outcome we cannot classify: transport
// failures, timeouts, 5xx, unreadable bodies.
type UnexpectedError struct {
	Provider   string
	StatusCode int
	Message    string
	Cause      error
}

func (e *UnexpectedError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Provider, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status=%d)", msg, e.StatusCode)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *UnexpectedError) Unwrap() error {
	return e.Cause
}
