package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypePaymentApproved   = "payment.approved"
	EventTypeAttemptFailed     = "pg_attempt.failed"
	EventTypeAttemptUnresolved = "pg_attempt.unresolved"
)

type PaymentApprovedEvent struct {
	BaseEvent
	PaymentID    int64  `json:"payment_id"`
	PartnerID    int64  `json:"partner_id"`
	AttemptID    int64  `json:"attempt_id"`
	Amount       string `json:"amount"`
	NetAmount    string `json:"net_amount"`
	ApprovalCode string `json:"approval_code"`
	Provider     string `json:"provider"`
}

func NewPaymentApprovedEvent(paymentID, partnerID, attemptID int64, amount, netAmount, approvalCode, provider string) *PaymentApprovedEvent {
	return &PaymentApprovedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePaymentApproved,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"payment_id":    paymentID,
				"partner_id":    partnerID,
				"attempt_id":    attemptID,
				"amount":        amount,
				"net_amount":    netAmount,
				"approval_code": approvalCode,
				"provider":      provider,
			},
		},
		PaymentID:    paymentID,
		PartnerID:    partnerID,
		AttemptID:    attemptID,
		Amount:       amount,
		NetAmount:    netAmount,
		ApprovalCode: approvalCode,
		Provider:     provider,
	}
}

// AttemptEvent reports an attempt that did not end in a payment. Reason is
// the gateway reason code for failures and the error text for unresolved ones.
type AttemptEvent struct {
	BaseEvent
	AttemptID int64  `json:"attempt_id"`
	PartnerID int64  `json:"partner_id"`
	Amount    string `json:"amount"`
	Provider  string `json:"provider"`
	Reason    string `json:"reason"`
}

func NewAttemptFailedEvent(attemptID, partnerID int64, amount, provider, reason string) *AttemptEvent {
	return newAttemptEvent(EventTypeAttemptFailed, attemptID, partnerID, amount, provider, reason)
}

func NewAttemptUnresolvedEvent(attemptID, partnerID int64, amount, provider, reason string) *AttemptEvent {
	return newAttemptEvent(EventTypeAttemptUnresolved, attemptID, partnerID, amount, provider, reason)
}

func newAttemptEvent(eventType string, attemptID, partnerID int64, amount, provider, reason string) *AttemptEvent {
	return &AttemptEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"attempt_id": attemptID,
				"partner_id": partnerID,
				"amount":     amount,
				"provider":   provider,
				"reason":     reason,
			},
		},
		AttemptID: attemptID,
		PartnerID: partnerID,
		Amount:    amount,
		Provider:  provider,
		Reason:    reason,
	}
}
