package paymentgateway

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type ApprovalStatus string

const (
	ApprovalStatusApproved ApprovalStatus = "APPROVED"
	ApprovalStatusCanceled ApprovalStatus = "CANCELED"
)

// ApproveRequest is what every gateway adapter receives. Enc is the
// client-encrypted card payload and is forwarded untouched.
type ApproveRequest struct {
	PartnerID   int64
	Amount      decimal.Decimal
	CardBin     *string
	CardLast4   *string
	ProductName *string
	Enc         string
}

func (r *ApproveRequest) Validate() error {
	if r.Amount.LessThan(decimal.NewFromInt(1)) {
		return errors.New("amount must be at least 1")
	}
	if r.Enc == "" {
		return errors.New("enc is required")
	}
	return nil
}

type ApproveResult struct {
	ApprovalCode string
	ApprovedAt   time.Time
	Status       ApprovalStatus
}

// TestPgRequest is the TestPG wire body.
type TestPgRequest struct {
	Enc string `json:"enc"`
}

// TestPgApproveResponse is the TestPG 200 body. ApprovedAt may come with or
// without a zone offset.
type TestPgApproveResponse struct {
	ApprovalCode string `json:"approvalCode"`
	ApprovedAt   string `json:"approvedAt"`
	Status       string `json:"status"`
}

// TestPgErrorResponse is the TestPG 422 body.
type TestPgErrorResponse struct {
	Code        int    `json:"code"`
	ErrorCode   string `json:"errorCode"`
	Message     string `json:"message"`
	ReferenceID string `json:"referenceId"`
}
