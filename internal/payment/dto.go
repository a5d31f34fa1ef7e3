package payment

import (
	"time"

	errors "github.com/frahmantamala/payment-gateway/internal"
	"github.com/frahmantamala/payment-gateway/internal/core/common/validation"
	"github.com/shopspring/decimal"
)

// CreatePaymentRequest is the body of POST /api/v1/payments.
type CreatePaymentRequest struct {
	PartnerID   int64           `json:"partnerId"`
	Amount      decimal.Decimal `json:"amount"`
	CardBin     *string         `json:"cardBin,omitempty"`
	CardLast4   *string         `json:"cardLast4,omitempty"`
	ProductName *string         `json:"productName,omitempty"`
	Enc         string          `json:"enc"`
}

func (r *CreatePaymentRequest) Validate() error {
	validator := validation.NewValidator()

	validator.Field("partnerId", r.PartnerID).MinInt(1, errors.ErrCodeValidationFailed)
	validator.Field("amount", r.Amount).MinDecimal(decimal.NewFromInt(1), errors.ErrCodeInvalidAmount).WholeNumber(errors.ErrCodeInvalidAmount)
	validator.Field("cardBin", r.CardBin).Digits(6, 8, errors.ErrCodeInvalidCardBin)
	validator.Field("cardLast4", r.CardLast4).Digits(4, 4, errors.ErrCodeInvalidCardLast4)
	validator.Field("productName", r.ProductName).MaxLength(255)
	validator.Field("enc", r.Enc).Required()

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

func (r *CreatePaymentRequest) ToCommand() Command {
	return Command{
		PartnerID:   r.PartnerID,
		Amount:      r.Amount,
		CardBin:     r.CardBin,
		CardLast4:   r.CardLast4,
		ProductName: r.ProductName,
		Enc:         r.Enc,
	}
}

type PaymentResponse struct {
	ID             int64           `json:"id"`
	PartnerID      int64           `json:"partnerId"`
	Amount         decimal.Decimal `json:"amount"`
	AppliedFeeRate decimal.Decimal `json:"appliedFeeRate"`
	FeeAmount      decimal.Decimal `json:"feeAmount"`
	NetAmount      decimal.Decimal `json:"netAmount"`
	CardLast4      *string         `json:"cardLast4"`
	ApprovalCode   string          `json:"approvalCode"`
	ApprovedAt     time.Time       `json:"approvedAt"`
	Status         Status          `json:"status"`
	CreatedAt      time.Time       `json:"createdAt"`
}

func NewPaymentResponse(p Payment) PaymentResponse {
	return PaymentResponse{
		ID:             p.ID,
		PartnerID:      p.PartnerID,
		Amount:         p.Amount,
		AppliedFeeRate: p.AppliedFeeRate,
		FeeAmount:      p.FeeAmount,
		NetAmount:      p.NetAmount,
		CardLast4:      p.CardLast4,
		ApprovalCode:   p.ApprovalCode,
		ApprovedAt:     p.ApprovedAt,
		Status:         p.Status,
		CreatedAt:      p.CreatedAt,
	}
}

type SummaryResponse struct {
	Count          int64           `json:"count"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	TotalNetAmount decimal.Decimal `json:"totalNetAmount"`
}

type QueryResponse struct {
	Items      []PaymentResponse `json:"items"`
	Summary    SummaryResponse   `json:"summary"`
	NextCursor *string           `json:"nextCursor"`
	HasNext    bool              `json:"hasNext"`
}

func NewQueryResponse(r *QueryResult) QueryResponse {
	items := make([]PaymentResponse, 0, len(r.Items))
	for _, p := range r.Items {
		items = append(items, NewPaymentResponse(p))
	}
	return QueryResponse{
		Items: items,
		Summary: SummaryResponse{
			Count:          r.Summary.Count,
			TotalAmount:    r.Summary.TotalAmount,
			TotalNetAmount: r.Summary.TotalNetAmount,
		},
		NextCursor: r.NextCursor,
		HasNext:    r.HasNext,
	}
}
