package payment

import (
	"context"
	"time"

	paymentDatamodel "github.com/frahmantamala/payment-gateway/internal/core/datamodel/payment"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusApproved Status = "APPROVED"
	StatusCanceled Status = "CANCELED"
)

// ParseStatus accepts only the exact upper-case names.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusApproved, StatusCanceled:
		return Status(s), true
	}
	return "", false
}

// Payment is an approved charge with its fee resolved. Once saved it is
// never updated.
type Payment struct {
	ID             int64
	PartnerID      int64
	Amount         decimal.Decimal
	AppliedFeeRate decimal.Decimal
	FeeAmount      decimal.Decimal
	NetAmount      decimal.Decimal
	CardBin        *string
	CardLast4      *string
	ApprovalCode   string
	ApprovedAt     time.Time
	Status         Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Command is one payment request from a partner.
type Command struct {
	PartnerID   int64
	Amount      decimal.Decimal
	CardBin     *string
	CardLast4   *string
	ProductName *string
	Enc         string
}

// PageQuery asks the store for one keyset page. Limit already includes the
// extra probe row.
type PageQuery struct {
	PartnerID       *int64
	Status          *Status
	From            *time.Time
	To              *time.Time
	CursorCreatedAt *time.Time
	CursorID        *int64
	Limit           int
}

// Page holds at most Limit-1 items; HasNext reports whether the probe row
// was found.
type Page struct {
	Items   []Payment
	HasNext bool
}

type SummaryFilter struct {
	PartnerID *int64
	Status    *Status
	From      *time.Time
	To        *time.Time
}

type Summary struct {
	Count          int64
	TotalAmount    decimal.Decimal
	TotalNetAmount decimal.Decimal
}

type RepositoryAPI interface {
	Save(ctx context.Context, p *paymentDatamodel.Payment) error
	FindPage(ctx context.Context, q PageQuery) (*Page, error)
	Summary(ctx context.Context, f SummaryFilter) (*Summary, error)
}

func ToDataModel(p Payment) *paymentDatamodel.Payment {
	return &paymentDatamodel.Payment{
		ID:             p.ID,
		PartnerID:      p.PartnerID,
		Amount:         p.Amount,
		AppliedFeeRate: p.AppliedFeeRate,
		FeeAmount:      p.FeeAmount,
		NetAmount:      p.NetAmount,
		CardBin:        p.CardBin,
		CardLast4:      p.CardLast4,
		ApprovalCode:   p.ApprovalCode,
		ApprovedAt:     p.ApprovedAt.UTC(),
		Status:         string(p.Status),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func FromDataModel(p *paymentDatamodel.Payment) Payment {
	return Payment{
		ID:             p.ID,
		PartnerID:      p.PartnerID,
		Amount:         p.Amount,
		AppliedFeeRate: p.AppliedFeeRate,
		FeeAmount:      p.FeeAmount,
		NetAmount:      p.NetAmount,
		CardBin:        p.CardBin,
		CardLast4:      p.CardLast4,
		ApprovalCode:   p.ApprovalCode,
		ApprovedAt:     p.ApprovedAt.UTC(),
		Status:         Status(p.Status),
		CreatedAt:      p.CreatedAt.UTC(),
		UpdatedAt:      p.UpdatedAt.UTC(),
	}
}
