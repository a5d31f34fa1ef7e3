package pghistory

import (
	"context"
	"time"

	pghistoryDatamodel "github.com/frahmantamala/payment-gateway/internal/core/datamodel/pghistory"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusFailed   Status = "FAILED"
)

func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusFailed
}

// Attempt is the audit record of one call to an external gateway. It is
// written PENDING before the call and moves to a terminal status at most once.
type Attempt struct {
	ID         int64
	Amount     decimal.Decimal
	CardBin    *string
	CardLast4  *string
	PgProvider string
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func NewPendingAttempt(amount decimal.Decimal, cardBin, cardLast4 *string, provider string) Attempt {
	return Attempt{
		Amount:     amount,
		CardBin:    cardBin,
		CardLast4:  cardLast4,
		PgProvider: provider,
		Status:     StatusPending,
	}
}

type RepositoryAPI interface {
	Save(ctx context.Context, h *pghistoryDatamodel.PgHistory) error
	// UpdateStatus moves a PENDING attempt to status and reports rows affected.
	UpdateStatus(ctx context.Context, id int64, status Status) (int64, error)
	ListPending(ctx context.Context, olderThan time.Time, limit int) ([]*pghistoryDatamodel.PgHistory, error)
}

func ToDataModel(a Attempt) *pghistoryDatamodel.PgHistory {
	return &pghistoryDatamodel.PgHistory{
		ID:         a.ID,
		Amount:     a.Amount,
		CardBin:    a.CardBin,
		CardLast4:  a.CardLast4,
		PgProvider: a.PgProvider,
		Status:     string(a.Status),
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

func FromDataModel(h *pghistoryDatamodel.PgHistory) Attempt {
	return Attempt{
		ID:         h.ID,
		Amount:     h.Amount,
		CardBin:    h.CardBin,
		CardLast4:  h.CardLast4,
		PgProvider: h.PgProvider,
		Status:     Status(h.Status),
		CreatedAt:  h.CreatedAt.UTC(),
		UpdatedAt:  h.UpdatedAt.UTC(),
	}
}
