package postgres

import (
	"context"
	"time"

	paymentDatamodel "github.com/frahmantamala/payment-gateway/internal/core/datamodel/payment"
	"github.com/frahmantamala/payment-gateway/internal/payment"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) payment.RepositoryAPI {
	return &PaymentRepository{db: db}
}

// Save stores created_at at millisecond precision so it matches what a
// cursor token can carry.
func (r *PaymentRepository) Save(ctx context.Context, p *paymentDatamodel.Payment) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.CreatedAt = p.CreatedAt.UTC().Truncate(time.Millisecond)
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	p.UpdatedAt = p.UpdatedAt.UTC()
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentRepository) FindPage(ctx context.Context, q payment.PageQuery) (*payment.Page, error) {
	query := applyFilter(r.db.WithContext(ctx).Model(&paymentDatamodel.Payment{}), q.PartnerID, q.Status, q.From, q.To)
	if q.CursorCreatedAt != nil && q.CursorID != nil {
		c := q.CursorCreatedAt.UTC()
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", c, c, *q.CursorID)
	}

	var rows []*paymentDatamodel.Payment
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(q.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	hasNext := q.Limit > 1 && len(rows) >= q.Limit
	if hasNext {
		rows = rows[:q.Limit-1]
	}

	items := make([]payment.Payment, 0, len(rows))
	for _, row := range rows {
		items = append(items, payment.FromDataModel(row))
	}
	return &payment.Page{Items: items, HasNext: hasNext}, nil
}

func (r *PaymentRepository) Summary(ctx context.Context, f payment.SummaryFilter) (*payment.Summary, error) {
	var row struct {
		Count          int64
		TotalAmount    decimal.Decimal
		TotalNetAmount decimal.Decimal
	}
	err := applyFilter(r.db.WithContext(ctx).Model(&paymentDatamodel.Payment{}), f.PartnerID, f.Status, f.From, f.To).
		Select("COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total_amount, COALESCE(SUM(net_amount), 0) AS total_net_amount").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &payment.Summary{
		Count:          row.Count,
		TotalAmount:    row.TotalAmount,
		TotalNetAmount: row.TotalNetAmount,
	}, nil
}

func applyFilter(db *gorm.DB, partnerID *int64, status *payment.Status, from, to *time.Time) *gorm.DB {
	if partnerID != nil {
		db = db.Where("partner_id = ?", *partnerID)
	}
	if status != nil {
		db = db.Where("status = ?", string(*status))
	}
	if from != nil {
		db = db.Where("created_at >= ?", from.UTC())
	}
	if to != nil {
		db = db.Where("created_at < ?", to.UTC())
	}
	return db
}
