package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

type Payment struct {
	ID             int64           `gorm:"primaryKey"`
	PartnerID      int64           `gorm:"column:partner_id;not null;index:idx_payment_partner_created"`
	Amount         decimal.Decimal `gorm:"column:amount;type:decimal(15,0);not null"`
	AppliedFeeRate decimal.Decimal `gorm:"column:applied_fee_rate;type:decimal(10,6);not null"`
	FeeAmount      decimal.Decimal `gorm:"column:fee_amount;type:decimal(15,0);not null"`
	NetAmount      decimal.Decimal `gorm:"column:net_amount;type:decimal(15,0);not null"`
	CardBin        *string         `gorm:"column:card_bin;size:8"`
	CardLast4      *string         `gorm:"column:card_last4;size:4"`
	ApprovalCode   string          `gorm:"column:approval_code;not null"`
	ApprovedAt     time.Time       `gorm:"column:approved_at;not null"`
	Status         string          `gorm:"column:status;size:20;not null"`
	CreatedAt      time.Time       `gorm:"column:created_at;index:idx_payment_partner_created;index:idx_payment_created_id"`
	UpdatedAt      time.Time       `gorm:"column:updated_at"`
}

func (Payment) TableName() string {
	return "payment"
}
