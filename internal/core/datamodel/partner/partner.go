package partner

import (
	"time"

	"github.com/shopspring/decimal"
)

type Partner struct {
	ID        int64     `gorm:"primaryKey"`
	Code      string    `gorm:"column:code;not null;uniqueIndex"`
	Name      string    `gorm:"column:name;not null"`
	Active    bool      `gorm:"column:active;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Partner) TableName() string {
	return "partner"
}

type FeePolicy struct {
	ID            int64           `gorm:"primaryKey"`
	PartnerID     int64           `gorm:"column:partner_id;not null;index:idx_fee_policy_partner_effective"`
	EffectiveFrom time.Time       `gorm:"column:effective_from;not null;index:idx_fee_policy_partner_effective"`
	Percentage    decimal.Decimal `gorm:"column:percentage;type:decimal(10,6);not null"`
	FixedFee      decimal.Decimal `gorm:"column:fixed_fee;type:decimal(15,0);not null"`
}

func (FeePolicy) TableName() string {
	return "partner_fee_policy"
}
