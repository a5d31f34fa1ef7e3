package pghistory

import (
	"time"

	"github.com/shopspring/decimal"
)

type PgHistory struct {
	ID         int64           `gorm:"primaryKey"`
	Amount     decimal.Decimal `gorm:"column:amount;type:decimal(15,0);not null"`
	CardBin    *string         `gorm:"column:card_bin;size:8"`
	CardLast4  *string         `gorm:"column:card_last4;size:4"`
	PgProvider string          `gorm:"column:pg_provider;not null"`
	Status     string          `gorm:"column:status;size:20;not null;index"`
	CreatedAt  time.Time       `gorm:"column:created_at"`
	UpdatedAt  time.Time       `gorm:"column:updated_at"`
}

func (PgHistory) TableName() string {
	return "pg_history"
}
