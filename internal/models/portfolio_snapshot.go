package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"fundledger/internal/uuid"
)

// PortfolioSnapshot records the fund's dashboard totals at a point in time.
// This is immutable time-series data, no Base embed.
type PortfolioSnapshot struct {
	ID            string          `gorm:"type:uuid;primaryKey" json:"id"`
	RecordedAt    time.Time       `gorm:"not null;uniqueIndex" json:"recorded_at"`
	TotalValue    decimal.Decimal `gorm:"type:numeric(28,10);not null" json:"total_value"`
	CashBalance   decimal.Decimal `gorm:"type:numeric(28,10);not null" json:"cash_balance"`
	InvestedValue decimal.Decimal `gorm:"type:numeric(28,10);not null" json:"invested_value"`
	PnLUSD        decimal.Decimal `gorm:"column:pnl_usd;type:numeric(28,10);not null" json:"pnl_usd"`
	PricesMissing bool            `gorm:"not null;default:false" json:"prices_missing"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (p *PortfolioSnapshot) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New()
	}
	return nil
}
