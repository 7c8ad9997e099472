package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"fundledger/internal/uuid"
)

// TransactionType is the stored ledger entry type.
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
	TransactionTypeBuy        TransactionType = "BUY"
	TransactionTypeSell       TransactionType = "SELL"
)

// CashAsset is stored in the asset column of pure cash movements.
const CashAsset = "USD"

// Transaction is one row of the append-only ledger.
// Rows are never updated or deleted, so there is no Base embed.
type Transaction struct {
	ID               string              `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID        *string             `gorm:"type:uuid;index" json:"profile_id,omitempty"`
	Type             TransactionType     `gorm:"not null;index" json:"type"`
	ValueUSD         decimal.Decimal     `gorm:"type:numeric(28,10);not null" json:"value_usd"`
	Asset            *string             `json:"asset,omitempty"`
	AssetQuantity    decimal.NullDecimal `gorm:"type:numeric(28,10)" json:"asset_quantity"`
	PricePerAssetUSD decimal.NullDecimal `gorm:"type:numeric(28,10)" json:"price_per_asset_usd"`
	CreatedAt        time.Time           `gorm:"not null;index" json:"created_at"`

	// Relationships
	Profile *Profile `gorm:"foreignKey:ProfileID" json:"profile,omitempty"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New()
	}
	return nil
}
