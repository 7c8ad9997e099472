package services

import (
	"github.com/shopspring/decimal"

	"fundledger/internal/models"
)

func nullDecimal(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

func cashAsset() *string {
	asset := models.CashAsset
	return &asset
}
