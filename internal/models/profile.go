package models

import "github.com/shopspring/decimal"

// Profile is a fund client. TotalDepositedUSD is the client's net contributed
// capital; it only changes together with a matching DEPOSIT or WITHDRAWAL row
// and never goes negative.
type Profile struct {
	Base
	Name              string          `gorm:"not null;default:''" json:"name"`
	Email             string          `gorm:"uniqueIndex;not null" json:"email"`
	PhoneNumber       *string         `json:"phone_number,omitempty"`
	TotalDepositedUSD decimal.Decimal `gorm:"type:numeric(28,10);not null;default:0" json:"total_deposited_usd"`
}
