// Package ledger models the append-only ledger of capital movements and
// trades, and folds it into a cash balance plus per-asset cost-basis state.
package ledger

import (
	"fmt"
	"strings"
	"time"
)

// Kind is the tag of a ledger transaction.
type Kind string

const (
	Deposit    Kind = "DEPOSIT"
	Withdrawal Kind = "WITHDRAWAL"
	Buy        Kind = "BUY"
	Sell       Kind = "SELL"
)

// CashAsset is the asset label stored on pure cash movements.
const CashAsset = "USD"

// ParseKind converts a stored transaction type into a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToUpper(strings.TrimSpace(s))); k {
	case Deposit, Withdrawal, Buy, Sell:
		return k, nil
	default:
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
}

// IsTrade reports whether the kind carries an asset leg.
func (k Kind) IsTrade() bool { return k == Buy || k == Sell }

// Trade is the asset leg of a BUY or SELL.
type Trade struct {
	Asset    string
	Quantity float64
}

// Transaction is one immutable ledger entry. Trade is non-nil exactly when
// Kind is BUY or SELL; the constructors below are the only way the rest of the
// module builds one, and Validate rejects any other combination.
type Transaction struct {
	ID        string
	Kind      Kind
	ValueUSD  float64
	Trade     *Trade
	ProfileID *string
	CreatedAt time.Time
}

// NewDeposit builds a DEPOSIT of value USD.
func NewDeposit(value float64, createdAt time.Time) (Transaction, error) {
	return newCash(Deposit, value, createdAt)
}

// NewWithdrawal builds a WITHDRAWAL of value USD.
func NewWithdrawal(value float64, createdAt time.Time) (Transaction, error) {
	return newCash(Withdrawal, value, createdAt)
}

// NewBuy builds a BUY of quantity units of asset for value USD.
func NewBuy(asset string, quantity, value float64, createdAt time.Time) (Transaction, error) {
	return newTrade(Buy, asset, quantity, value, createdAt)
}

// NewSell builds a SELL of quantity units of asset for value USD.
func NewSell(asset string, quantity, value float64, createdAt time.Time) (Transaction, error) {
	return newTrade(Sell, asset, quantity, value, createdAt)
}

func newCash(kind Kind, value float64, createdAt time.Time) (Transaction, error) {
	tx := Transaction{Kind: kind, ValueUSD: value, CreatedAt: createdAt}
	return tx, tx.Validate()
}

func newTrade(kind Kind, asset string, quantity, value float64, createdAt time.Time) (Transaction, error) {
	tx := Transaction{
		Kind:      kind,
		ValueUSD:  value,
		Trade:     &Trade{Asset: strings.ToUpper(strings.TrimSpace(asset)), Quantity: quantity},
		CreatedAt: createdAt,
	}
	return tx, tx.Validate()
}

// WithProfile attributes the transaction to a client profile.
func (t Transaction) WithProfile(profileID string) Transaction {
	t.ProfileID = &profileID
	return t
}

// Validate checks that the variant's fields are consistent.
func (t Transaction) Validate() error {
	if !(t.ValueUSD > 0) {
		return fmt.Errorf("%s value must be positive, got %v", t.Kind, t.ValueUSD)
	}
	switch t.Kind {
	case Deposit, Withdrawal:
		if t.Trade != nil {
			return fmt.Errorf("%s cannot carry an asset leg", t.Kind)
		}
	case Buy, Sell:
		if t.Trade == nil {
			return fmt.Errorf("%s requires an asset and quantity", t.Kind)
		}
		if t.Trade.Asset == "" || t.Trade.Asset == CashAsset {
			return fmt.Errorf("%s requires a non-cash asset, got %q", t.Kind, t.Trade.Asset)
		}
		if !(t.Trade.Quantity > 0) {
			return fmt.Errorf("%s quantity must be positive, got %v", t.Kind, t.Trade.Quantity)
		}
	default:
		return fmt.Errorf("unknown transaction type %q", t.Kind)
	}
	return nil
}

// PricePerAsset derives value / quantity for trades and returns 0 for cash movements.
func (t Transaction) PricePerAsset() float64 {
	if t.Trade == nil || t.Trade.Quantity == 0 {
		return 0
	}
	return t.ValueUSD / t.Trade.Quantity
}

// CashDelta is the signed effect of the transaction on the cash balance.
func (t Transaction) CashDelta() float64 {
	switch t.Kind {
	case Deposit, Sell:
		return t.ValueUSD
	case Withdrawal, Buy:
		return -t.ValueUSD
	}
	return 0
}
