package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"fundledger/internal/models"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestClient creates a client with a unique email and no capital.
func CreateTestClient(t *testing.T, db *gorm.DB) *models.Profile {
	t.Helper()
	return CreateTestClientWithDeposit(t, db, fmt.Sprintf("Client %d", nextID()), 0)
}

// CreateTestClientWithDeposit creates a named client with the given deposited
// total and, when positive, a matching DEPOSIT row.
func CreateTestClientWithDeposit(t *testing.T, db *gorm.DB, name string, deposited float64) *models.Profile {
	t.Helper()

	profile := &models.Profile{
		Name:              name,
		Email:             fmt.Sprintf("client%d@test.com", nextID()),
		TotalDepositedUSD: decimal.NewFromFloat(deposited),
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("failed to create test client: %v", err)
	}

	if deposited > 0 {
		CreateTestCashMovement(t, db, &profile.ID, models.TransactionTypeDeposit, deposited, time.Now().UTC())
	}
	return profile
}

// CreateTestCashMovement inserts a DEPOSIT or WITHDRAWAL row.
func CreateTestCashMovement(t *testing.T, db *gorm.DB, profileID *string, txType models.TransactionType, value float64, createdAt time.Time) *models.Transaction {
	t.Helper()

	asset := models.CashAsset
	tx := &models.Transaction{
		ProfileID: profileID,
		Type:      txType,
		ValueUSD:  decimal.NewFromFloat(value),
		Asset:     &asset,
		CreatedAt: createdAt,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test cash movement: %v", err)
	}
	return tx
}

// CreateTestTrade inserts a BUY or SELL row of quantity units for value USD.
func CreateTestTrade(t *testing.T, db *gorm.DB, txType models.TransactionType, asset string, quantity, value float64, createdAt time.Time) *models.Transaction {
	t.Helper()

	qty := decimal.NewFromFloat(quantity)
	val := decimal.NewFromFloat(value)
	tx := &models.Transaction{
		Type:             txType,
		ValueUSD:         val,
		Asset:            &asset,
		AssetQuantity:    decimal.NullDecimal{Decimal: qty, Valid: true},
		PricePerAssetUSD: decimal.NullDecimal{Decimal: val.Div(qty), Valid: true},
		CreatedAt:        createdAt,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test trade: %v", err)
	}
	return tx
}
