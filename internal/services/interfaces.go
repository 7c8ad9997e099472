package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"fundledger/internal/ledger"
	"fundledger/internal/models"
	"fundledger/internal/pagination"
	"fundledger/internal/portfolio"
)

// TransactionFilter holds optional filter parameters for the transaction log.
type TransactionFilter struct {
	Type      *models.TransactionType
	ProfileID *string
}

// TradeInput is a BUY or SELL as entered on the trade form. The traded
// quantity is derived as AmountUSD / PricePerAssetUSD.
type TradeInput struct {
	Type             models.TransactionType
	Asset            string
	AmountUSD        decimal.Decimal
	PricePerAssetUSD decimal.Decimal
	// ProfileID attributes the trade to a client; nil records a house trade.
	ProfileID  *string
	ExecutedAt time.Time
}

// LedgerServicer defines the contract for reading and appending to the ledger.
type LedgerServicer interface {
	ListTransactions(ctx context.Context) ([]ledger.Transaction, error)
	ListClientCapital(ctx context.Context) ([]portfolio.ClientCapital, error)
	GetTransactionLog(page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTrades(page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
	RecordTrade(input TradeInput) (*models.Transaction, error)
}

// FundAction is a capital movement requested for a client.
type FundAction string

const (
	FundActionDeposit  FundAction = "deposit"
	FundActionWithdraw FundAction = "withdraw"
)

// FundsChange is the result of a deposit or withdrawal: the updated client and
// the ledger row written with it.
type FundsChange struct {
	Profile     *models.Profile     `json:"profile"`
	Transaction *models.Transaction `json:"transaction"`
}

// ClientServicer defines the contract for client profiles and their capital.
type ClientServicer interface {
	CreateClient(name, email string, phoneNumber *string, initialDeposit decimal.Decimal) (*models.Profile, error)
	ListClients(page pagination.PageRequest) (*pagination.PageResponse[models.Profile], error)
	GetClient(id string) (*models.Profile, error)
	ManageFunds(id string, action FundAction, amount decimal.Decimal) (*FundsChange, error)
}

// PortfolioServicer defines the contract for the fund dashboard and its history.
type PortfolioServicer interface {
	GetDashboard(ctx context.Context) (*portfolio.Dashboard, error)
	RecordSnapshot(ctx context.Context, recordedAt time.Time) (*models.PortfolioSnapshot, error)
	GetSnapshots(from, to time.Time, page pagination.PageRequest) (*pagination.PageResponse[models.PortfolioSnapshot], error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(action, resourceType, resourceID, ipAddress string, changes map[string]any)
}
