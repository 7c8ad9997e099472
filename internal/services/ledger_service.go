package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "fundledger/internal/errors"
	"fundledger/internal/ledger"
	"fundledger/internal/models"
	"fundledger/internal/pagination"
	"fundledger/internal/portfolio"
)

// quantityScale matches the numeric(28,10) quantity column.
const quantityScale = 10

// ledgerService reads and appends to the transaction ledger.
type ledgerService struct {
	db *gorm.DB
}

// NewLedgerService creates a new LedgerServicer.
func NewLedgerService(db *gorm.DB) LedgerServicer {
	return &ledgerService{db: db}
}

// ListTransactions returns the whole ledger in creation order. Any read
// failure or row that cannot be turned into a ledger transaction fails the
// call; valuation never runs on a partial ledger.
func (s *ledgerService) ListTransactions(ctx context.Context) ([]ledger.Transaction, error) {
	var rows []models.Transaction
	if err := s.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrLedgerUnavailable, err)
	}

	txs := make([]ledger.Transaction, 0, len(rows))
	for i := range rows {
		tx, err := toLedgerTransaction(&rows[i])
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrMalformedLedger, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// ListClientCapital returns every client's deposited capital, oldest client first.
func (s *ledgerService) ListClientCapital(ctx context.Context) ([]portfolio.ClientCapital, error) {
	var profiles []models.Profile
	if err := s.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&profiles).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrLedgerUnavailable, err)
	}

	clients := make([]portfolio.ClientCapital, len(profiles))
	for i := range profiles {
		clients[i] = portfolio.ClientCapital{
			ProfileID:         profiles[i].ID,
			Name:              profiles[i].Name,
			TotalDepositedUSD: profiles[i].TotalDepositedUSD.InexactFloat64(),
		}
	}
	return clients, nil
}

// GetTransactionLog returns a page of the full ledger, newest first, with the
// owning client's name preloaded.
func (s *ledgerService) GetTransactionLog(page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	base := s.db.Model(&models.Transaction{})
	if filter.Type != nil {
		base = base.Where("type = ?", *filter.Type)
	}
	if filter.ProfileID != nil {
		base = base.Where("profile_id = ?", *filter.ProfileID)
	}
	return s.page(base, page)
}

// GetTrades returns a page of BUY and SELL rows, newest first.
func (s *ledgerService) GetTrades(page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	base := s.db.Model(&models.Transaction{}).
		Where("type IN ?", []models.TransactionType{models.TransactionTypeBuy, models.TransactionTypeSell})
	return s.page(base, page)
}

func (s *ledgerService) page(base *gorm.DB, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	result, err := pagination.Find[models.Transaction](base, page,
		withProfile, pagination.NewestFirst("created_at"))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

func withProfile(db *gorm.DB) *gorm.DB {
	return db.Preload("Profile")
}

// RecordTrade appends a BUY or SELL. The quantity is derived from the USD
// amount and the price per asset; the asset symbol is stored upper-cased.
func (s *ledgerService) RecordTrade(input TradeInput) (*models.Transaction, error) {
	if input.Type != models.TransactionTypeBuy && input.Type != models.TransactionTypeSell {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "trade type must be BUY or SELL")
	}
	asset := strings.ToUpper(strings.TrimSpace(input.Asset))
	if asset == "" || asset == models.CashAsset {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "asset symbol is required")
	}
	if !input.AmountUSD.IsPositive() || !input.PricePerAssetUSD.IsPositive() {
		return nil, apperrors.ErrInvalidTrade
	}

	quantity := input.AmountUSD.DivRound(input.PricePerAssetUSD, quantityScale)
	if !quantity.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidTrade, "trade amount is too small for the given price")
	}

	executedAt := input.ExecutedAt
	if executedAt.IsZero() {
		executedAt = time.Now()
	}

	row := &models.Transaction{
		ProfileID:        input.ProfileID,
		Type:             input.Type,
		ValueUSD:         input.AmountUSD,
		Asset:            &asset,
		AssetQuantity:    nullDecimal(quantity),
		PricePerAssetUSD: nullDecimal(input.PricePerAssetUSD),
		CreatedAt:        executedAt.UTC(),
	}
	if _, err := toLedgerTransaction(row); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidTrade, err.Error())
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if input.ProfileID != nil {
			if err := tx.Select("id").First(&models.Profile{}, "id = ?", *input.ProfileID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.ErrClientNotFound
				}
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		if err := tx.Create(row).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// toLedgerTransaction converts a stored row into the ledger's tagged variant.
// Money leaves decimal here; the valuation math runs on float64.
func toLedgerTransaction(row *models.Transaction) (ledger.Transaction, error) {
	kind, err := ledger.ParseKind(string(row.Type))
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("transaction %s: %w", row.ID, err)
	}
	value := row.ValueUSD.InexactFloat64()

	var tx ledger.Transaction
	switch kind {
	case ledger.Deposit:
		tx, err = ledger.NewDeposit(value, row.CreatedAt)
	case ledger.Withdrawal:
		tx, err = ledger.NewWithdrawal(value, row.CreatedAt)
	case ledger.Buy, ledger.Sell:
		if row.Asset == nil || !row.AssetQuantity.Valid {
			return ledger.Transaction{}, fmt.Errorf("transaction %s: %s without asset and quantity", row.ID, kind)
		}
		quantity := row.AssetQuantity.Decimal.InexactFloat64()
		if kind == ledger.Buy {
			tx, err = ledger.NewBuy(*row.Asset, quantity, value, row.CreatedAt)
		} else {
			tx, err = ledger.NewSell(*row.Asset, quantity, value, row.CreatedAt)
		}
	}
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("transaction %s: %w", row.ID, err)
	}

	tx.ID = row.ID
	if row.ProfileID != nil {
		tx = tx.WithProfile(*row.ProfileID)
	}
	return tx, nil
}
