package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "fundledger/internal/errors"
	"fundledger/internal/models"
	"fundledger/internal/pagination"
	"fundledger/internal/portfolio"
)

// portfolioService builds the fund dashboard from the ledger and records
// snapshots of it.
type portfolioService struct {
	db        *gorm.DB
	ledger    LedgerServicer
	engine    *portfolio.Engine
	refresher portfolio.Refresher
	now       func() time.Time
}

// NewPortfolioService creates a new PortfolioServicer.
func NewPortfolioService(db *gorm.DB, ledger LedgerServicer, engine *portfolio.Engine) PortfolioServicer {
	return &portfolioService{
		db:     db,
		ledger: ledger,
		engine: engine,
		now:    time.Now,
	}
}

// GetDashboard reads the full ledger and client capital and values the fund.
// Overlapping calls are coalesced: a newer call cancels the one in flight and
// the older caller receives the newer dashboard.
func (s *portfolioService) GetDashboard(ctx context.Context) (*portfolio.Dashboard, error) {
	dashboard, err := s.refresher.Run(ctx, s.refresh)
	if err != nil {
		if errors.Is(err, portfolio.ErrSuperseded) {
			return nil, apperrors.ErrRefreshSuperseded
		}
		return nil, toAppError(err)
	}
	return dashboard, nil
}

func (s *portfolioService) refresh(ctx context.Context) (*portfolio.Dashboard, error) {
	txs, err := s.ledger.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	clients, err := s.ledger.ListClientCapital(ctx)
	if err != nil {
		return nil, err
	}
	return s.engine.Refresh(ctx, txs, clients, s.now())
}

// RecordSnapshot values the fund and stores its totals at recordedAt,
// replacing any snapshot already recorded at that instant. It runs its own
// refresh so dashboard reads never cancel a snapshot write.
func (s *portfolioService) RecordSnapshot(ctx context.Context, recordedAt time.Time) (*models.PortfolioSnapshot, error) {
	dashboard, err := s.refresh(ctx)
	if err != nil {
		return nil, toAppError(err)
	}

	if recordedAt.IsZero() {
		recordedAt = dashboard.AsOf
	}
	m := dashboard.Metrics
	snapshot := &models.PortfolioSnapshot{
		RecordedAt:    recordedAt.UTC().Truncate(time.Second),
		TotalValue:    decimal.NewFromFloat(m.TotalValue),
		CashBalance:   decimal.NewFromFloat(m.CashBalance),
		InvestedValue: decimal.NewFromFloat(m.InvestedValue),
		PnLUSD:        decimal.NewFromFloat(m.PnLUSD),
		PricesMissing: len(dashboard.UnpricedAssets) > 0,
	}

	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "recorded_at"}},
		DoUpdates: clause.AssignmentColumns([]string{"total_value", "cash_balance", "invested_value", "pnl_usd", "prices_missing"}),
	}).Create(snapshot).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// On conflict the stored row keeps its original ID.
	var stored models.PortfolioSnapshot
	if err := s.db.Where("recorded_at = ?", snapshot.RecordedAt).First(&stored).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &stored, nil
}

// GetSnapshots returns paginated snapshots within a date range, newest first.
func (s *portfolioService) GetSnapshots(from, to time.Time, page pagination.PageRequest) (*pagination.PageResponse[models.PortfolioSnapshot], error) {
	if to.Before(from) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "to_date must not be before from_date")
	}
	base := s.db.Model(&models.PortfolioSnapshot{}).
		Where("recorded_at >= ? AND recorded_at <= ?", from, to)
	result, err := pagination.Find[models.PortfolioSnapshot](base, page, pagination.NewestFirst("recorded_at"))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

func toAppError(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}
