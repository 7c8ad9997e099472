package portfolio

import (
	"context"
	"time"

	"go.uber.org/zap"

	"fundledger/internal/ledger"
	"fundledger/internal/logger"
	"fundledger/internal/pricing"
)

// PriceSource is the price gateway as the engine sees it.
type PriceSource interface {
	HistorySource
	CurrentPrices(ctx context.Context, symbols []string) pricing.QuoteResult
}

// Dashboard is the result of one refresh.
type Dashboard struct {
	Metrics         Metrics           `json:"metrics"`
	OpenPositions   []OpenPosition    `json:"open_positions"`
	ClientOwnership []ClientOwnership `json:"client_ownership"`
	// UnpricedAssets lists held assets valued at 0 because no live quote
	// could be fetched.
	UnpricedAssets []string  `json:"unpriced_assets,omitempty"`
	AsOf           time.Time `json:"as_of"`
}

// Engine runs the refresh pipeline: aggregate the ledger, price the open
// positions in one batched call, value them, estimate the start of day and
// allocate ownership. It holds no state between refreshes.
type Engine struct {
	prices             PriceSource
	historyConcurrency int
	log                *zap.SugaredLogger
}

// NewEngine creates an Engine. historyConcurrency bounds the concurrent
// historical-price lookups; zero or less means one lookup per position at once.
func NewEngine(prices PriceSource, historyConcurrency int) *Engine {
	return &Engine{
		prices:             prices,
		historyConcurrency: historyConcurrency,
		log:                logger.Named("portfolio"),
	}
}

// Refresh computes a dashboard from the full ledger and client capital at
// time now. The start of day is midnight UTC of now. Price failures only
// degrade the result; the returned error is non-nil only when ctx is done.
func (e *Engine) Refresh(ctx context.Context, txs []ledger.Transaction, clients []ClientCapital, now time.Time) (*Dashboard, error) {
	state := ledger.Aggregate(txs)

	quotes := e.prices.CurrentPrices(ctx, state.Symbols())
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if quotes.Degraded() {
		e.log.Warnw("valuing portfolio with missing prices",
			"unpriced", quotes.Unresolved,
			"error", quotes.Err,
		)
	}

	metrics, positions := Valuate(state, quotes)

	day := now.UTC().Truncate(24 * time.Hour)
	startOfDay := StartOfDay(ctx, positions, e.prices, day, e.historyConcurrency)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	metrics = ApplyIntraday(metrics, startOfDay)

	e.log.Debugw("portfolio refreshed",
		"transactions", len(txs),
		"open_positions", len(positions),
		"total_value", metrics.TotalValue,
	)

	return &Dashboard{
		Metrics:         metrics,
		OpenPositions:   positions,
		ClientOwnership: Allocate(clients, metrics.TotalValue),
		UnpricedAssets:  quotes.Unresolved,
		AsOf:            now,
	}, nil
}
