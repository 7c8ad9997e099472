// Package portfolio turns the aggregated ledger into fund-level metrics:
// market valuation of open positions, intraday P&L and each client's share of
// the fund. Everything except the price lookups is pure and cannot fail.
package portfolio

import (
	"sort"

	"fundledger/internal/ledger"
	"fundledger/internal/pricing"
)

// OpenPosition is a held asset valued at its live price.
type OpenPosition struct {
	Asset                string  `json:"asset"`
	QuantityHeld         float64 `json:"quantity_held"`
	TotalCost            float64 `json:"total_cost"`
	LivePrice            float64 `json:"live_price"`
	TwentyFourHourChange float64 `json:"twenty_four_hour_change"`
	MarketValue          float64 `json:"market_value"`
	PnL                  float64 `json:"pnl"`
	PnLPercent           float64 `json:"pnl_percent"`
	StartOfDayPrice      float64 `json:"start_of_day_price"`
	StartOfDayEstimated  bool    `json:"start_of_day_estimated"`
}

// Metrics are the fund-level totals shown on the dashboard.
type Metrics struct {
	TotalValue       float64 `json:"total_value"`
	CashBalance      float64 `json:"cash_balance"`
	InvestedValue    float64 `json:"invested_value"`
	PnLUSD           float64 `json:"pnl_usd"`
	PnLPercent       float64 `json:"pnl_percent"`
	TotalCostBasis   float64 `json:"total_cost_basis"`
	StartOfDayValue  float64 `json:"start_of_day_value"`
	TodaysPnLUSD     float64 `json:"todays_pnl_usd"`
	TodaysPnLPercent float64 `json:"todays_pnl_percent"`
}

// Valuate prices every open position in state and sums the fund totals.
//
// An asset without a quote is valued at 0. That understates the fund while
// the price provider is degraded; callers surface QuoteResult.Unresolved to
// warn about it. Positions come back sorted by market value, largest first,
// with ties kept in ledger order.
func Valuate(state ledger.State, quotes pricing.QuoteResult) (Metrics, []OpenPosition) {
	open := state.Open()
	positions := make([]OpenPosition, 0, len(open))

	m := Metrics{CashBalance: state.CashBalance}
	for _, p := range open {
		q, _ := quotes.Quote(p.Asset)
		marketValue := p.Quantity * q.USD
		pnl := marketValue - p.TotalCost

		positions = append(positions, OpenPosition{
			Asset:                p.Asset,
			QuantityHeld:         p.Quantity,
			TotalCost:            p.TotalCost,
			LivePrice:            q.USD,
			TwentyFourHourChange: q.Change24h,
			MarketValue:          marketValue,
			PnL:                  pnl,
			PnLPercent:           percentOf(pnl, p.TotalCost),
		})

		m.InvestedValue += marketValue
		m.PnLUSD += pnl
		m.TotalCostBasis += marketValue - pnl
	}

	sort.SliceStable(positions, func(i, j int) bool {
		return positions[i].MarketValue > positions[j].MarketValue
	})

	m.TotalValue = m.InvestedValue + m.CashBalance
	m.PnLPercent = percentOf(m.PnLUSD, m.TotalCostBasis)
	return m, positions
}

// ApplyIntraday derives today's P&L from the start-of-day market value of the
// open positions. Cash is assumed unchanged since the start of the day.
func ApplyIntraday(m Metrics, startOfDayValue float64) Metrics {
	m.StartOfDayValue = startOfDayValue
	base := startOfDayValue + m.CashBalance
	m.TodaysPnLUSD = m.TotalValue - base
	m.TodaysPnLPercent = percentOf(m.TodaysPnLUSD, base)
	return m
}

// percentOf returns part/whole*100, or 0 when whole is not positive.
func percentOf(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return part / whole * 100
}
