package portfolio

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// HistorySource looks up single-day historical prices.
type HistorySource interface {
	ProviderID(symbol string) (string, bool)
	HistoricalPrice(ctx context.Context, providerID string, day time.Time) (float64, bool)
}

// EstimateStartOfDayPrice backs yesterday's price out of the live price and
// its trailing 24h percentage change. A change of exactly -100% has no
// inverse, so the live price is returned unchanged.
//
// The estimate is only as good as the 24h change: a stale or zero change
// makes it equal the live price and hides the day's move.
func EstimateStartOfDayPrice(livePrice, change24h float64) float64 {
	if change24h == -100 {
		return livePrice
	}
	return livePrice / (1 + change24h/100)
}

// StartOfDay sets StartOfDayPrice on every position and returns the combined
// start-of-day market value. Lookups run concurrently, at most limit at a
// time (unbounded when limit <= 0). Each lookup stands alone: a miss falls
// back to EstimateStartOfDayPrice for that asset only.
func StartOfDay(ctx context.Context, positions []OpenPosition, history HistorySource, day time.Time, limit int) float64 {
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i := range positions {
		pos := &positions[i]
		g.Go(func() error {
			price, ok := 0.0, false
			if id, mapped := history.ProviderID(pos.Asset); mapped {
				price, ok = history.HistoricalPrice(ctx, id, day)
			}
			if !ok {
				price = EstimateStartOfDayPrice(pos.LivePrice, pos.TwentyFourHourChange)
			}
			pos.StartOfDayPrice = price
			pos.StartOfDayEstimated = !ok
			return nil
		})
	}
	// Every task returns nil: a failed lookup falls back to the estimate
	// instead of erroring, so Wait only joins.
	_ = g.Wait()

	var total float64
	for _, p := range positions {
		total += p.QuantityHeld * p.StartOfDayPrice
	}
	return total
}
