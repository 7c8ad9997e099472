package portfolio

import (
	"context"
	"sync"
	"time"

	"fundledger/internal/pricing"
)

// fakePrices is an in-memory PriceSource.
type fakePrices struct {
	quotes  map[string]pricing.Quote
	history map[string]float64
	ids     pricing.SymbolMap
	err     error

	mu        sync.Mutex
	requested []string
	days      []time.Time
}

func newFakePrices() *fakePrices {
	return &fakePrices{
		quotes:  map[string]pricing.Quote{},
		history: map[string]float64{},
		ids:     pricing.DefaultSymbolMap(),
	}
}

func (f *fakePrices) CurrentPrices(_ context.Context, symbols []string) pricing.QuoteResult {
	f.mu.Lock()
	f.requested = append(f.requested, symbols...)
	f.mu.Unlock()

	result := pricing.QuoteResult{Quotes: map[string]pricing.Quote{}, Err: f.err}
	for _, s := range symbols {
		if q, ok := f.quotes[s]; ok && f.err == nil {
			result.Quotes[s] = q
			continue
		}
		result.Unresolved = append(result.Unresolved, s)
	}
	return result
}

func (f *fakePrices) ProviderID(symbol string) (string, bool) {
	return f.ids.Lookup(symbol)
}

func (f *fakePrices) HistoricalPrice(_ context.Context, providerID string, day time.Time) (float64, bool) {
	f.mu.Lock()
	f.days = append(f.days, day)
	f.mu.Unlock()

	price, ok := f.history[providerID]
	return price, ok
}
