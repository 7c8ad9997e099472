package portfolio

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateStartOfDayPrice(t *testing.T) {
	tests := []struct {
		name   string
		live   float64
		change float64
		want   float64
	}{
		{"up_25_percent", 100, 25, 80},
		{"up_20_percent", 60000, 20, 50000},
		{"down_50_percent", 50, -50, 100},
		{"unchanged", 42, 0, 42},
		{"minus_100_uses_live", 10, -100, 10},
		{"no_live_price", 0, 12, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, EstimateStartOfDayPrice(tt.live, tt.change), 1e-9)
		})
	}
}

func TestStartOfDay_UsesHistoryThenFallsBack(t *testing.T) {
	prices := newFakePrices()
	prices.history["bitcoin"] = 55000

	positions := []OpenPosition{
		{Asset: "BTC", QuantityHeld: 0.1, LivePrice: 60000, TwentyFourHourChange: 20},
		{Asset: "ETH", QuantityHeld: 2, LivePrice: 100, TwentyFourHourChange: 25},
		{Asset: "PEPE", QuantityHeld: 1000, LivePrice: 0.5, TwentyFourHourChange: 0},
	}

	total := StartOfDay(context.Background(), positions, prices, t0, 2)

	assert.InDelta(t, 55000, positions[0].StartOfDayPrice, 1e-9)
	assert.False(t, positions[0].StartOfDayEstimated)
	assert.InDelta(t, 80, positions[1].StartOfDayPrice, 1e-9)
	assert.True(t, positions[1].StartOfDayEstimated)
	assert.InDelta(t, 0.5, positions[2].StartOfDayPrice, 1e-9)
	assert.True(t, positions[2].StartOfDayEstimated)

	assert.InDelta(t, 0.1*55000+2*80+1000*0.5, total, 1e-9)
	// PEPE has no provider id, so only two lookups are made.
	assert.Len(t, prices.days, 2)
}

func TestStartOfDay_NoPositions(t *testing.T) {
	assert.Zero(t, StartOfDay(context.Background(), nil, newFakePrices(), t0, 4))
}

// slowHistory counts how many lookups run at the same time.
type slowHistory struct {
	inFlight atomic.Int32
	peak     atomic.Int32
	calls    atomic.Int32
}

func (s *slowHistory) ProviderID(symbol string) (string, bool) { return symbol, true }

func (s *slowHistory) HistoricalPrice(_ context.Context, _ string, _ time.Time) (float64, bool) {
	s.calls.Add(1)
	n := s.inFlight.Add(1)
	for {
		peak := s.peak.Load()
		if n <= peak || s.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)
	s.inFlight.Add(-1)
	return 1, true
}

func TestStartOfDay_BoundsConcurrency(t *testing.T) {
	history := &slowHistory{}
	positions := make([]OpenPosition, 9)
	for i := range positions {
		positions[i] = OpenPosition{Asset: string(rune('A' + i)), QuantityHeld: 1}
	}

	total := StartOfDay(context.Background(), positions, history, t0, 3)

	require.EqualValues(t, 9, history.calls.Load())
	assert.LessOrEqual(t, history.peak.Load(), int32(3))
	assert.InDelta(t, 9, total, 1e-9)
}
