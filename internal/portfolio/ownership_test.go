package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocate_SplitsByDepositedCapital(t *testing.T) {
	clients := []ClientCapital{
		{ProfileID: "a", Name: "Alice", TotalDepositedUSD: 2500},
		{ProfileID: "b", Name: "Bob", TotalDepositedUSD: 7500},
	}

	got := Allocate(clients, 12000)

	require.Len(t, got, 2)
	assert.Equal(t, "Bob", got[0].Name)
	assert.InDelta(t, 75, got[0].OwnershipPercentage, 1e-9)
	assert.InDelta(t, 9000, got[0].EquityValue, 1e-9)
	assert.InDelta(t, 1500, got[0].PnL, 1e-9)

	assert.Equal(t, "Alice", got[1].Name)
	assert.InDelta(t, 25, got[1].OwnershipPercentage, 1e-9)
	assert.InDelta(t, 3000, got[1].EquityValue, 1e-9)
	assert.InDelta(t, 500, got[1].PnL, 1e-9)
}

func TestAllocate_EquityConservation(t *testing.T) {
	clients := []ClientCapital{
		{Name: "a", TotalDepositedUSD: 1000.01},
		{Name: "b", TotalDepositedUSD: 333.33},
		{Name: "c", TotalDepositedUSD: 0.07},
		{Name: "d", TotalDepositedUSD: 98765.4321},
		{Name: "e", TotalDepositedUSD: 0},
	}
	total := 123456.789

	var equity, pct float64
	for _, c := range Allocate(clients, total) {
		equity += c.EquityValue
		pct += c.OwnershipPercentage
	}

	assert.InEpsilon(t, total, equity, 1e-6)
	assert.InDelta(t, 100, pct, 1e-9)
}

func TestAllocate_NoCapitalMeansNoOwnership(t *testing.T) {
	assert.Empty(t, Allocate(nil, 5000))
	assert.Empty(t, Allocate([]ClientCapital{{Name: "Zero", TotalDepositedUSD: 0}}, 5000))
}

func TestAllocate_UnnamedClient(t *testing.T) {
	got := Allocate([]ClientCapital{{ProfileID: "x", Name: "  ", TotalDepositedUSD: 10}}, 10)

	require.Len(t, got, 1)
	assert.Equal(t, UnnamedClient, got[0].Name)
	assert.InDelta(t, 100, got[0].OwnershipPercentage, 1e-9)
}

func TestAllocate_TiesKeepInputOrder(t *testing.T) {
	got := Allocate([]ClientCapital{
		{ProfileID: "1", Name: "First", TotalDepositedUSD: 100},
		{ProfileID: "2", Name: "Second", TotalDepositedUSD: 100},
	}, 400)

	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ProfileID)
	assert.Equal(t, "2", got[1].ProfileID)
}
