package ledger

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTx(t *testing.T) func(Transaction, error) Transaction {
	return func(tx Transaction, err error) Transaction {
		t.Helper()
		require.NoError(t, err)
		return tx
	}
}

func at(minutes int) time.Time { return t0.Add(time.Duration(minutes) * time.Minute) }

func TestAggregate_CashIsSignedSumRegardlessOfOrder(t *testing.T) {
	must := mustTx(t)
	txs := []Transaction{
		must(NewDeposit(10000, at(0))),
		must(NewWithdrawal(1500, at(1))),
		must(NewBuy("BTC", 0.1, 5000, at(2))),
		must(NewSell("BTC", 0.05, 3000, at(3))),
		must(NewBuy("ETH", 2, 4000, at(4))),
		must(NewDeposit(250.5, at(5))),
	}
	want := 10000 - 1500 - 5000 + 3000 - 4000 + 250.5

	assert.InDelta(t, want, Aggregate(txs).CashBalance, 1e-9)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]Transaction(nil), txs...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.InDelta(t, want, Aggregate(shuffled).CashBalance, 1e-9)
	}
}

func TestAggregate_WeightedAverageCost(t *testing.T) {
	must := mustTx(t)
	st := Aggregate([]Transaction{
		must(NewBuy("BTC", 1, 100, at(0))),
		must(NewBuy("BTC", 1, 200, at(1))),
		must(NewSell("BTC", 1, 250, at(2))),
	})

	pos, ok := st.Position("BTC")
	require.True(t, ok)
	assert.InDelta(t, 1.0, pos.Quantity, 1e-12)
	assert.InDelta(t, 150.0, pos.TotalCost, 1e-9)
}

func TestAggregate_SortsByCreationTimeBeforeFolding(t *testing.T) {
	must := mustTx(t)
	// Supplied newest-first, as a ledger view would list them.
	st := Aggregate([]Transaction{
		must(NewSell("ETH", 1, 400, at(30))),
		must(NewBuy("ETH", 1, 300, at(20))),
		must(NewBuy("ETH", 1, 100, at(10))),
	})

	pos, ok := st.Position("ETH")
	require.True(t, ok)
	assert.InDelta(t, 1.0, pos.Quantity, 1e-12)
	assert.InDelta(t, 200.0, pos.TotalCost, 1e-9, "sell must use the average of both earlier buys")
}

func TestAggregate_SellBeforeBuyOnlyMovesCash(t *testing.T) {
	must := mustTx(t)
	st := Aggregate([]Transaction{
		must(NewSell("SOL", 5, 500, at(0))),
		must(NewBuy("SOL", 5, 400, at(1))),
	})

	pos, ok := st.Position("SOL")
	require.True(t, ok)
	assert.InDelta(t, 5.0, pos.Quantity, 1e-12)
	assert.InDelta(t, 400.0, pos.TotalCost, 1e-9)
	assert.InDelta(t, 100.0, st.CashBalance, 1e-9)
}

func TestAggregate_ClosedPositionExcluded(t *testing.T) {
	must := mustTx(t)
	st := Aggregate([]Transaction{
		must(NewDeposit(1000, at(0))),
		must(NewBuy("ADA", 2, 200, at(1))),
		must(NewSell("ADA", 2, 260, at(2))),
		must(NewBuy("XRP", 0.3, 30, at(3))),
		must(NewSell("XRP", 0.1, 10, at(4))),
		must(NewSell("XRP", 0.1, 10, at(5))),
		must(NewSell("XRP", 0.1, 10, at(6))),
	})

	assert.Empty(t, st.Open(), "float residue from 0.3-0.1-0.1-0.1 must count as closed")
	assert.Empty(t, st.Symbols())

	pos, ok := st.Position("ADA")
	require.True(t, ok)
	assert.False(t, pos.Open())
}

func TestAggregate_OpenKeepsFirstSeenOrder(t *testing.T) {
	must := mustTx(t)
	st := Aggregate([]Transaction{
		must(NewBuy("ETH", 1, 100, at(0))),
		must(NewBuy("BTC", 1, 100, at(1))),
		must(NewBuy("DOGE", 1, 100, at(2))),
		must(NewBuy("ETH", 1, 100, at(3))),
	})

	assert.Equal(t, []string{"ETH", "BTC", "DOGE"}, st.Symbols())
}

func TestAggregate_Empty(t *testing.T) {
	st := Aggregate(nil)
	assert.Zero(t, st.CashBalance)
	assert.Empty(t, st.Open())
	_, ok := st.Position("BTC")
	assert.False(t, ok)
}

func TestState_ApplyOnZeroValue(t *testing.T) {
	must := mustTx(t)
	var st State
	st.Apply(must(NewBuy("BNB", 3, 900, at(0))))

	pos, ok := st.Position("BNB")
	require.True(t, ok)
	assert.InDelta(t, 900.0, pos.TotalCost, 1e-9)
	assert.InDelta(t, -900.0, st.CashBalance, 1e-9)
}
