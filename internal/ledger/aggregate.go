package ledger

import "sort"

// ClosedThreshold is the quantity at or below which a position counts as
// closed. It absorbs floating-point residue left by full sells.
const ClosedThreshold = 1e-9

// Position is the running state of one asset: units held and the USD cost
// attributed to them under the weighted-average method.
type Position struct {
	Asset     string
	Quantity  float64
	TotalCost float64
}

// Open reports whether the position still holds units.
func (p Position) Open() bool { return p.Quantity > ClosedThreshold }

// State is the result of folding the ledger.
type State struct {
	CashBalance float64

	positions []Position
	index     map[string]int
}

// Aggregate folds transactions into cash and per-asset state.
//
// Transactions are processed in non-decreasing CreatedAt order (ties keep
// their input order). Cash and BUY legs are order-independent, but a SELL
// removes cost at the average price held at that moment, so the result
// depends on seeing every earlier BUY first.
func Aggregate(txs []Transaction) State {
	ordered := make([]Transaction, len(txs))
	copy(ordered, txs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	st := State{index: make(map[string]int)}
	for _, tx := range ordered {
		st.Apply(tx)
	}
	return st
}

// Apply folds a single transaction into the state. Callers that already hold
// the ledger in creation order can use it directly.
func (s *State) Apply(tx Transaction) {
	s.CashBalance += tx.CashDelta()

	if tx.Trade == nil || !(tx.Trade.Quantity > 0) {
		return
	}
	if s.index == nil {
		s.index = make(map[string]int)
	}
	i, ok := s.index[tx.Trade.Asset]
	if !ok {
		i = len(s.positions)
		s.index[tx.Trade.Asset] = i
		s.positions = append(s.positions, Position{Asset: tx.Trade.Asset})
	}
	pos := &s.positions[i]

	switch tx.Kind {
	case Buy:
		pos.Quantity += tx.Trade.Quantity
		pos.TotalCost += tx.ValueUSD
	case Sell:
		// Selling with nothing held only moves cash.
		if pos.Quantity <= 0 {
			return
		}
		costRemoved := pos.TotalCost * tx.Trade.Quantity / pos.Quantity
		pos.Quantity -= tx.Trade.Quantity
		pos.TotalCost -= costRemoved
	}
}

// Position returns the state of one asset, including closed ones.
func (s State) Position(asset string) (Position, bool) {
	i, ok := s.index[asset]
	if !ok {
		return Position{}, false
	}
	return s.positions[i], true
}

// Open returns the positions still holding units, in the order each asset
// first appeared in the ledger.
func (s State) Open() []Position {
	open := make([]Position, 0, len(s.positions))
	for _, p := range s.positions {
		if p.Open() {
			open = append(open, p)
		}
	}
	return open
}

// Symbols returns the assets of the open positions.
func (s State) Symbols() []string {
	open := s.Open()
	symbols := make([]string, len(open))
	for i, p := range open {
		symbols[i] = p.Asset
	}
	return symbols
}
