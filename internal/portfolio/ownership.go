package portfolio

import (
	"sort"
	"strings"
)

// UnnamedClient is shown for clients saved without a name.
const UnnamedClient = "Unnamed Client"

// ClientCapital is the capital a client has put into the fund.
type ClientCapital struct {
	ProfileID         string
	Name              string
	TotalDepositedUSD float64
}

// ClientOwnership is a client's share of the fund at current valuation.
type ClientOwnership struct {
	ProfileID           string  `json:"profile_id"`
	Name                string  `json:"name"`
	TotalDepositedUSD   float64 `json:"total_deposited_usd"`
	OwnershipPercentage float64 `json:"ownership_percentage"`
	EquityValue         float64 `json:"equity_value"`
	PnL                 float64 `json:"pnl"`
}

// Allocate splits totalPortfolioValue across clients in proportion to the
// capital each has deposited. It returns an empty slice when no capital has
// been deposited. Shares are computed independently, so their sum may differ from
// 100 by floating-point rounding.
func Allocate(clients []ClientCapital, totalPortfolioValue float64) []ClientOwnership {
	var deposited float64
	for _, c := range clients {
		deposited += c.TotalDepositedUSD
	}
	if deposited <= 0 {
		return []ClientOwnership{}
	}

	out := make([]ClientOwnership, 0, len(clients))
	for _, c := range clients {
		pct := c.TotalDepositedUSD / deposited * 100
		equity := totalPortfolioValue * pct / 100

		name := strings.TrimSpace(c.Name)
		if name == "" {
			name = UnnamedClient
		}
		out = append(out, ClientOwnership{
			ProfileID:           c.ProfileID,
			Name:                name,
			TotalDepositedUSD:   c.TotalDepositedUSD,
			OwnershipPercentage: pct,
			EquityValue:         equity,
			PnL:                 equity - c.TotalDepositedUSD,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EquityValue > out[j].EquityValue
	})
	return out
}
