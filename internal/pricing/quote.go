package pricing

// Quote is a live USD price with its trailing 24h percentage change.
type Quote struct {
	USD       float64 `json:"usd"`
	Change24h float64 `json:"usd_24h_change"`
}

// QuoteResult is the outcome of a live-price lookup. The lookup never fails
// hard: Quotes holds whatever could be priced, Unresolved lists requested
// symbols that got no quote (unmapped, missing from the response, or lost to a
// failed request) and Err records why the request itself failed, if it did.
//
// Callers value unresolved symbols at 0, which understates holdings while the
// provider is unavailable.
type QuoteResult struct {
	Quotes     map[string]Quote
	Unresolved []string
	Err        error
}

// Quote returns the quote for symbol, if one was fetched.
func (r QuoteResult) Quote(symbol string) (Quote, bool) {
	q, ok := r.Quotes[normalizeSymbol(symbol)]
	return q, ok
}

// Degraded reports whether any requested symbol went unpriced.
func (r QuoteResult) Degraded() bool {
	return len(r.Unresolved) > 0 || r.Err != nil
}
