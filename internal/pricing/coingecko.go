// Package pricing is the price gateway: it turns ledger asset symbols into
// CoinGecko coin IDs and fetches live and single-day historical USD quotes.
// Every lookup degrades softly; nothing here returns an error to the caller.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"fundledger/internal/logger"
)

// HistoryDateLayout is the DD-MM-YYYY layout the history endpoint expects.
const HistoryDateLayout = "02-01-2006"

const maxBodyBytes = 4 << 20

var errInvalidBody = errors.New("response body is not valid JSON")

// statusError is a non-2xx response from the provider.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("coingecko responded %d %s", e.code, http.StatusText(e.code))
}

// transient reports whether retrying the same request could succeed.
func (e *statusError) transient() bool {
	return e.code == http.StatusTooManyRequests || e.code >= http.StatusInternalServerError
}

// Options tunes the CoinGecko gateway.
type Options struct {
	BaseURL string
	// APIKey is sent as x-cg-demo-api-key when set.
	APIKey string
	// Timeout bounds each individual HTTP request. Zero means no bound.
	Timeout time.Duration
	// HistoryRetries is the number of extra attempts for a historical lookup
	// that failed transiently (transport error, 429, 5xx).
	HistoryRetries int
	// RetryBackoff is multiplied by the attempt number between retries.
	RetryBackoff time.Duration
}

// CoinGecko fetches prices from the CoinGecko v3 REST API.
type CoinGecko struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	symbols    SymbolMap
	timeout    time.Duration
	retries    int
	backoff    time.Duration
	log        *zap.SugaredLogger
}

// NewCoinGecko creates a CoinGecko price gateway using the given symbol map.
func NewCoinGecko(httpClient *http.Client, symbols SymbolMap, opts Options) *CoinGecko {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if symbols == nil {
		symbols = DefaultSymbolMap()
	}
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.coingecko.com/api/v3"
	}
	return &CoinGecko{
		httpClient: httpClient,
		baseURL:    base,
		apiKey:     opts.APIKey,
		symbols:    symbols,
		timeout:    opts.Timeout,
		retries:    opts.HistoryRetries,
		backoff:    opts.RetryBackoff,
		log:        logger.Named("pricing"),
	}
}

// ProviderID returns the CoinGecko ID for a ledger symbol.
func (g *CoinGecko) ProviderID(symbol string) (string, bool) {
	return g.symbols.Lookup(symbol)
}

// CurrentPrices fetches live USD quotes and 24h changes for the given symbols
// in one batched request. Duplicate symbols are collapsed; an empty symbol
// set returns immediately without touching the network.
func (g *CoinGecko) CurrentPrices(ctx context.Context, symbols []string) QuoteResult {
	result := QuoteResult{Quotes: make(map[string]Quote)}

	unique := dedupeSymbols(symbols)
	if len(unique) == 0 {
		return result
	}

	var ids []string
	idSymbols := make(map[string][]string)
	var unmapped []string
	for _, sym := range unique {
		id, ok := g.symbols.Lookup(sym)
		if !ok {
			unmapped = append(unmapped, sym)
			continue
		}
		if _, seen := idSymbols[id]; !seen {
			ids = append(ids, id)
		}
		idSymbols[id] = append(idSymbols[id], sym)
	}
	result.Unresolved = append(result.Unresolved, unmapped...)
	if len(unmapped) > 0 {
		g.log.Warnw("no CoinGecko mapping for symbols", "symbols", unmapped)
	}
	if len(ids) == 0 {
		return result
	}

	query := url.Values{}
	query.Set("ids", strings.Join(ids, ","))
	query.Set("vs_currencies", "usd")
	query.Set("include_24hr_change", "true")

	body, err := g.get(ctx, "/simple/price", query)
	if err != nil {
		g.log.Warnw("live price request failed, valuing holdings at zero",
			"ids", ids,
			"error", err,
		)
		for _, id := range ids {
			result.Unresolved = append(result.Unresolved, idSymbols[id]...)
		}
		sort.Strings(result.Unresolved)
		result.Err = err
		return result
	}

	entries := make(map[string]gjson.Result, len(ids))
	gjson.ParseBytes(body).ForEach(func(key, value gjson.Result) bool {
		entries[key.String()] = value
		return true
	})
	for _, id := range ids {
		entry := entries[id]
		usd := entry.Get("usd").Float()
		if usd <= 0 {
			result.Unresolved = append(result.Unresolved, idSymbols[id]...)
			continue
		}
		quote := Quote{USD: usd, Change24h: entry.Get("usd_24h_change").Float()}
		for _, sym := range idSymbols[id] {
			result.Quotes[sym] = quote
		}
	}
	sort.Strings(result.Unresolved)

	g.log.Debugw("live prices fetched", "priced", len(result.Quotes), "unresolved", result.Unresolved)
	return result
}

// HistoricalPrice returns the USD price of a CoinGecko coin on the given UTC
// day. ok is false when the ID is empty, the provider has no price for that
// day, or the request kept failing; callers fall back to an estimate.
//
// Transient failures (transport errors, 429, 5xx) are retried up to the
// configured count. A definite miss (other 4xx, no price field) is not.
func (g *CoinGecko) HistoricalPrice(ctx context.Context, providerID string, day time.Time) (float64, bool) {
	if providerID == "" {
		g.log.Warn("historical price requested without a CoinGecko ID")
		return 0, false
	}

	date := day.UTC().Format(HistoryDateLayout)
	path := "/coins/" + url.PathEscape(providerID) + "/history"
	query := url.Values{}
	query.Set("date", date)
	query.Set("localization", "false")

	for attempt := 0; ; attempt++ {
		body, err := g.get(ctx, path, query)
		if err == nil {
			price := gjson.GetBytes(body, "market_data.current_price.usd").Float()
			if price <= 0 {
				g.log.Infow("no historical price in response", "id", providerID, "date", date)
				return 0, false
			}
			return price, true
		}

		if ctx.Err() != nil || !isTransient(err) || attempt >= g.retries {
			g.log.Warnw("historical price lookup failed",
				"id", providerID,
				"date", date,
				"attempts", attempt+1,
				"error", err,
			)
			return 0, false
		}

		wait := g.backoff * time.Duration(attempt+1)
		select {
		case <-ctx.Done():
			return 0, false
		case <-time.After(wait):
		}
	}
}

// get performs one bounded GET and returns the body of a 2xx JSON response.
func (g *CoinGecko) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	endpoint := g.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if g.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", g.apiKey)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &statusError{code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if !gjson.ValidBytes(body) {
		return nil, errInvalidBody
	}
	return body, nil
}

func isTransient(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.transient()
	}
	return !errors.Is(err, errInvalidBody)
}

func dedupeSymbols(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = normalizeSymbol(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
