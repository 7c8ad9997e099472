package pricing

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// SymbolMap maps ledger asset symbols (upper case) to CoinGecko coin IDs.
type SymbolMap map[string]string

// DefaultSymbolMap returns the assets the fund trades out of the box.
func DefaultSymbolMap() SymbolMap {
	return SymbolMap{
		"BTC":  "bitcoin",
		"ETH":  "ethereum",
		"SOL":  "solana",
		"SUI":  "sui",
		"USDT": "tether",
		"USDC": "usd-coin",
		"BNB":  "binancecoin",
		"XRP":  "ripple",
		"ADA":  "cardano",
		"DOGE": "dogecoin",
	}
}

// symbolFile is the on-disk shape of ASSET_SYMBOLS_FILE.
//
//	symbols:
//	  PEPE: pepe
//	  LINK: chainlink
type symbolFile struct {
	Symbols map[string]string `yaml:"symbols"`
}

// LoadSymbolMap returns the default map extended (or overridden) by the
// entries in the YAML file at path. An empty path yields the defaults.
func LoadSymbolMap(path string) (SymbolMap, error) {
	symbols := DefaultSymbolMap()
	if path == "" {
		return symbols, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading symbol map %s: %w", path, err)
	}
	var file symbolFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing symbol map %s: %w", path, err)
	}
	for sym, id := range file.Symbols {
		sym = normalizeSymbol(sym)
		id = strings.TrimSpace(id)
		if sym == "" || id == "" {
			return nil, fmt.Errorf("symbol map %s: empty symbol or id in entry %q: %q", path, sym, id)
		}
		symbols[sym] = id
	}
	return symbols, nil
}

// Lookup returns the CoinGecko ID for a symbol, case-insensitively.
func (m SymbolMap) Lookup(symbol string) (string, bool) {
	id, ok := m[normalizeSymbol(symbol)]
	return id, ok
}

// Symbols returns the mapped symbols in sorted order.
func (m SymbolMap) Symbols() []string {
	out := make([]string, 0, len(m))
	for sym := range m {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
