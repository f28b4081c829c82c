package market

import (
	"sort"
	"strings"

	coreerrors "github.com/ducminhle1904/fx-trade-core/internal/errors"
)

// Standard forex lot sizes in base currency units
const (
	StandardLot = 100_000
	MiniLot     = 10_000
	MicroLot    = 1_000
)

// Spec holds the contract specification for one symbol
type Spec struct {
	// Currency amount one pip is worth per 1.0 lot
	PipValue float64
	// Price increment of one pip (0.0001 for 4-decimal pairs, 0.01 for JPY quotes)
	PipSize float64
	// Base currency units per 1.0 lot
	LotUnits float64
	// Required margin as a fraction of position value
	MarginRate float64
}

// Table is the per-symbol spec and pair correlation lookup used by the sizer
// and the risk gate. Built once at startup, read-only afterwards.
type Table struct {
	specs        map[string]Spec
	correlations map[[2]string]float64
}

// Option customizes a Table at construction time
type Option func(*Table)

// WithSpec adds or overrides the contract spec for a symbol
func WithSpec(symbol string, spec Spec) Option {
	return func(t *Table) {
		t.specs[strings.ToUpper(symbol)] = spec
	}
}

// WithCorrelation adds or overrides the correlation coefficient for a pair
func WithCorrelation(a, b string, coefficient float64) Option {
	return func(t *Table) {
		t.correlations[pairKey(a, b)] = coefficient
	}
}

// NewTable builds the default lookup table for common forex pairs, metals and
// index CFDs. Historical correlation approximations; margin rates reflect
// typical 1:50 retail leverage with stricter rates for gold and CFDs.
func NewTable(opts ...Option) *Table {
	t := &Table{
		specs: map[string]Spec{
			"EURUSD": {PipValue: 10, PipSize: 0.0001, LotUnits: StandardLot, MarginRate: 0.02},
			"GBPUSD": {PipValue: 10, PipSize: 0.0001, LotUnits: StandardLot, MarginRate: 0.02},
			"USDJPY": {PipValue: 1000, PipSize: 0.01, LotUnits: StandardLot, MarginRate: 0.02},
			"AUDUSD": {PipValue: 10, PipSize: 0.0001, LotUnits: StandardLot, MarginRate: 0.02},
			"NZDUSD": {PipValue: 10, PipSize: 0.0001, LotUnits: StandardLot, MarginRate: 0.02},
			"USDCAD": {PipValue: 10, PipSize: 0.0001, LotUnits: StandardLot, MarginRate: 0.02},
			"USDCHF": {PipValue: 10, PipSize: 0.0001, LotUnits: StandardLot, MarginRate: 0.02},
			"SPX500": {PipValue: 1, PipSize: 0.1, LotUnits: 1, MarginRate: 0.10},
			"DAX40":  {PipValue: 0.1, PipSize: 0.1, LotUnits: 1, MarginRate: 0.10},
			"XAUUSD": {PipValue: 1, PipSize: 0.01, LotUnits: 1, MarginRate: 0.05},
			"XAGUSD": {PipValue: 0.01, PipSize: 0.001, LotUnits: 1, MarginRate: 0.05},
		},
		correlations: map[[2]string]float64{
			pairKey("EURUSD", "GBPUSD"): 0.82,
			pairKey("EURUSD", "AUDUSD"): 0.68,
			pairKey("EURUSD", "NZDUSD"): 0.64,
			pairKey("GBPUSD", "AUDUSD"): 0.65,
			pairKey("GBPUSD", "NZDUSD"): 0.72,
			pairKey("USDJPY", "EURUSD"): -0.73,
			pairKey("USDJPY", "GBPUSD"): -0.65,
			pairKey("USDCHF", "EURUSD"): -0.80,
		},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Lookup returns the contract spec for a symbol.
// An unknown symbol is an UnknownSymbol error, never a guessed default.
func (t *Table) Lookup(symbol string) (Spec, error) {
	spec, ok := t.specs[strings.ToUpper(symbol)]
	if !ok {
		return Spec{}, coreerrors.NewUnknownSymbol("market", "Lookup", symbol)
	}
	return spec, nil
}

// Correlation returns the historical correlation coefficient for a pair of
// symbols. The second return is false when no entry exists.
func (t *Table) Correlation(a, b string) (float64, bool) {
	c, ok := t.correlations[pairKey(a, b)]
	return c, ok
}

// HasMarginRate reports whether a margin rate entry exists for the symbol
func (t *Table) HasMarginRate(symbol string) bool {
	spec, ok := t.specs[strings.ToUpper(symbol)]
	return ok && spec.MarginRate > 0
}

// pairKey normalizes a symbol pair so lookup order does not matter
func pairKey(a, b string) [2]string {
	pair := []string{strings.ToUpper(a), strings.ToUpper(b)}
	sort.Strings(pair)
	return [2]string{pair[0], pair[1]}
}
