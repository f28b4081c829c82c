package sizing

import (
	"fmt"
	"math"
	"strings"

	coreerrors "github.com/ducminhle1904/fx-trade-core/internal/errors"
	"github.com/ducminhle1904/fx-trade-core/internal/market"
)

// Strategy selects the position sizing formula
type Strategy string

const (
	StrategyFixedRisk  Strategy = "fixed_risk"
	StrategyFixedLot   Strategy = "fixed_lot"
	StrategyKelly      Strategy = "kelly"
	StrategyVolatility Strategy = "volatility"
)

// ParseStrategy converts a strategy name into a Strategy
func ParseStrategy(name string) (Strategy, error) {
	switch Strategy(strings.ToLower(name)) {
	case StrategyFixedRisk:
		return StrategyFixedRisk, nil
	case StrategyFixedLot:
		return StrategyFixedLot, nil
	case StrategyKelly:
		return StrategyKelly, nil
	case StrategyVolatility:
		return StrategyVolatility, nil
	default:
		return "", coreerrors.NewInvalidParameter("sizing", "ParseStrategy", fmt.Sprintf("unknown risk strategy %q", name))
	}
}

// Params carries the strategy-specific inputs of a sizing request
type Params struct {
	RiskPercent  float64
	FixedLotSize float64
	WinRate      float64
	AvgWinPips   float64
	AvgLossPips  float64
	ATR          float64
}

// Request is one sizing request. All fields are validated before computation.
type Request struct {
	Symbol         string
	StopLossPips   float64
	AccountBalance float64
	Leverage       float64
	Strategy       Strategy
	Params         Params
}

// Result is the computed trade size. RiskAmount is always recomputed from the
// final lot so the audit trail stays consistent when clamping changed the size.
type Result struct {
	LotSize      float64
	RiskAmount   float64
	StrategyUsed Strategy
	Clamped      bool
}

// Sizer converts a sizing request into a concrete lot size using one of four
// interchangeable strategies. Pure and stateless per call.
type Sizer struct {
	table            *market.Table
	minLot           float64
	maxLot           float64
	volatilityFactor float64
}

// New creates a sizer with the given lot bounds and volatility constant
func New(table *market.Table, minLot, maxLot, volatilityFactor float64) *Sizer {
	if minLot <= 0 {
		minLot = 0.01
	}
	if maxLot <= 0 {
		maxLot = 10.0
	}
	if volatilityFactor <= 0 {
		volatilityFactor = 2.0
	}
	return &Sizer{
		table:            table,
		minLot:           minLot,
		maxLot:           maxLot,
		volatilityFactor: volatilityFactor,
	}
}

// Size computes the lot size for the request
func (s *Sizer) Size(req Request) (*Result, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	spec, err := s.table.Lookup(req.Symbol)
	if err != nil {
		return nil, err
	}

	var rawLot float64
	switch req.Strategy {
	case StrategyFixedLot:
		rawLot = req.Params.FixedLotSize

	case StrategyFixedRisk:
		rawLot = fixedRiskLot(req.AccountBalance, req.Params.RiskPercent, req.StopLossPips, spec.PipValue)

	case StrategyKelly:
		rawLot = kellyLot(req, spec.PipValue)

	case StrategyVolatility:
		riskAmount := req.AccountBalance * req.Params.RiskPercent / 100
		rawLot = riskAmount / (req.Params.ATR * spec.PipValue * s.volatilityFactor)

	default:
		return nil, coreerrors.NewInvalidParameter("sizing", "Size", fmt.Sprintf("unknown risk strategy %q", req.Strategy))
	}

	// A zero lot means no edge (negative Kelly); the clamp never raises it
	lot := rawLot
	clamped := false
	if lot > 0 {
		lot = math.Max(s.minLot, math.Min(lot, s.maxLot))
		clamped = lot != rawLot
	}

	return &Result{
		LotSize:      lot,
		RiskAmount:   lot * req.StopLossPips * spec.PipValue,
		StrategyUsed: req.Strategy,
		Clamped:      clamped,
	}, nil
}

// validate rejects invalid inputs before any computation, never coercing them
func (s *Sizer) validate(req Request) error {
	if req.StopLossPips <= 0 {
		return coreerrors.NewInvalidParameter("sizing", "Size", "stop_loss_pips must be > 0")
	}
	if req.AccountBalance <= 0 {
		return coreerrors.NewInvalidParameter("sizing", "Size", "account_balance must be > 0")
	}
	if req.Leverage < 1 {
		return coreerrors.NewInvalidParameter("sizing", "Size", "leverage must be >= 1")
	}

	switch req.Strategy {
	case StrategyFixedRisk:
		if req.Params.RiskPercent <= 0 {
			return coreerrors.NewInvalidParameter("sizing", "Size", "risk_percent must be > 0 for fixed_risk")
		}
	case StrategyFixedLot:
		if req.Params.FixedLotSize <= 0 {
			return coreerrors.NewInvalidParameter("sizing", "Size", "fixed_lot_size must be > 0 for fixed_lot")
		}
	case StrategyKelly:
		if req.Params.WinRate <= 0 || req.Params.WinRate >= 1 {
			return coreerrors.NewInvalidParameter("sizing", "Size", "win_rate must be between 0 and 1 for kelly")
		}
		if req.Params.AvgWinPips == 0 {
			return coreerrors.NewInvalidParameter("sizing", "Size", "avg_win_pips must not be 0 for kelly")
		}
		if req.Params.AvgLossPips <= 0 {
			return coreerrors.NewInvalidParameter("sizing", "Size", "avg_loss_pips must be > 0 for kelly")
		}
	case StrategyVolatility:
		if req.Params.ATR <= 0 {
			return coreerrors.NewInvalidParameter("sizing", "Size", "atr must be > 0 for volatility sizing")
		}
		if req.Params.RiskPercent <= 0 {
			return coreerrors.NewInvalidParameter("sizing", "Size", "risk_percent must be > 0 for volatility sizing")
		}
	}
	return nil
}

// fixedRiskLot risks a fixed percentage of the account per trade:
// lot = (balance * risk%) / (stop_loss_pips * pip_value)
func fixedRiskLot(balance, riskPercent, stopLossPips, pipValue float64) float64 {
	riskAmount := balance * riskPercent / 100
	return riskAmount / (stopLossPips * pipValue)
}

// kellyLot sizes by the Kelly criterion with a conservative halving.
// f* = (2*win_rate - 1) / (avg_loss/avg_win); a non-positive fraction means
// the system has no edge and the lot is zero.
func kellyLot(req Request, pipValue float64) float64 {
	payoffRatio := req.Params.AvgLossPips / req.Params.AvgWinPips
	kellyFraction := (2*req.Params.WinRate - 1) / payoffRatio

	// Half-Kelly to reduce variance
	kellyFraction /= 2

	if kellyFraction <= 0 {
		return 0
	}

	riskAmount := req.AccountBalance * kellyFraction
	return riskAmount / (req.StopLossPips * pipValue)
}
