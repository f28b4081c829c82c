package risk

import (
	"fmt"
	"math"
	"strings"

	"github.com/ducminhle1904/fx-trade-core/internal/market"
	"github.com/ducminhle1904/fx-trade-core/pkg/types"
)

// Level is the severity of a risk check result
type Level int

const (
	LevelSafe Level = iota
	LevelWarning
	LevelCritical
)

func (l Level) String() string {
	switch l {
	case LevelSafe:
		return "SAFE"
	case LevelWarning:
		return "WARNING"
	case LevelCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Fixed check names, in evaluation order
const (
	CheckDailyLoss    = "daily_loss"
	CheckDrawdown     = "drawdown"
	CheckPositionSize = "position_size"
	CheckMargin       = "margin"
	CheckCorrelation  = "correlation"
	CheckStopLoss     = "stop_loss_sanity"
	CheckRiskOfRuin   = "risk_of_ruin"

	TotalChecks = 7
)

// Check is the result of one risk check
type Check struct {
	Name   string
	Level  Level
	Detail string
	Value  float64
}

// Verdict aggregates all seven checks. Checks always holds exactly the seven
// checks in fixed order so callers can index by position or name.
type Verdict struct {
	Checks       []Check
	OverallLevel Level
	CanTrade     bool
}

// Get returns the check with the given name
func (v *Verdict) Get(name string) (Check, bool) {
	for _, c := range v.Checks {
		if c.Name == name {
			return c, true
		}
	}
	return Check{}, false
}

// TradeStats are the historical trade statistics used by the risk-of-ruin
// projection. They are configuration, not per-call account state.
type TradeStats struct {
	WinRate         float64
	AvgWinPct       float64
	AvgLossPct      float64
	ProjectedTrades int
}

// Thresholds are the limits applied by the gate, all with documented defaults
type Thresholds struct {
	MaxDailyLossPct       float64
	MaxDrawdownPct        float64
	MaxPositionSizePct    float64
	MaxMarginUsagePct     float64
	MaxCorrelation        float64
	MinStopLossPips       float64
	MaxStopLossPips       float64
	MaxRuinProbabilityPct float64
	Stats                 TradeStats
}

// DefaultThresholds returns the default risk limits
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxDailyLossPct:       5.0,
		MaxDrawdownPct:        15.0,
		MaxPositionSizePct:    5.0,
		MaxMarginUsagePct:     80.0,
		MaxCorrelation:        0.7,
		MinStopLossPips:       10.0,
		MaxStopLossPips:       100.0,
		MaxRuinProbabilityPct: 5.0,
		Stats: TradeStats{
			WinRate:         0.55,
			AvgWinPct:       1.5,
			AvgLossPct:      1.0,
			ProjectedTrades: 100,
		},
	}
}

// Gate evaluates a proposed trade against seven independent risk checks.
// All checks are stateless functions of the snapshot passed in; the gate never
// caches account state between calls.
type Gate struct {
	table      *market.Table
	thresholds Thresholds
}

// NewGate creates a risk gate with the given symbol table and thresholds
func NewGate(table *market.Table, thresholds Thresholds) *Gate {
	return &Gate{table: table, thresholds: thresholds}
}

// Evaluate runs all seven checks in fixed order and aggregates the verdict.
// Every check always runs; no check errors for valid inputs.
func (g *Gate) Evaluate(symbol string, qty, entryPrice, stopLossPrice float64, side types.TradeAction, account types.AccountSnapshot) *Verdict {
	checks := []Check{
		g.checkDailyLoss(account),
		g.checkDrawdown(account),
		g.checkPositionSize(qty, entryPrice, account),
		g.checkMargin(symbol, qty, entryPrice, account),
		g.checkCorrelation(symbol, side, account),
		g.checkStopLoss(symbol, entryPrice, stopLossPrice),
		g.checkRiskOfRuin(),
	}

	overall := LevelSafe
	for _, c := range checks {
		if c.Level > overall {
			overall = c.Level
		}
	}

	return &Verdict{
		Checks:       checks,
		OverallLevel: overall,
		CanTrade:     overall != LevelCritical,
	}
}

// checkDailyLoss stops trading once today's realized loss crosses the limit
func (g *Gate) checkDailyLoss(account types.AccountSnapshot) Check {
	if account.Balance <= 0 {
		return Check{
			Name:   CheckDailyLoss,
			Level:  LevelCritical,
			Detail: "account balance is not positive",
		}
	}

	lossPct := math.Abs(account.DailyRealizedPnL) / account.Balance * 100
	if lossPct >= g.thresholds.MaxDailyLossPct {
		return Check{
			Name:   CheckDailyLoss,
			Level:  LevelCritical,
			Detail: fmt.Sprintf("daily loss limit exceeded: %.2f%% >= %.2f%%", lossPct, g.thresholds.MaxDailyLossPct),
			Value:  lossPct,
		}
	}
	return Check{
		Name:   CheckDailyLoss,
		Level:  LevelSafe,
		Detail: fmt.Sprintf("daily loss %.2f%% within limit %.2f%%", lossPct, g.thresholds.MaxDailyLossPct),
		Value:  lossPct,
	}
}

// checkDrawdown compares current equity against its historical peak
func (g *Gate) checkDrawdown(account types.AccountSnapshot) Check {
	if account.PeakEquity <= 0 || account.Equity <= 0 {
		return Check{
			Name:   CheckDrawdown,
			Level:  LevelCritical,
			Detail: "equity values are not positive",
		}
	}

	drawdownPct := (account.PeakEquity - account.Equity) / account.PeakEquity * 100
	if drawdownPct >= g.thresholds.MaxDrawdownPct {
		return Check{
			Name:   CheckDrawdown,
			Level:  LevelCritical,
			Detail: fmt.Sprintf("drawdown exceeded: %.2f%% >= %.2f%%", drawdownPct, g.thresholds.MaxDrawdownPct),
			Value:  drawdownPct,
		}
	}
	return Check{
		Name:   CheckDrawdown,
		Level:  LevelSafe,
		Detail: fmt.Sprintf("drawdown %.2f%% within limit %.2f%%", drawdownPct, g.thresholds.MaxDrawdownPct),
		Value:  drawdownPct,
	}
}

// checkPositionSize bounds a single position's share of the account
func (g *Gate) checkPositionSize(qty, entryPrice float64, account types.AccountSnapshot) Check {
	positionValue := qty * entryPrice
	positionPct := positionValue / account.Balance * 100

	if positionPct > g.thresholds.MaxPositionSizePct {
		return Check{
			Name:   CheckPositionSize,
			Level:  LevelCritical,
			Detail: fmt.Sprintf("position too large: %.2f%% > %.2f%% of account", positionPct, g.thresholds.MaxPositionSizePct),
			Value:  positionPct,
		}
	}
	return Check{
		Name:   CheckPositionSize,
		Level:  LevelSafe,
		Detail: fmt.Sprintf("position %.2f%% of account", positionPct),
		Value:  positionPct,
	}
}

// checkMargin verifies the required margin fits the account with a buffer.
// A missing margin-rate entry is SAFE with a note, never CRITICAL by omission.
func (g *Gate) checkMargin(symbol string, qty, entryPrice float64, account types.AccountSnapshot) Check {
	spec, err := g.table.Lookup(symbol)
	if err != nil || spec.MarginRate <= 0 {
		return Check{
			Name:   CheckMargin,
			Level:  LevelSafe,
			Detail: fmt.Sprintf("no margin rate entry for %s, check skipped", symbol),
		}
	}

	requiredMargin := qty * entryPrice * spec.MarginRate
	if requiredMargin > account.Balance {
		return Check{
			Name:   CheckMargin,
			Level:  LevelCritical,
			Detail: fmt.Sprintf("insufficient margin: required %.2f > balance %.2f", requiredMargin, account.Balance),
			Value:  requiredMargin,
		}
	}

	usagePct := requiredMargin / account.Balance * 100
	if usagePct > g.thresholds.MaxMarginUsagePct {
		return Check{
			Name:   CheckMargin,
			Level:  LevelWarning,
			Detail: fmt.Sprintf("high margin usage: %.2f%% > %.2f%%", usagePct, g.thresholds.MaxMarginUsagePct),
			Value:  usagePct,
		}
	}
	return Check{
		Name:   CheckMargin,
		Level:  LevelSafe,
		Detail: fmt.Sprintf("margin usage %.2f%%", usagePct),
		Value:  usagePct,
	}
}

// checkCorrelation flags same-direction positions in strongly correlated pairs
func (g *Gate) checkCorrelation(symbol string, side types.TradeAction, account types.AccountSnapshot) Check {
	var flagged []string
	var skipped []string
	maxAbs := 0.0

	for _, pos := range account.OpenPositions {
		if pos.Side != side {
			continue
		}
		coefficient, ok := g.table.Correlation(symbol, pos.Symbol)
		if !ok {
			skipped = append(skipped, pos.Symbol)
			continue
		}
		if abs := math.Abs(coefficient); abs >= g.thresholds.MaxCorrelation {
			flagged = append(flagged, fmt.Sprintf("%s vs %s: %.2f", symbol, pos.Symbol, coefficient))
			maxAbs = math.Max(maxAbs, abs)
		}
	}

	if len(flagged) > 0 {
		return Check{
			Name:   CheckCorrelation,
			Level:  LevelWarning,
			Detail: "high correlation with open positions: " + strings.Join(flagged, "; "),
			Value:  maxAbs,
		}
	}

	detail := fmt.Sprintf("no problematic correlations across %d open positions", len(account.OpenPositions))
	if len(skipped) > 0 {
		detail += fmt.Sprintf(" (no correlation entry for %s)", strings.Join(skipped, ", "))
	}
	return Check{
		Name:   CheckCorrelation,
		Level:  LevelSafe,
		Detail: detail,
	}
}

// checkStopLoss validates the stop distance lies in a sane pip band
func (g *Gate) checkStopLoss(symbol string, entryPrice, stopLossPrice float64) Check {
	spec, err := g.table.Lookup(symbol)
	if err != nil || spec.PipSize <= 0 {
		return Check{
			Name:   CheckStopLoss,
			Level:  LevelSafe,
			Detail: fmt.Sprintf("no pip size entry for %s, check skipped", symbol),
		}
	}

	pips := math.Abs(entryPrice-stopLossPrice) / spec.PipSize
	if pips < g.thresholds.MinStopLossPips {
		return Check{
			Name:   CheckStopLoss,
			Level:  LevelWarning,
			Detail: fmt.Sprintf("stop-loss too tight: %.1f pips < %.0f", pips, g.thresholds.MinStopLossPips),
			Value:  pips,
		}
	}
	if pips > g.thresholds.MaxStopLossPips {
		return Check{
			Name:   CheckStopLoss,
			Level:  LevelWarning,
			Detail: fmt.Sprintf("stop-loss very wide: %.1f pips > %.0f", pips, g.thresholds.MaxStopLossPips),
			Value:  pips,
		}
	}
	return Check{
		Name:   CheckStopLoss,
		Level:  LevelSafe,
		Detail: fmt.Sprintf("stop-loss distance %.1f pips", pips),
		Value:  pips,
	}
}

// checkRiskOfRuin projects the probability of depleting the account using the
// Kelly fraction and a gambler's-ruin approximation over the configured trade
// count. The Kelly fraction is always included in the detail.
func (g *Gate) checkRiskOfRuin() Check {
	stats := g.thresholds.Stats
	lossRate := 1 - stats.WinRate
	kellyFraction := (stats.WinRate*stats.AvgWinPct - lossRate*stats.AvgLossPct) / stats.AvgLossPct

	if kellyFraction <= 0 {
		return Check{
			Name:   CheckRiskOfRuin,
			Level:  LevelWarning,
			Detail: fmt.Sprintf("system has no edge (kelly fraction %.4f), ruin probability 100%%", kellyFraction),
			Value:  100.0,
		}
	}

	// P(ruin) ~= ((1-k)/(1+k))^n
	base := (1 - kellyFraction) / (1 + kellyFraction)
	if base < 0 {
		base = 0
	}
	ruinPct := math.Pow(base, float64(stats.ProjectedTrades)) * 100

	level := LevelSafe
	if ruinPct > g.thresholds.MaxRuinProbabilityPct {
		level = LevelWarning
	}
	return Check{
		Name:   CheckRiskOfRuin,
		Level:  level,
		Detail: fmt.Sprintf("ruin probability %.2f%% over %d trades (kelly fraction %.4f)", ruinPct, stats.ProjectedTrades, kellyFraction),
		Value:  ruinPct,
	}
}
