package indicators

import (
	"fmt"
	"math"
	"strings"

	coreerrors "github.com/ducminhle1904/fx-trade-core/internal/errors"
	"github.com/ducminhle1904/fx-trade-core/pkg/types"
)

// Provider computes a deterministic indicator analysis from candles.
// Failure here is fatal to a decision request.
type Provider interface {
	Compute(candles []types.Candle, currentPrice float64) (*types.IndicatorResult, error)
	GetName() string
}

// Fibonacci computes retracement levels over a lookback window and derives
// buy/sell signals from price proximity to the levels.
type Fibonacci struct {
	lookback  int
	rsiPeriod int
}

// fibRatios are the retracement ratios in level order, 0% first
var fibRatios = []struct {
	label string
	ratio float64
}{
	{"0%", 0.0},
	{"23.6%", 0.236},
	{"38.2%", 0.382},
	{"50%", 0.5},
	{"61.8%", 0.618},
	{"78.6%", 0.786},
	{"100%", 1.0},
}

// NewFibonacci creates a fibonacci retracement provider
func NewFibonacci(lookback int) *Fibonacci {
	if lookback <= 0 {
		lookback = 50
	}
	return &Fibonacci{lookback: lookback, rsiPeriod: 14}
}

// GetName returns the indicator name
func (f *Fibonacci) GetName() string {
	return "Fibonacci Retracement"
}

// Compute derives retracement levels and proximity signals.
// Levels run from the swing high down: level = high - range*ratio, so 61.8%
// sits near the swing low (support) and 0% at the swing high (resistance).
func (f *Fibonacci) Compute(candles []types.Candle, currentPrice float64) (*types.IndicatorResult, error) {
	if len(candles) < 2 {
		return nil, coreerrors.NewInvalidParameter("indicators", "Compute", "insufficient candles for fibonacci analysis")
	}

	window := candles
	if len(window) > f.lookback {
		window = window[len(window)-f.lookback:]
	}

	swingHigh := window[0].High
	swingLow := window[0].Low
	for _, c := range window[1:] {
		swingHigh = math.Max(swingHigh, c.High)
		swingLow = math.Min(swingLow, c.Low)
	}
	swingRange := swingHigh - swingLow
	if swingRange == 0 {
		return nil, coreerrors.NewInvalidParameter("indicators", "Compute", "no price movement in lookback window")
	}
	if currentPrice == 0 {
		currentPrice = window[len(window)-1].Close
	}

	levels := make([]float64, len(fibRatios))
	for i, r := range fibRatios {
		levels[i] = swingHigh - swingRange*r.ratio
	}

	signal, notes := f.determineSignal(currentPrice, levels, swingRange)

	// Nearest level for the summary line
	nearest := 0
	for i, level := range levels {
		if math.Abs(currentPrice-level) < math.Abs(currentPrice-levels[nearest]) {
			nearest = i
		}
	}

	summary := fmt.Sprintf("Nearest level: %s (%.5f)", fibRatios[nearest].label, levels[nearest])
	if len(notes) > 0 {
		summary += ". Signals: " + strings.Join(notes, " | ")
	}

	return &types.IndicatorResult{
		Summary:   summary,
		Signal:    signal,
		RSI:       calculateRSI(window, f.rsiPeriod),
		FibLevels: levels,
	}, nil
}

// determineSignal maps price proximity to levels onto a signal label.
// 61.8% is strong support, 38.2%/50% support, 0% resistance, 100% and beyond
// strong resistance; breaks outside the swing override proximity.
func (f *Fibonacci) determineSignal(price float64, levels []float64, swingRange float64) (types.SignalLabel, []string) {
	tolerance := swingRange * 0.02

	signal := types.SignalHold
	var notes []string

	if price > levels[0] {
		return types.SignalStrongSell, []string{"STRONG SELL - above swing high"}
	}
	if price < levels[len(levels)-1] {
		return types.SignalStrongBuy, []string{"STRONG BUY - below swing low"}
	}

	for i, r := range fibRatios {
		if math.Abs(price-levels[i]) >= tolerance {
			continue
		}
		switch r.label {
		case "61.8%":
			signal = types.SignalStrongBuy
			notes = append(notes, "STRONG BUY at 61.8%")
		case "38.2%", "50%":
			if signal == types.SignalHold {
				signal = types.SignalBuy
			}
			notes = append(notes, "BUY at "+r.label)
		case "0%":
			if signal == types.SignalHold {
				signal = types.SignalSell
			}
			notes = append(notes, "SELL at 0%")
		case "100%":
			if signal != types.SignalStrongBuy {
				signal = types.SignalStrongSell
			}
			notes = append(notes, "STRONG SELL at 100%")
		}
	}

	return signal, notes
}

// calculateRSI computes a simple RSI over the closing prices
func calculateRSI(candles []types.Candle, period int) float64 {
	if len(candles) < period+1 {
		return 50.0
	}
	gains := 0.0
	losses := 0.0
	for i := len(candles) - period; i < len(candles); i++ {
		change := candles[i].Close - candles[i-1].Close
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}
	if losses == 0 {
		return 100.0
	}
	rs := gains / losses
	return 100.0 - 100.0/(1.0+rs)
}
