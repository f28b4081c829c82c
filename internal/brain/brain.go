package brain

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/ducminhle1904/fx-trade-core/internal/advisory"
	coreerrors "github.com/ducminhle1904/fx-trade-core/internal/errors"
	"github.com/ducminhle1904/fx-trade-core/internal/indicators"
	"github.com/ducminhle1904/fx-trade-core/pkg/types"
)

// Weights are the per-source confidence weights for signal fusion
type Weights struct {
	Indicator          float64
	ContextSearch      float64
	ChatRecommendation float64
}

// Config holds the tunables of the fusion step
type Config struct {
	Weights Weights
	// Weighted average beyond which a BUY/SELL is emitted
	ActionThreshold float64
	// Decisions below this confidence are forced to HOLD
	MinConfidence float64
	// Budget for each advisory query
	AdvisoryTimeout time.Duration
}

// DefaultConfig returns the default fusion configuration
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Indicator:          0.60,
			ContextSearch:      0.10,
			ChatRecommendation: 0.30,
		},
		ActionThreshold: 0.3,
		MinConfidence:   0.5,
		AdvisoryTimeout: 5 * time.Second,
	}
}

// Brain fuses the mandatory indicator signal with optional advisory signals
// into one BUY/SELL/HOLD decision with a confidence score.
type Brain struct {
	indicator  indicators.Provider
	advisories map[string]advisory.Provider
	config     Config
}

// New creates a brain. The indicator provider is mandatory; advisories may be
// nil or empty and each entry is independently optional at decision time.
func New(indicator indicators.Provider, advisories map[string]advisory.Provider, config Config) *Brain {
	return &Brain{
		indicator:  indicator,
		advisories: advisories,
		config:     config,
	}
}

// Decide computes the indicator analysis, queries configured advisories
// concurrently, and fuses everything into a decision. Indicator failure is
// fatal; advisory failure or timeout only removes that source's weight.
func (b *Brain) Decide(ctx context.Context, symbol string, candles []types.Candle, currentPrice float64) (*types.Decision, error) {
	indicatorResult, err := b.indicator.Compute(candles, currentPrice)
	if err != nil {
		return nil, coreerrors.NewProviderUnavailable("brain", "Decide", err)
	}

	advisoryResults, fallbackWarnings := b.collectAdvisories(ctx, symbol, indicatorResult.Summary)

	decision := b.Fuse(symbol, indicatorResult, advisoryResults)
	decision.Warnings = append(decision.Warnings, fallbackWarnings...)
	return decision, nil
}

// Fuse combines a pre-computed indicator result with advisory results using
// confidence-weighted voting. Pure function of its inputs.
func (b *Brain) Fuse(symbol string, indicator *types.IndicatorResult, advisories map[string]*types.AdvisoryResult) *types.Decision {
	score := 0.0
	totalWeight := 0.0

	if indicator != nil {
		score += signalScore(string(indicator.Signal)) * b.config.Weights.Indicator
		totalWeight += b.config.Weights.Indicator
	}

	for name, result := range advisories {
		if result == nil {
			continue
		}
		weight, ok := b.weightFor(name)
		if !ok {
			continue
		}
		if result.ExtractedSignal != nil {
			score += signalScore(string(*result.ExtractedSignal)) * weight
		}
		totalWeight += weight
	}

	action := types.ActionHold
	confidence := 0.0

	if totalWeight > 0 {
		avg := score / totalWeight
		confidence = math.Abs(avg)

		if avg > b.config.ActionThreshold {
			action = types.ActionBuy
		} else if avg < -b.config.ActionThreshold {
			action = types.ActionSell
		}

		// Confidence floor applies after the threshold mapping; the computed
		// confidence is kept on the decision for audit either way.
		if confidence < b.config.MinConfidence {
			action = types.ActionHold
		}
	}

	return &types.Decision{
		Symbol:     symbol,
		Action:     action,
		Confidence: confidence,
		Indicator:  indicator,
		Advisories: advisories,
		Timestamp:  time.Now().UTC(),
	}
}

// collectAdvisories queries every configured advisory concurrently with a
// bounded timeout each. A failed or timed-out source is reported as absent
// with a fallback warning, never as an error.
func (b *Brain) collectAdvisories(ctx context.Context, symbol, indicatorSummary string) (map[string]*types.AdvisoryResult, []string) {
	results := make(map[string]*types.AdvisoryResult, len(b.advisories))
	if len(b.advisories) == 0 {
		return results, nil
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	var warnings []string

	for name, provider := range b.advisories {
		results[name] = nil

		wg.Add(1)
		go func(name string, provider advisory.Provider) {
			defer wg.Done()

			queryCtx, cancel := context.WithTimeout(ctx, b.config.AdvisoryTimeout)
			defer cancel()

			result, err := provider.Query(queryCtx, symbol, indicatorSummary)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("advisory %s unavailable, weight redistributed: %v", name, err))
				return
			}
			results[name] = result
		}(name, provider)
	}

	wg.Wait()
	return results, warnings
}

// weightFor maps an advisory source name to its fusion weight
func (b *Brain) weightFor(name string) (float64, bool) {
	switch name {
	case advisory.SourceContextSearch:
		return b.config.Weights.ContextSearch, true
	case advisory.SourceChatRecommend:
		return b.config.Weights.ChatRecommendation, true
	default:
		return 0, false
	}
}

// signalScore maps a signal label to a vote. SELL is checked first so
// STRONG_SELL never matches as a buy; anything else scores neutral.
func signalScore(label string) float64 {
	upper := strings.ToUpper(label)
	if strings.Contains(upper, "SELL") {
		return -1.0
	}
	if strings.Contains(upper, "BUY") {
		return 1.0
	}
	return 0.0
}
