package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, 0.60, cfg.Brain.IndicatorWeight)
	assert.Equal(t, 0.10, cfg.Brain.ContextSearchWeight)
	assert.Equal(t, 0.30, cfg.Brain.ChatRecommendWeight)
	assert.Equal(t, 0.3, cfg.Brain.ActionThreshold)
	assert.Equal(t, 0.5, cfg.Brain.MinConfidence)
	assert.Equal(t, 5*time.Second, cfg.Brain.AdvisoryTimeout)
	assert.Equal(t, 50, cfg.Brain.FibLookback)

	assert.Equal(t, 0.01, cfg.Sizing.MinLotSize)
	assert.Equal(t, 10.0, cfg.Sizing.MaxLotSize)
	assert.Equal(t, 2.0, cfg.Sizing.RiskPercent)

	assert.Equal(t, 5.0, cfg.Risk.MaxDailyLossPct)
	assert.Equal(t, 15.0, cfg.Risk.MaxDrawdownPct)
	assert.Equal(t, 0.7, cfg.Risk.MaxCorrelation)
	assert.Equal(t, 0.55, cfg.Risk.StatsWinRate)
	assert.Equal(t, 100, cfg.Risk.StatsProjectedTrades)

	assert.Equal(t, "paper", cfg.Executor.Broker)
	assert.True(t, cfg.Executor.Testnet)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("BRAIN_MIN_CONFIDENCE", "0.7")
	t.Setenv("SIZING_MAX_LOT", "5.0")
	t.Setenv("RISK_MAX_DAILY_LOSS_PCT", "3.5")
	t.Setenv("EXECUTOR_BROKER", "bybit")
	t.Setenv("BRAIN_ADVISORY_TIMEOUT", "2s")

	cfg := Load()

	assert.Equal(t, 0.7, cfg.Brain.MinConfidence)
	assert.Equal(t, 5.0, cfg.Sizing.MaxLotSize)
	assert.Equal(t, 3.5, cfg.Risk.MaxDailyLossPct)
	assert.Equal(t, "bybit", cfg.Executor.Broker)
	assert.Equal(t, 2*time.Second, cfg.Brain.AdvisoryTimeout)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("BRAIN_MIN_CONFIDENCE", "not-a-number")
	t.Setenv("RISK_STATS_PROJECTED_TRADES", "many")
	t.Setenv("EXECUTOR_TESTNET", "maybe")

	cfg := Load()

	assert.Equal(t, 0.5, cfg.Brain.MinConfidence)
	assert.Equal(t, 100, cfg.Risk.StatsProjectedTrades)
	assert.True(t, cfg.Executor.Testnet)
}
