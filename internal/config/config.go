package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every tunable of the decision core. Values are read once at
// startup and threaded into component constructors; the algorithms never read
// ambient process state themselves.
type Config struct {
	Environment string
	LogLevel    string

	Brain struct {
		IndicatorWeight     float64
		ContextSearchWeight float64
		ChatRecommendWeight float64
		ActionThreshold     float64
		MinConfidence       float64
		AdvisoryTimeout     time.Duration
		FibLookback         int
	}

	Sizing struct {
		MinLotSize       float64
		MaxLotSize       float64
		RiskPercent      float64
		FixedLotSize     float64
		VolatilityFactor float64
	}

	Risk struct {
		MaxDailyLossPct       float64
		MaxDrawdownPct        float64
		MaxPositionSizePct    float64
		MaxMarginUsagePct     float64
		MaxCorrelation        float64
		MinStopLossPips       float64
		MaxStopLossPips       float64
		MaxRuinProbabilityPct float64
		StatsWinRate          float64
		StatsAvgWinPct        float64
		StatsAvgLossPct       float64
		StatsProjectedTrades  int
	}

	Executor struct {
		Broker    string
		APIKey    string
		APISecret string
		Testnet   bool
	}

	Monitoring struct {
		PrometheusPort int
		HealthPort     int
	}
}

// Load reads configuration from the environment, with .env support
func Load() *Config {
	// Best effort; a missing .env file is fine
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}

	cfg.Brain.IndicatorWeight = getEnvFloat("BRAIN_INDICATOR_WEIGHT", 0.60)
	cfg.Brain.ContextSearchWeight = getEnvFloat("BRAIN_CONTEXT_SEARCH_WEIGHT", 0.10)
	cfg.Brain.ChatRecommendWeight = getEnvFloat("BRAIN_CHAT_RECOMMEND_WEIGHT", 0.30)
	cfg.Brain.ActionThreshold = getEnvFloat("BRAIN_ACTION_THRESHOLD", 0.3)
	cfg.Brain.MinConfidence = getEnvFloat("BRAIN_MIN_CONFIDENCE", 0.5)
	cfg.Brain.AdvisoryTimeout = getEnvDuration("BRAIN_ADVISORY_TIMEOUT", 5*time.Second)
	cfg.Brain.FibLookback = getEnvInt("BRAIN_FIB_LOOKBACK", 50)

	cfg.Sizing.MinLotSize = getEnvFloat("SIZING_MIN_LOT", 0.01)
	cfg.Sizing.MaxLotSize = getEnvFloat("SIZING_MAX_LOT", 10.0)
	cfg.Sizing.RiskPercent = getEnvFloat("SIZING_RISK_PERCENT", 2.0)
	cfg.Sizing.FixedLotSize = getEnvFloat("SIZING_FIXED_LOT", 0.1)
	cfg.Sizing.VolatilityFactor = getEnvFloat("SIZING_VOLATILITY_FACTOR", 2.0)

	cfg.Risk.MaxDailyLossPct = getEnvFloat("RISK_MAX_DAILY_LOSS_PCT", 5.0)
	cfg.Risk.MaxDrawdownPct = getEnvFloat("RISK_MAX_DRAWDOWN_PCT", 15.0)
	cfg.Risk.MaxPositionSizePct = getEnvFloat("RISK_MAX_POSITION_SIZE_PCT", 5.0)
	cfg.Risk.MaxMarginUsagePct = getEnvFloat("RISK_MAX_MARGIN_USAGE_PCT", 80.0)
	cfg.Risk.MaxCorrelation = getEnvFloat("RISK_MAX_CORRELATION", 0.7)
	cfg.Risk.MinStopLossPips = getEnvFloat("RISK_MIN_STOP_LOSS_PIPS", 10.0)
	cfg.Risk.MaxStopLossPips = getEnvFloat("RISK_MAX_STOP_LOSS_PIPS", 100.0)
	cfg.Risk.MaxRuinProbabilityPct = getEnvFloat("RISK_MAX_RUIN_PROBABILITY_PCT", 5.0)
	cfg.Risk.StatsWinRate = getEnvFloat("RISK_STATS_WIN_RATE", 0.55)
	cfg.Risk.StatsAvgWinPct = getEnvFloat("RISK_STATS_AVG_WIN_PCT", 1.5)
	cfg.Risk.StatsAvgLossPct = getEnvFloat("RISK_STATS_AVG_LOSS_PCT", 1.0)
	cfg.Risk.StatsProjectedTrades = getEnvInt("RISK_STATS_PROJECTED_TRADES", 100)

	cfg.Executor.Broker = getEnv("EXECUTOR_BROKER", "paper")
	cfg.Executor.APIKey = getEnv("EXECUTOR_API_KEY", "")
	cfg.Executor.APISecret = getEnv("EXECUTOR_API_SECRET", "")
	cfg.Executor.Testnet = getEnvBool("EXECUTOR_TESTNET", true)

	cfg.Monitoring.PrometheusPort = getEnvInt("PROMETHEUS_PORT", 8080)
	cfg.Monitoring.HealthPort = getEnvInt("HEALTH_PORT", 8081)

	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
