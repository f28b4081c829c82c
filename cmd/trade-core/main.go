package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/ducminhle1904/fx-trade-core/internal/advisory"
	"github.com/ducminhle1904/fx-trade-core/internal/brain"
	"github.com/ducminhle1904/fx-trade-core/internal/config"
	"github.com/ducminhle1904/fx-trade-core/internal/execution"
	"github.com/ducminhle1904/fx-trade-core/internal/indicators"
	"github.com/ducminhle1904/fx-trade-core/internal/logger"
	"github.com/ducminhle1904/fx-trade-core/internal/market"
	"github.com/ducminhle1904/fx-trade-core/internal/monitoring"
	"github.com/ducminhle1904/fx-trade-core/internal/orchestrator"
	"github.com/ducminhle1904/fx-trade-core/internal/reporting"
	"github.com/ducminhle1904/fx-trade-core/internal/risk"
	"github.com/ducminhle1904/fx-trade-core/internal/sizing"
	"github.com/ducminhle1904/fx-trade-core/pkg/types"
)

func main() {
	symbol := flag.String("symbol", "EURUSD", "trading pair to analyze")
	price := flag.Float64("price", 1.0850, "current market price")
	stopLossPips := flag.Float64("stop-loss-pips", 50, "stop-loss distance in pips")
	strategyName := flag.String("strategy", "fixed_risk", "sizing strategy: fixed_risk, fixed_lot, kelly, volatility")
	autoExecute := flag.Bool("execute", false, "hand the trade to the execution collaborator if all checks pass")
	reportPath := flag.String("report", "", "write an xlsx audit report to this path")
	serveMetrics := flag.Bool("metrics", false, "serve prometheus metrics and health endpoints")
	flag.Parse()

	cfg := config.Load()

	strategy, err := sizing.ParseStrategy(*strategyName)
	if err != nil {
		log.Fatalf("invalid strategy: %v", err)
	}

	specs := market.NewTable()
	fuser := buildBrain(cfg)
	sizer := sizing.New(specs, cfg.Sizing.MinLotSize, cfg.Sizing.MaxLotSize, cfg.Sizing.VolatilityFactor)
	gate := risk.NewGate(specs, riskThresholds(cfg))

	executor, err := execution.NewRegistry().New(cfg.Executor.Broker, execution.BrokerConfig{
		APIKey:    cfg.Executor.APIKey,
		APISecret: cfg.Executor.APISecret,
		Testnet:   cfg.Executor.Testnet,
	})
	if err != nil {
		log.Fatalf("failed to resolve broker: %v", err)
	}

	audit, err := logger.NewLogger(*symbol)
	if err != nil {
		log.Fatalf("failed to open audit log: %v", err)
	}
	defer audit.Close()

	if *serveMetrics {
		startMonitoring(cfg)
	}

	orch := orchestrator.New(fuser, sizer, gate, executor, specs, audit)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := orch.Orchestrate(ctx, orchestrator.Request{
		Symbol:       *symbol,
		Candles:      sampleCandles(*price),
		CurrentPrice: *price,
		StopLossPips: *stopLossPips,
		Strategy:     strategy,
		Params: sizing.Params{
			RiskPercent:  cfg.Sizing.RiskPercent,
			FixedLotSize: cfg.Sizing.FixedLotSize,
			WinRate:      cfg.Risk.StatsWinRate,
			AvgWinPips:   *stopLossPips,
			AvgLossPips:  *stopLossPips,
			ATR:          *stopLossPips,
		},
		Leverage: 1,
		Account: types.AccountSnapshot{
			Balance:    10000,
			Equity:     10000,
			PeakEquity: 10000,
		},
		AutoExecute: *autoExecute,
	})
	if err != nil {
		log.Fatalf("orchestration failed: %v", err)
	}

	printResult(result)

	if *reportPath != "" {
		if err := reporting.WriteAuditReport([]*orchestrator.Result{result}, *reportPath); err != nil {
			log.Fatalf("failed to write audit report: %v", err)
		}
		fmt.Printf("\nAudit report written to %s\n", *reportPath)
	}
}

// buildBrain wires the fibonacci indicator and the demo advisory providers
func buildBrain(cfg *config.Config) *brain.Brain {
	advisories := map[string]advisory.Provider{
		advisory.SourceContextSearch: advisory.NewStatic(advisory.SourceContextSearch,
			"Recent market context is neutral for major pairs"),
		advisory.SourceChatRecommend: advisory.NewStatic(advisory.SourceChatRecommend,
			"HOLD - wait for a clearer setup"),
	}

	return brain.New(
		indicators.NewFibonacci(cfg.Brain.FibLookback),
		advisories,
		brain.Config{
			Weights: brain.Weights{
				Indicator:          cfg.Brain.IndicatorWeight,
				ContextSearch:      cfg.Brain.ContextSearchWeight,
				ChatRecommendation: cfg.Brain.ChatRecommendWeight,
			},
			ActionThreshold: cfg.Brain.ActionThreshold,
			MinConfidence:   cfg.Brain.MinConfidence,
			AdvisoryTimeout: cfg.Brain.AdvisoryTimeout,
		},
	)
}

// riskThresholds maps the loaded configuration onto gate thresholds
func riskThresholds(cfg *config.Config) risk.Thresholds {
	return risk.Thresholds{
		MaxDailyLossPct:       cfg.Risk.MaxDailyLossPct,
		MaxDrawdownPct:        cfg.Risk.MaxDrawdownPct,
		MaxPositionSizePct:    cfg.Risk.MaxPositionSizePct,
		MaxMarginUsagePct:     cfg.Risk.MaxMarginUsagePct,
		MaxCorrelation:        cfg.Risk.MaxCorrelation,
		MinStopLossPips:       cfg.Risk.MinStopLossPips,
		MaxStopLossPips:       cfg.Risk.MaxStopLossPips,
		MaxRuinProbabilityPct: cfg.Risk.MaxRuinProbabilityPct,
		Stats: risk.TradeStats{
			WinRate:         cfg.Risk.StatsWinRate,
			AvgWinPct:       cfg.Risk.StatsAvgWinPct,
			AvgLossPct:      cfg.Risk.StatsAvgLossPct,
			ProjectedTrades: cfg.Risk.StatsProjectedTrades,
		},
	}
}

// startMonitoring serves the prometheus and health endpoints in the background
func startMonitoring(cfg *config.Config) {
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Monitoring.PrometheusPort)
		if err := http.ListenAndServe(addr, monitoring.NewMetricsHandler()); err != nil {
			log.Printf("metrics server stopped: %v", err)
		}
	}()
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Monitoring.HealthPort)
		if err := http.ListenAndServe(addr, monitoring.NewHealthChecker()); err != nil {
			log.Printf("health server stopped: %v", err)
		}
	}()
}

// sampleCandles builds a synthetic swing around the given price for the demo
func sampleCandles(price float64) []types.Candle {
	candles := make([]types.Candle, 60)
	start := time.Now().Add(-60 * time.Hour)
	for i := range candles {
		// Gentle sine swing of ~1% around the current price
		offset := price * 0.01 * math.Sin(float64(i)/9.0)
		closePrice := price + offset
		candles[i] = types.Candle{
			OpenTime: start.Add(time.Duration(i) * time.Hour),
			Open:     closePrice - price*0.0005,
			High:     closePrice + price*0.001,
			Low:      closePrice - price*0.001,
			Close:    closePrice,
			Volume:   1000,
		}
	}
	return candles
}

// printResult renders the orchestration result as a console table
func printResult(result *orchestrator.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("TRADE DECISION")
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"Symbol", result.Symbol},
		{"Action", result.Decision.Action.String()},
		{"Confidence", fmt.Sprintf("%.2f", result.Decision.Confidence)},
		{"Outcome", string(result.Outcome)},
		{"Elapsed", fmt.Sprintf("%.2f ms", result.ElapsedMS)},
	})
	if result.Sizing != nil {
		t.AppendRows([]table.Row{
			{"Lot size", fmt.Sprintf("%.2f", result.Sizing.LotSize)},
			{"Risk amount", fmt.Sprintf("$%.2f", result.Sizing.RiskAmount)},
		})
	}
	if result.Risk != nil {
		t.AppendRow(table.Row{"Risk level", result.Risk.OverallLevel.String()})
	}
	if len(result.Reasons) > 0 {
		t.AppendRow(table.Row{"Reasons", strings.Join(result.Reasons, "; ")})
	}
	if len(result.Warnings) > 0 {
		t.AppendRow(table.Row{"Warnings", strings.Join(result.Warnings, "; ")})
	}
	t.Render()
}
