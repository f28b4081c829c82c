package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/ducminhle1904/fx-trade-core/internal/execution"
	"github.com/ducminhle1904/fx-trade-core/internal/market"
	"github.com/ducminhle1904/fx-trade-core/internal/monitoring"
	"github.com/ducminhle1904/fx-trade-core/internal/risk"
	"github.com/ducminhle1904/fx-trade-core/internal/sizing"
	"github.com/ducminhle1904/fx-trade-core/pkg/types"
)

// Outcome is the terminal state of one orchestration call
type Outcome string

const (
	OutcomeProceed         Outcome = "PROCEED"
	OutcomeHoldSkipped     Outcome = "HOLD_SKIPPED"
	OutcomeRejectedByRisk  Outcome = "REJECTED_BY_RISK"
	OutcomeExecuted        Outcome = "EXECUTED"
	OutcomeExecutionFailed Outcome = "EXECUTION_FAILED"
)

// SignalFuser produces the trading decision for one request
type SignalFuser interface {
	Decide(ctx context.Context, symbol string, candles []types.Candle, currentPrice float64) (*types.Decision, error)
}

// PositionSizer converts a sizing request into a lot size
type PositionSizer interface {
	Size(req sizing.Request) (*sizing.Result, error)
}

// RiskGate evaluates a proposed trade against the risk checks
type RiskGate interface {
	Evaluate(symbol string, qty, entryPrice, stopLossPrice float64, side types.TradeAction, account types.AccountSnapshot) *risk.Verdict
}

// AuditLogger receives stage-by-stage audit lines. May be nil.
type AuditLogger interface {
	Info(format string, args ...interface{})
	Warning(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// Request is one orchestration call. The account snapshot is supplied by the
// caller and never cached, so concurrent calls need no locking.
type Request struct {
	Symbol       string
	Candles      []types.Candle
	CurrentPrice float64
	StopLossPips float64
	Strategy     sizing.Strategy
	Params       sizing.Params
	Leverage     float64
	Account      types.AccountSnapshot
	AutoExecute  bool
}

// Result is the audit-friendly outcome of one orchestration call. Sizing and
// Risk stay nil when their stage never ran; Result is not mutated after return.
type Result struct {
	Symbol    string
	Decision  *types.Decision
	Sizing    *sizing.Result
	Risk      *risk.Verdict
	Execution *types.ExecutionResult
	Outcome   Outcome
	Reasons   []string
	Warnings  []string
	ElapsedMS float64
}

// Orchestrator sequences signal fusion, position sizing, the risk gate and the
// optional execution hand-off, short-circuiting on HOLD or a critical finding.
type Orchestrator struct {
	fuser    SignalFuser
	sizer    PositionSizer
	gate     RiskGate
	executor execution.Executor
	table    *market.Table
	audit    AuditLogger
}

// New creates an orchestrator. The executor may be nil when auto-execution is
// never requested; the audit logger may be nil.
func New(fuser SignalFuser, sizer PositionSizer, gate RiskGate, executor execution.Executor, table *market.Table, audit AuditLogger) *Orchestrator {
	return &Orchestrator{
		fuser:    fuser,
		sizer:    sizer,
		gate:     gate,
		executor: executor,
		table:    table,
		audit:    audit,
	}
}

// Orchestrate runs the full workflow for one request.
//
// A request that cannot produce a decision at all (indicator failure) is the
// one case that fails hard. Once a non-HOLD decision exists, stage failures
// are converted into a terminal result instead of an error.
func (o *Orchestrator) Orchestrate(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	result := &Result{Symbol: req.Symbol}

	// SIGNAL
	decision, err := o.fuser.Decide(ctx, req.Symbol, req.Candles, req.CurrentPrice)
	if err != nil {
		o.logError("[%s] signal stage failed: %v", req.Symbol, err)
		return nil, err
	}
	result.Decision = decision
	result.Warnings = append(result.Warnings, decision.Warnings...)
	monitoring.RecordDecision(req.Symbol, decision.Action.String(), decision.Confidence)
	o.logInfo("[%s] signal: %s (confidence %.2f)", req.Symbol, decision.Action, decision.Confidence)

	if decision.Action == types.ActionHold {
		result.Outcome = OutcomeHoldSkipped
		result.Reasons = append(result.Reasons, "signal is HOLD, no trade considered")
		return o.finish(result, start), nil
	}

	// SIZING
	sizingResult, err := o.sizer.Size(sizing.Request{
		Symbol:         req.Symbol,
		StopLossPips:   req.StopLossPips,
		AccountBalance: req.Account.Balance,
		Leverage:       req.Leverage,
		Strategy:       req.Strategy,
		Params:         req.Params,
	})
	if err != nil {
		o.logError("[%s] sizing stage failed: %v", req.Symbol, err)
		result.Outcome = OutcomeExecutionFailed
		result.Reasons = append(result.Reasons, fmt.Sprintf("sizing_error: %v", err))
		return o.finish(result, start), nil
	}
	result.Sizing = sizingResult
	if sizingResult.Clamped {
		result.Warnings = append(result.Warnings, fmt.Sprintf("lot size clamped to %.2f", sizingResult.LotSize))
	}
	o.logInfo("[%s] sizing: %.2f lots (%s), risking %.2f", req.Symbol, sizingResult.LotSize, sizingResult.StrategyUsed, sizingResult.RiskAmount)

	// RISK
	stopLossPrice := o.stopLossPrice(req.Symbol, req.CurrentPrice, req.StopLossPips, decision.Action)
	verdict := o.gate.Evaluate(req.Symbol, sizingResult.LotSize, req.CurrentPrice, stopLossPrice, decision.Action, req.Account)
	result.Risk = verdict
	monitoring.RecordRiskLevel(req.Symbol, verdict.OverallLevel.String())

	for _, check := range verdict.Checks {
		switch check.Level {
		case risk.LevelWarning:
			result.Warnings = append(result.Warnings, check.Detail)
		case risk.LevelCritical:
			result.Reasons = append(result.Reasons, check.Detail)
		}
	}
	o.logInfo("[%s] risk: %s", req.Symbol, verdict.OverallLevel)

	if !verdict.CanTrade {
		result.Outcome = OutcomeRejectedByRisk
		monitoring.RecordRejection(req.Symbol)
		return o.finish(result, start), nil
	}

	if !req.AutoExecute {
		result.Outcome = OutcomeProceed
		return o.finish(result, start), nil
	}

	// EXECUTING
	if o.executor == nil {
		result.Outcome = OutcomeExecutionFailed
		result.Reasons = append(result.Reasons, "auto-execution requested but no execution collaborator configured")
		return o.finish(result, start), nil
	}

	confirmation, err := o.executor.Submit(ctx, execution.Order{
		Symbol: req.Symbol,
		Side:   decision.Action,
		Qty:    sizingResult.LotSize,
		Price:  req.CurrentPrice,
	})
	if err != nil {
		// Execution failure never discards the upstream analysis
		o.logError("[%s] execution failed: %v", req.Symbol, err)
		result.Outcome = OutcomeExecutionFailed
		result.Reasons = append(result.Reasons, fmt.Sprintf("execution failed: %v", err))
		monitoring.RecordExecution(req.Symbol, false)
		return o.finish(result, start), nil
	}

	result.Execution = confirmation
	result.Outcome = OutcomeExecuted
	monitoring.RecordExecution(req.Symbol, true)
	o.logInfo("[%s] executed: %s at %.5f", req.Symbol, confirmation.ConfirmationID, confirmation.FillPrice)
	return o.finish(result, start), nil
}

// stopLossPrice derives the stop price from the entry, pip distance and side
func (o *Orchestrator) stopLossPrice(symbol string, entryPrice, stopLossPips float64, side types.TradeAction) float64 {
	pipSize := 0.0001
	if spec, err := o.table.Lookup(symbol); err == nil && spec.PipSize > 0 {
		pipSize = spec.PipSize
	}
	if side == types.ActionSell {
		return entryPrice + stopLossPips*pipSize
	}
	return entryPrice - stopLossPips*pipSize
}

// finish stamps the elapsed wall time and records the outcome metric
func (o *Orchestrator) finish(result *Result, start time.Time) *Result {
	result.ElapsedMS = float64(time.Since(start).Microseconds()) / 1000.0
	monitoring.RecordOrchestration(string(result.Outcome), result.ElapsedMS)
	return result
}

func (o *Orchestrator) logInfo(format string, args ...interface{}) {
	if o.audit != nil {
		o.audit.Info(format, args...)
	}
}

func (o *Orchestrator) logError(format string, args ...interface{}) {
	if o.audit != nil {
		o.audit.Error(format, args...)
	}
}
