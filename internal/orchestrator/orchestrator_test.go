package orchestrator

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/fx-trade-core/internal/execution"
	"github.com/ducminhle1904/fx-trade-core/internal/market"
	"github.com/ducminhle1904/fx-trade-core/internal/risk"
	"github.com/ducminhle1904/fx-trade-core/internal/sizing"
	"github.com/ducminhle1904/fx-trade-core/pkg/types"
)

type fakeFuser struct {
	calls    int
	decision *types.Decision
	err      error
}

func (f *fakeFuser) Decide(ctx context.Context, symbol string, candles []types.Candle, currentPrice float64) (*types.Decision, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.decision, nil
}

type fakeSizer struct {
	calls  int
	result *sizing.Result
	err    error
}

func (f *fakeSizer) Size(req sizing.Request) (*sizing.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeGate struct {
	calls   int
	verdict *risk.Verdict
}

func (f *fakeGate) Evaluate(symbol string, qty, entryPrice, stopLossPrice float64, side types.TradeAction, account types.AccountSnapshot) *risk.Verdict {
	f.calls++
	return f.verdict
}

type fakeExecutor struct {
	calls  int
	result *types.ExecutionResult
	err    error
}

func (f *fakeExecutor) Submit(ctx context.Context, order execution.Order) (*types.ExecutionResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeExecutor) GetName() string { return "fake" }

func decisionWith(action types.TradeAction) *types.Decision {
	return &types.Decision{
		Symbol:     "EURUSD",
		Action:     action,
		Confidence: 0.8,
	}
}

func safeVerdict() *risk.Verdict {
	return &risk.Verdict{
		Checks:       []risk.Check{{Name: risk.CheckDailyLoss, Level: risk.LevelSafe, Detail: "daily loss 0.00% within limit 5.00%"}},
		OverallLevel: risk.LevelSafe,
		CanTrade:     true,
	}
}

func criticalVerdict() *risk.Verdict {
	return &risk.Verdict{
		Checks:       []risk.Check{{Name: risk.CheckDailyLoss, Level: risk.LevelCritical, Detail: "daily loss limit exceeded: 6.00% >= 5.00%"}},
		OverallLevel: risk.LevelCritical,
		CanTrade:     false,
	}
}

func baseRequest() Request {
	return Request{
		Symbol:       "EURUSD",
		CurrentPrice: 1.0850,
		StopLossPips: 50,
		Strategy:     sizing.StrategyFixedRisk,
		Params:       sizing.Params{RiskPercent: 2.0},
		Leverage:     1,
		Account: types.AccountSnapshot{
			Balance:    10000,
			Equity:     10000,
			PeakEquity: 10000,
		},
	}
}

func TestOrchestrate_HoldShortCircuits(t *testing.T) {
	fuser := &fakeFuser{decision: decisionWith(types.ActionHold)}
	sizer := &fakeSizer{}
	gate := &fakeGate{}
	executor := &fakeExecutor{}

	orch := New(fuser, sizer, gate, executor, market.NewTable(), nil)

	result, err := orch.Orchestrate(context.Background(), baseRequest())
	require.NoError(t, err)

	assert.Equal(t, OutcomeHoldSkipped, result.Outcome)
	assert.Nil(t, result.Sizing)
	assert.Nil(t, result.Risk)
	assert.Nil(t, result.Execution)
	assert.Equal(t, 0, sizer.calls)
	assert.Equal(t, 0, gate.calls)
	assert.Equal(t, 0, executor.calls)
	require.Len(t, result.Reasons, 1)
	assert.Contains(t, result.Reasons[0], "HOLD")
}

func TestOrchestrate_RejectedByRisk(t *testing.T) {
	fuser := &fakeFuser{decision: decisionWith(types.ActionBuy)}
	sizer := &fakeSizer{result: &sizing.Result{LotSize: 0.4, RiskAmount: 200, StrategyUsed: sizing.StrategyFixedRisk}}
	gate := &fakeGate{verdict: criticalVerdict()}
	executor := &fakeExecutor{}

	orch := New(fuser, sizer, gate, executor, market.NewTable(), nil)

	req := baseRequest()
	req.AutoExecute = true
	result, err := orch.Orchestrate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, OutcomeRejectedByRisk, result.Outcome)
	assert.NotNil(t, result.Sizing)
	assert.NotNil(t, result.Risk)
	assert.Nil(t, result.Execution)
	assert.Equal(t, 0, executor.calls)
	require.Len(t, result.Reasons, 1)
	assert.Contains(t, result.Reasons[0], "daily loss limit exceeded")
}

func TestOrchestrate_ProceedWithoutAutoExecute(t *testing.T) {
	fuser := &fakeFuser{decision: decisionWith(types.ActionBuy)}
	sizer := &fakeSizer{result: &sizing.Result{LotSize: 0.4, RiskAmount: 200, StrategyUsed: sizing.StrategyFixedRisk}}
	gate := &fakeGate{verdict: safeVerdict()}
	executor := &fakeExecutor{}

	orch := New(fuser, sizer, gate, executor, market.NewTable(), nil)

	result, err := orch.Orchestrate(context.Background(), baseRequest())
	require.NoError(t, err)

	assert.Equal(t, OutcomeProceed, result.Outcome)
	assert.NotNil(t, result.Sizing)
	assert.NotNil(t, result.Risk)
	assert.Nil(t, result.Execution)
	assert.Equal(t, 0, executor.calls)
}

func TestOrchestrate_Executed(t *testing.T) {
	fuser := &fakeFuser{decision: decisionWith(types.ActionBuy)}
	sizer := &fakeSizer{result: &sizing.Result{LotSize: 0.4, RiskAmount: 200, StrategyUsed: sizing.StrategyFixedRisk}}
	gate := &fakeGate{verdict: safeVerdict()}

	orch := New(fuser, sizer, gate, execution.NewPaper(), market.NewTable(), nil)

	req := baseRequest()
	req.AutoExecute = true
	result, err := orch.Orchestrate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, OutcomeExecuted, result.Outcome)
	require.NotNil(t, result.Execution)
	assert.Equal(t, "paper-000001", result.Execution.ConfirmationID)
	assert.Equal(t, 1.0850, result.Execution.FillPrice)
	assert.Equal(t, types.ActionBuy, result.Execution.Side)
}

func TestOrchestrate_SizingErrorIsTerminal(t *testing.T) {
	fuser := &fakeFuser{decision: decisionWith(types.ActionBuy)}
	sizer := &fakeSizer{err: fmt.Errorf("no contract spec for symbol BTCUSD")}
	gate := &fakeGate{verdict: safeVerdict()}
	executor := &fakeExecutor{}

	orch := New(fuser, sizer, gate, executor, market.NewTable(), nil)

	result, err := orch.Orchestrate(context.Background(), baseRequest())
	require.NoError(t, err)

	assert.Equal(t, OutcomeExecutionFailed, result.Outcome)
	assert.Nil(t, result.Sizing)
	assert.Nil(t, result.Risk)
	assert.Equal(t, 0, gate.calls)
	require.Len(t, result.Reasons, 1)
	assert.Contains(t, result.Reasons[0], "sizing_error")
}

func TestOrchestrate_ExecutionFailureKeepsAnalysis(t *testing.T) {
	fuser := &fakeFuser{decision: decisionWith(types.ActionBuy)}
	sizer := &fakeSizer{result: &sizing.Result{LotSize: 0.4, RiskAmount: 200, StrategyUsed: sizing.StrategyFixedRisk}}
	gate := &fakeGate{verdict: safeVerdict()}
	executor := &fakeExecutor{err: fmt.Errorf("order rejected by broker")}

	orch := New(fuser, sizer, gate, executor, market.NewTable(), nil)

	req := baseRequest()
	req.AutoExecute = true
	result, err := orch.Orchestrate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, OutcomeExecutionFailed, result.Outcome)
	assert.NotNil(t, result.Decision)
	assert.NotNil(t, result.Sizing)
	assert.NotNil(t, result.Risk)
	assert.Nil(t, result.Execution)
	require.Len(t, result.Reasons, 1)
	assert.Contains(t, result.Reasons[0], "execution failed")
}

func TestOrchestrate_NoExecutorConfigured(t *testing.T) {
	fuser := &fakeFuser{decision: decisionWith(types.ActionSell)}
	sizer := &fakeSizer{result: &sizing.Result{LotSize: 0.4, RiskAmount: 200, StrategyUsed: sizing.StrategyFixedRisk}}
	gate := &fakeGate{verdict: safeVerdict()}

	orch := New(fuser, sizer, gate, nil, market.NewTable(), nil)

	req := baseRequest()
	req.AutoExecute = true
	result, err := orch.Orchestrate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, OutcomeExecutionFailed, result.Outcome)
	assert.Contains(t, result.Reasons[0], "no execution collaborator")
}

func TestOrchestrate_SignalFailureReturnsError(t *testing.T) {
	fuser := &fakeFuser{err: fmt.Errorf("indicator unavailable")}

	orch := New(fuser, &fakeSizer{}, &fakeGate{}, nil, market.NewTable(), nil)

	result, err := orch.Orchestrate(context.Background(), baseRequest())
	require.Error(t, err)
	assert.Nil(t, result)
}

func TestOrchestrate_WarningsPropagate(t *testing.T) {
	decision := decisionWith(types.ActionBuy)
	decision.Warnings = []string{"advisory context-search unavailable, weight redistributed: timeout"}

	fuser := &fakeFuser{decision: decision}
	sizer := &fakeSizer{result: &sizing.Result{LotSize: 10.0, RiskAmount: 5000, StrategyUsed: sizing.StrategyFixedRisk, Clamped: true}}
	warnVerdict := &risk.Verdict{
		Checks: []risk.Check{
			{Name: risk.CheckCorrelation, Level: risk.LevelWarning, Detail: "high correlation with open positions"},
		},
		OverallLevel: risk.LevelWarning,
		CanTrade:     true,
	}
	gate := &fakeGate{verdict: warnVerdict}

	orch := New(fuser, sizer, gate, nil, market.NewTable(), nil)

	result, err := orch.Orchestrate(context.Background(), baseRequest())
	require.NoError(t, err)

	assert.Equal(t, OutcomeProceed, result.Outcome)
	require.Len(t, result.Warnings, 3)
	assert.Contains(t, result.Warnings[0], "advisory context-search unavailable")
	assert.Contains(t, result.Warnings[1], "clamped")
	assert.Contains(t, result.Warnings[2], "high correlation")
}

func TestOrchestrate_StopLossPriceBySide(t *testing.T) {
	orch := New(nil, nil, nil, nil, market.NewTable(), nil)

	// 50 pips on EURUSD is 0.0050
	assert.InDelta(t, 1.0800, orch.stopLossPrice("EURUSD", 1.0850, 50, types.ActionBuy), 1e-9)
	assert.InDelta(t, 1.0900, orch.stopLossPrice("EURUSD", 1.0850, 50, types.ActionSell), 1e-9)

	// JPY quotes use a 0.01 pip size
	assert.InDelta(t, 154.50, orch.stopLossPrice("USDJPY", 155.00, 50, types.ActionBuy), 1e-9)

	// Unknown symbols fall back to the four-decimal pip size
	assert.InDelta(t, 1.0800, orch.stopLossPrice("ZZZZZZ", 1.0850, 50, types.ActionBuy), 1e-9)
}

func TestOrchestrate_RepeatRunsMatch(t *testing.T) {
	fuser := &fakeFuser{decision: decisionWith(types.ActionBuy)}
	sizer := &fakeSizer{result: &sizing.Result{LotSize: 0.4, RiskAmount: 200, StrategyUsed: sizing.StrategyFixedRisk}}
	gate := &fakeGate{verdict: safeVerdict()}

	orch := New(fuser, sizer, gate, nil, market.NewTable(), nil)

	first, err := orch.Orchestrate(context.Background(), baseRequest())
	require.NoError(t, err)
	second, err := orch.Orchestrate(context.Background(), baseRequest())
	require.NoError(t, err)

	assert.Equal(t, first.Outcome, second.Outcome)
	assert.Equal(t, first.Sizing, second.Sizing)
	assert.Equal(t, first.Risk, second.Risk)
	assert.Equal(t, first.Reasons, second.Reasons)
	assert.Equal(t, first.Warnings, second.Warnings)
}
