package types

import "time"

// Candle is a single OHLCV bar. Sequences are chronological and immutable
// once produced.
type Candle struct {
	OpenTime time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
}

// SignalLabel is the label attached to an indicator or advisory signal
type SignalLabel string

const (
	SignalStrongBuy  SignalLabel = "STRONG_BUY"
	SignalBuy        SignalLabel = "BUY"
	SignalHold       SignalLabel = "HOLD"
	SignalSell       SignalLabel = "SELL"
	SignalStrongSell SignalLabel = "STRONG_SELL"
)

// IndicatorResult is the deterministic indicator analysis for one decision
// request. Consumed read-only by the brain.
type IndicatorResult struct {
	Summary    string
	Signal     SignalLabel
	RSI        float64
	MACDSignal float64
	FibLevels  []float64
}

// AdvisoryResult is the payload from one optional advisory source.
// ExtractedSignal is nil when no actionable signal could be parsed.
type AdvisoryResult struct {
	RawPayload      string
	ExtractedSignal *SignalLabel
}

// Position is one open position from the account snapshot
type Position struct {
	Symbol     string
	Side       TradeAction
	Qty        float64
	EntryPrice float64
}

// AccountSnapshot is the caller-assembled account state for one call.
// The core never caches account state between calls.
type AccountSnapshot struct {
	Balance          float64
	Equity           float64
	PeakEquity       float64
	DailyRealizedPnL float64
	OpenPositions    []Position
}
