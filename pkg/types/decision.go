package types

import "time"

// TradeAction represents the type of trading action
type TradeAction int

const (
	ActionHold TradeAction = iota
	ActionBuy
	ActionSell
)

func (ta TradeAction) String() string {
	switch ta {
	case ActionHold:
		return "HOLD"
	case ActionBuy:
		return "BUY"
	case ActionSell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// Decision is the fused trading decision for one symbol. Immutable once
// produced; ownership passes to the caller for persistence.
type Decision struct {
	Symbol     string
	Action     TradeAction
	Confidence float64
	Indicator  *IndicatorResult
	Advisories map[string]*AdvisoryResult
	Warnings   []string
	Timestamp  time.Time
}

// ExecutionResult is the confirmation returned by the execution collaborator
type ExecutionResult struct {
	ConfirmationID string
	Symbol         string
	Side           TradeAction
	Qty            float64
	FillPrice      float64
	Status         string
	Timestamp      time.Time
}
