package advisory

import (
	"context"
	"strings"

	"github.com/ducminhle1904/fx-trade-core/pkg/types"
)

// Well-known advisory source names used by the brain's weighting
const (
	SourceContextSearch = "context-search"
	SourceChatRecommend = "chat-recommendation"
)

// Provider is an optional, independently-failable signal source. A failed or
// timed-out query degrades the decision, it never fails it.
type Provider interface {
	Query(ctx context.Context, symbol, indicatorSummary string) (*types.AdvisoryResult, error)
	GetName() string
}

// ExtractSignal parses a free-text advisory payload into a signal label.
// SELL wins over BUY so "STRONG SELL" is never read as a buy; nil means the
// payload carried no actionable signal.
func ExtractSignal(text string) *types.SignalLabel {
	upper := strings.ToUpper(text)
	var label types.SignalLabel
	switch {
	case strings.Contains(upper, "SELL"):
		label = types.SignalSell
	case strings.Contains(upper, "BUY"):
		label = types.SignalBuy
	default:
		return nil
	}
	return &label
}

// Static is a fixed-payload provider for tests and the demo binary
type Static struct {
	name    string
	payload string
	err     error
}

// NewStatic creates a provider that always returns the given payload
func NewStatic(name, payload string) *Static {
	return &Static{name: name, payload: payload}
}

// NewFailing creates a provider that always fails, for degradation tests
func NewFailing(name string, err error) *Static {
	return &Static{name: name, err: err}
}

// GetName returns the provider name
func (s *Static) GetName() string {
	return s.name
}

// Query returns the fixed payload, honoring context cancellation
func (s *Static) Query(ctx context.Context, symbol, indicatorSummary string) (*types.AdvisoryResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	return &types.AdvisoryResult{
		RawPayload:      s.payload,
		ExtractedSignal: ExtractSignal(s.payload),
	}, nil
}
