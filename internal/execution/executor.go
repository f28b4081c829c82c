package execution

import (
	"context"

	"github.com/ducminhle1904/fx-trade-core/pkg/types"
)

// Order is the hand-off from the orchestrator to the execution collaborator
type Order struct {
	Symbol string
	Side   types.TradeAction
	Qty    float64
	Price  float64
}

// Executor submits an order to whatever broker backs it. The decision core
// treats this as an opaque synchronous call with a result or an error and must
// honor context cancellation.
type Executor interface {
	Submit(ctx context.Context, order Order) (*types.ExecutionResult, error)
	GetName() string
}
