package execution

import (
	"context"
	"fmt"
	"sync"
	"time"

	coreerrors "github.com/ducminhle1904/fx-trade-core/internal/errors"
	"github.com/ducminhle1904/fx-trade-core/pkg/types"
)

// Paper is a simulated executor. Orders fill immediately at the requested
// price and positions are tracked in memory, so runs are deterministic and
// safe without a broker connection.
type Paper struct {
	mu        sync.Mutex
	nextID    int
	positions map[string]float64
}

// NewPaper creates a paper trading executor
func NewPaper() *Paper {
	return &Paper{
		nextID:    1,
		positions: make(map[string]float64),
	}
}

// GetName returns the executor name
func (p *Paper) GetName() string {
	return "paper"
}

// Submit fills the order at its requested price
func (p *Paper) Submit(ctx context.Context, order Order) (*types.ExecutionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, coreerrors.NewExecutionFailed("execution", "Submit", err)
	}
	if order.Qty <= 0 {
		return nil, coreerrors.NewInvalidParameter("execution", "Submit", "order qty must be > 0")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID
	p.nextID++

	switch order.Side {
	case types.ActionBuy:
		p.positions[order.Symbol] += order.Qty
	case types.ActionSell:
		p.positions[order.Symbol] -= order.Qty
	default:
		return nil, coreerrors.NewInvalidParameter("execution", "Submit", "order side must be BUY or SELL")
	}

	return &types.ExecutionResult{
		ConfirmationID: fmt.Sprintf("paper-%06d", id),
		Symbol:         order.Symbol,
		Side:           order.Side,
		Qty:            order.Qty,
		FillPrice:      order.Price,
		Status:         "filled",
		Timestamp:      time.Now().UTC(),
	}, nil
}

// Position returns the simulated net position for a symbol
func (p *Paper) Position(symbol string) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positions[symbol]
}
