package execution

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	bybit_api "github.com/bybit-exchange/bybit.go.api"

	coreerrors "github.com/ducminhle1904/fx-trade-core/internal/errors"
	"github.com/ducminhle1904/fx-trade-core/pkg/types"
)

// BrokerConfig holds the credentials and environment for the Bybit executor
type BrokerConfig struct {
	APIKey    string
	APISecret string
	Testnet   bool
}

// Bybit submits market orders through the Bybit UTA API. The decision core
// only needs the submit/confirm contract; everything else stays with the
// broker client.
type Bybit struct {
	httpClient *bybit_api.Client
	testnet    bool
}

// NewBybit creates a Bybit-backed executor
func NewBybit(config BrokerConfig) *Bybit {
	baseURL := bybit_api.MAINNET
	if config.Testnet {
		baseURL = bybit_api.TESTNET
	}

	return &Bybit{
		httpClient: bybit_api.NewBybitHttpClient(
			config.APIKey,
			config.APISecret,
			bybit_api.WithBaseURL(baseURL),
		),
		testnet: config.Testnet,
	}
}

// GetName returns the executor name
func (b *Bybit) GetName() string {
	return "bybit"
}

// Submit places a market order and converts the confirmation
func (b *Bybit) Submit(ctx context.Context, order Order) (*types.ExecutionResult, error) {
	if order.Qty <= 0 {
		return nil, coreerrors.NewInvalidParameter("execution", "Submit", "order qty must be > 0")
	}

	side := "Buy"
	if order.Side == types.ActionSell {
		side = "Sell"
	}

	params := map[string]interface{}{
		"category":  "linear",
		"symbol":    order.Symbol,
		"side":      side,
		"orderType": "Market",
		"qty":       strconv.FormatFloat(order.Qty, 'f', -1, 64),
	}

	response, err := b.httpClient.NewUtaBybitServiceWithParams(params).PlaceOrder(ctx)
	if err != nil {
		return nil, coreerrors.NewExecutionFailed("execution", "Submit", err)
	}

	result, err := parseOrderResponse(response)
	if err != nil {
		return nil, coreerrors.NewExecutionFailed("execution", "Submit", err)
	}

	result.Symbol = order.Symbol
	result.Side = order.Side
	result.Qty = order.Qty
	return result, nil
}

// parseOrderResponse converts the raw API response into an execution result
func parseOrderResponse(response interface{}) (*types.ExecutionResult, error) {
	serverResp, ok := response.(*bybit_api.ServerResponse)
	if !ok {
		return nil, fmt.Errorf("invalid response type")
	}
	if serverResp.RetCode != 0 {
		return nil, fmt.Errorf("API error: %s (code: %d)", serverResp.RetMsg, serverResp.RetCode)
	}

	resultBytes, err := json.Marshal(serverResp.Result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	var orderResult struct {
		OrderID     string `json:"orderId"`
		OrderStatus string `json:"orderStatus"`
		AvgPrice    string `json:"avgPrice"`
	}
	if err := json.Unmarshal(resultBytes, &orderResult); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order result: %w", err)
	}

	fillPrice := 0.0
	if orderResult.AvgPrice != "" {
		if p, err := strconv.ParseFloat(orderResult.AvgPrice, 64); err == nil {
			fillPrice = p
		}
	}

	status := orderResult.OrderStatus
	if status == "" {
		status = "submitted"
	}

	return &types.ExecutionResult{
		ConfirmationID: orderResult.OrderID,
		FillPrice:      fillPrice,
		Status:         status,
		Timestamp:      time.Now().UTC(),
	}, nil
}
