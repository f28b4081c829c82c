package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoreError_Error(t *testing.T) {
	err := NewInvalidParameter("sizing", "Size", "stop_loss_pips must be > 0")

	assert.Contains(t, err.Error(), "INVALID_PARAMETER")
	assert.Contains(t, err.Error(), "sizing")
	assert.Contains(t, err.Error(), "stop_loss_pips must be > 0")
}

func TestCoreError_Unwrap(t *testing.T) {
	underlying := fmt.Errorf("connection refused")
	err := NewProviderUnavailable("brain", "Decide", underlying)

	assert.True(t, errors.Is(err, underlying))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWrap_NilError(t *testing.T) {
	assert.Nil(t, Wrap(nil, CategoryExecutionFailed, "execution", "Submit"))
}

func TestCategoryPredicates(t *testing.T) {
	assert.True(t, IsInvalidParameter(NewInvalidParameter("sizing", "Size", "bad input")))
	assert.True(t, IsUnknownSymbol(NewUnknownSymbol("market", "Lookup", "BTCUSD")))
	assert.True(t, IsProviderUnavailable(NewProviderUnavailable("brain", "Decide", fmt.Errorf("down"))))
	assert.True(t, IsExecutionFailed(NewExecutionFailed("execution", "Submit", fmt.Errorf("rejected"))))

	assert.False(t, IsInvalidParameter(NewUnknownSymbol("market", "Lookup", "BTCUSD")))
	assert.False(t, IsExecutionFailed(fmt.Errorf("plain error")))
	assert.False(t, IsUnknownSymbol(nil))
}

func TestCategoryPredicates_WrappedChain(t *testing.T) {
	inner := NewUnknownSymbol("market", "Lookup", "BTCUSD")
	outer := fmt.Errorf("sizing failed: %w", inner)

	require.True(t, IsUnknownSymbol(outer))
	assert.False(t, IsInvalidParameter(outer))
}
