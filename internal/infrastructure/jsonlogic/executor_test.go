package jsonlogic

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"service-discounts/internal/domain"
)

func TestGuardExecutor_Check(t *testing.T) {
	exec := NewGuardExecutor()
	guard := domain.GuardConfig{
		ID:           "max-discount",
		Logic:        map[string]any{">": []any{map[string]any{"var": "line.discount_rate"}, 30}},
		ErrorMessage: "discount above 30%",
	}

	t.Run("blocks a line over the limit", func(t *testing.T) {
		hit, err := exec.Check(context.Background(), guard, map[string]any{
			"line": map[string]any{"discount_rate": 40, "price": decimal.RequireFromString("60.00")},
		})
		require.NoError(t, err)
		assert.True(t, hit)
	})

	t.Run("passes a line under the limit", func(t *testing.T) {
		hit, err := exec.Check(context.Background(), guard, map[string]any{
			"line": map[string]any{"discount_rate": 8},
		})
		require.NoError(t, err)
		assert.False(t, hit)
	})

	t.Run("rejects non boolean logic", func(t *testing.T) {
		_, err := exec.Check(context.Background(), domain.GuardConfig{
			ID:    "sum",
			Logic: map[string]any{"+": []any{1, 2}},
		}, map[string]any{})
		assert.Error(t, err)
	})

	t.Run("rejects empty logic", func(t *testing.T) {
		_, err := exec.Check(context.Background(), domain.GuardConfig{ID: "empty"}, nil)
		assert.Error(t, err)
	})
}

func TestRound(t *testing.T) {
	assert.Equal(t, 84.99, Round([]any{84.987, 2}))
	assert.Equal(t, 2.4, Round([]any{2.405}))
	assert.Equal(t, 2.0, Round([]any{2.5, 0}))
	assert.Nil(t, Round([]any{"abc"}))
}

func TestEvaluate_RoundOperator(t *testing.T) {
	registerOperators()
	out, err := Evaluate(map[string]any{"round": []any{10.555, 1}}, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, 10.6, out)
}
