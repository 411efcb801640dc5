package jsonlogic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/diegoholiveira/jsonlogic/v3"
	"go.uber.org/zap"

	"service-discounts/internal/domain"
	"service-discounts/internal/logging"
)

// GuardExecutor evaluates guard conditions with JsonLogic.
type GuardExecutor struct{}

func NewGuardExecutor() *GuardExecutor {
	registerOperators()
	return &GuardExecutor{}
}

// Check reports whether guard's logic evaluates to true against data.
func (g *GuardExecutor) Check(ctx context.Context, guard domain.GuardConfig, data map[string]any) (bool, error) {
	if len(guard.Logic) == 0 {
		return false, fmt.Errorf("guard %s has no logic", guard.ID)
	}
	out, err := Evaluate(guard.Logic, data)
	if err != nil {
		return false, err
	}
	hit, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("guard %s must return a boolean, got %T", guard.ID, out)
	}
	if hit {
		logging.Debug("guard hit", zap.String("guard", guard.ID), zap.Any("data", data))
	}
	return hit, nil
}

// Evaluate applies a JsonLogic rule to data and decodes the result.
func Evaluate(rule map[string]any, data map[string]any) (any, error) {
	ruleJSON, err := json.Marshal(rule)
	if err != nil {
		return nil, fmt.Errorf("encode rule: %w", err)
	}
	dataJSON, err := json.Marshal(normalize(data))
	if err != nil {
		return nil, fmt.Errorf("encode data: %w", err)
	}

	var result bytes.Buffer
	if err := jsonlogic.Apply(bytes.NewReader(ruleJSON), bytes.NewReader(dataJSON), &result); err != nil {
		return nil, fmt.Errorf("apply rule: %w", err)
	}
	if result.Len() == 0 {
		return nil, nil
	}
	var out any
	if err := json.Unmarshal(result.Bytes(), &out); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return out, nil
}

func normalize(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		if m, ok := v.(map[string]any); ok {
			out[k] = normalize(m)
			continue
		}
		out[k] = toNumber(v)
	}
	return out
}
