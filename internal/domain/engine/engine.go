package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"service-discounts/internal/domain"
	apperrors "service-discounts/internal/errors"
	"service-discounts/internal/logging"
)

// Engine runs the enabled discount programs in order and folds their candidates into one map.
// An Engine holds no per-run state; each Run starts from an empty discount map.
type Engine struct {
	Settings   domain.Settings
	Evaluators []Evaluator
	Programs   ProgramRecords
	Lists      ReferenceLists
}

// Run evaluates every program against the order's group totals. The first fatal error aborts the run.
func (e *Engine) Run(ctx context.Context, company domain.Company, totals domain.GroupTotals) (Outcome, error) {
	out := Outcome{Discounts: domain.DiscountMap{}}

	for _, ev := range e.Evaluators {
		program := ev.Program()
		raw, err := e.Programs.FetchProgramRecords(ctx, ev.ProgramID())
		if err != nil {
			return out, apperrors.Lookup(fmt.Sprintf("%s program records", program), err).
				WithContext("program", string(program)).WithContext("program_id", ev.ProgramID())
		}

		records := FilterValid(raw, ev.RequiredFields())
		if dropped := len(raw) - len(records); dropped > 0 {
			logging.Info("program records dropped",
				zap.String("program", string(program)), zap.Int("dropped", dropped), zap.Int("kept", len(records)))
			out.Log = append(out.Log, domain.ExecutionStep{
				Phase:   PhaseFilter,
				RuleID:  string(program),
				Action:  "drop",
				Message: fmt.Sprintf("%d of %d records miss a required field", dropped, len(raw)),
			})
		}

		scope := Scope{Company: company, Totals: totals, Active: totals}
		if scoped, ok := ev.(ActivityScoped); ok {
			scope.Active = ResolveActive(ctx, e.Lists, totals, e.Settings.ReferenceListID, scoped.Activity())
		}

		cand, err := ev.Evaluate(ctx, scope, records)
		if err != nil {
			return out, fmt.Errorf("%s program: %w", program, err)
		}
		out.Log = append(out.Log, cand.Steps...)

		if program == domain.ProgramProduct {
			out.Products = cand.Products
			logging.Debug("product discounts", zap.Any("products", cand.Products))
			continue
		}
		out.Discounts = Merge(out.Discounts, cand.Groups)
		logging.Debug("discounts after program",
			zap.String("program", string(program)), zap.Any("discounts", out.Discounts))
		out.Log = append(out.Log, domain.ExecutionStep{
			Phase:   PhaseMerge,
			RuleID:  string(program),
			Action:  "merge",
			Message: fmt.Sprintf("%d candidates, %d groups discounted", len(cand.Groups), len(out.Discounts)),
		})
	}
	return out, nil
}
