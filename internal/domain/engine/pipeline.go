package engine

import (
	"fmt"

	"service-discounts/internal/domain"
)

// Phases logged outside the program evaluators.
const (
	PhaseAggregate = "aggregate"
	PhaseFilter    = "filter"
	PhaseMerge     = "merge"
	PhaseApply     = "apply"
	PhaseGuards    = "guards"
)

// Deps are the collaborators evaluators read from.
type Deps struct {
	Volumes VolumeReader
	Rows    ProductRows
}

// NewEvaluator builds the evaluator of a program type.
func NewEvaluator(program domain.ProgramType, s domain.Settings, deps Deps) (Evaluator, error) {
	switch program {
	case domain.ProgramPartner:
		return NewPartnerEvaluator(s.Partner), nil
	case domain.ProgramInvoice:
		return NewInvoiceEvaluator(s.Invoice), nil
	case domain.ProgramAccumulative:
		return NewAccumulativeEvaluator(s, deps.Volumes), nil
	case domain.ProgramProduct:
		return NewProductEvaluator(s.Product, deps.Rows), nil
	}
	return nil, fmt.Errorf("unknown program type %q", program)
}

// Enabled reports whether settings switch program on.
func Enabled(program domain.ProgramType, s domain.Settings) bool {
	switch program {
	case domain.ProgramPartner:
		return s.Partner.Enabled
	case domain.ProgramInvoice:
		return s.Invoice.Enabled
	case domain.ProgramAccumulative:
		return s.Accumulative.Enabled
	case domain.ProgramProduct:
		return s.Product.Enabled
	}
	return false
}

// BuildEvaluators returns the evaluators of every enabled program, in evaluation order.
func BuildEvaluators(s domain.Settings, deps Deps) ([]Evaluator, error) {
	var out []Evaluator
	for _, program := range domain.Programs {
		if !Enabled(program, s) {
			continue
		}
		ev, err := NewEvaluator(program, s, deps)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}
