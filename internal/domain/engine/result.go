package engine

import (
	"service-discounts/internal/domain"
)

// Scope is the order data an evaluator reads.
type Scope struct {
	Company domain.Company
	// Totals holds every classified group of the order.
	Totals domain.GroupTotals
	// Active is Totals restricted to the groups active for the evaluator's program.
	Active domain.GroupTotals
}

// Candidates is what one evaluator proposes. Group-level programs fill Groups, the
// per-product program fills Products.
type Candidates struct {
	Groups   domain.DiscountMap
	Products domain.ProductDiscountMap
	Steps    []domain.ExecutionStep
}

func newCandidates() Candidates {
	return Candidates{Groups: domain.DiscountMap{}, Products: domain.ProductDiscountMap{}}
}

func (c *Candidates) log(program domain.ProgramType, ruleID, action, message string) {
	c.Steps = append(c.Steps, domain.ExecutionStep{
		Phase:   string(program),
		RuleID:  ruleID,
		Action:  action,
		Message: message,
	})
}

// Outcome is the result of running every enabled program.
type Outcome struct {
	Discounts domain.DiscountMap
	// Products is nil when the per-product program is disabled.
	Products domain.ProductDiscountMap
	Log      []domain.ExecutionStep
}
