package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"service-discounts/internal/domain"
)

// Threshold is one step of the invoice program: spending at least Limit earns Percent.
type Threshold struct {
	Limit   decimal.Decimal
	Percent int
}

// InvoiceEvaluator applies one percent, chosen from the order's total over active groups,
// to every active group.
type InvoiceEvaluator struct {
	cfg domain.InvoiceSettings
}

func NewInvoiceEvaluator(cfg domain.InvoiceSettings) *InvoiceEvaluator {
	return &InvoiceEvaluator{cfg: cfg}
}

func (v *InvoiceEvaluator) Program() domain.ProgramType       { return domain.ProgramInvoice }
func (v *InvoiceEvaluator) ProgramID() int64                  { return v.cfg.ProgramID }
func (v *InvoiceEvaluator) RequiredFields() []string          { return []string{v.cfg.DiscountField} }
func (v *InvoiceEvaluator) Activity() domain.ActivitySettings { return v.cfg.Activity }
func (v *InvoiceEvaluator) evaluator()                        {}

func (v *InvoiceEvaluator) Evaluate(ctx context.Context, scope Scope, records []domain.ProgramRecord) (Candidates, error) {
	out := newCandidates()
	if len(scope.Active) == 0 {
		return out, nil
	}
	thresholds, err := v.thresholds(records)
	if err != nil {
		return out, err
	}
	total := scope.Active.Sum()
	percent := SelectThreshold(thresholds, total)
	for _, group := range scope.Active.IDs() {
		out.Groups[group] = percent
	}
	out.log(domain.ProgramInvoice, "", "discount",
		fmt.Sprintf("total %s: %d%% on %d groups", total.StringFixed(domain.MoneyPlaces), percent, len(scope.Active)))
	return out, nil
}

// thresholds builds the ascending threshold list, seeded with a zero floor.
func (v *InvoiceEvaluator) thresholds(records []domain.ProgramRecord) ([]Threshold, error) {
	list := []Threshold{{Limit: decimal.Zero, Percent: 0}}
	for _, rec := range records {
		limit, err := rec.Decimal(v.cfg.ThresholdField)
		if err != nil {
			return nil, err
		}
		percent, err := rec.Percent(v.cfg.DiscountField)
		if err != nil {
			return nil, err
		}
		list = append(list, Threshold{Limit: limit.RoundBank(domain.MoneyPlaces), Percent: percent})
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Limit.LessThan(list[j].Limit) })
	return list, nil
}

// SelectThreshold returns the percent of the step whose [limit, next limit) range holds total.
// The last step wins once total reaches it.
func SelectThreshold(thresholds []Threshold, total decimal.Decimal) int {
	for i, t := range thresholds {
		if i+1 == len(thresholds) {
			return t.Percent
		}
		if t.Limit.LessThanOrEqual(total) && total.LessThan(thresholds[i+1].Limit) {
			return t.Percent
		}
	}
	return 0
}
