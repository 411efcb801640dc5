package engine

import (
	"context"
	"fmt"

	"service-discounts/internal/domain"
)

// PartnerEvaluator grants the discount of every record matching the buyer's company type
// to the record's nomenclature group, when that group is part of the order.
type PartnerEvaluator struct {
	cfg domain.PartnerSettings
}

func NewPartnerEvaluator(cfg domain.PartnerSettings) *PartnerEvaluator {
	return &PartnerEvaluator{cfg: cfg}
}

func (p *PartnerEvaluator) Program() domain.ProgramType { return domain.ProgramPartner }
func (p *PartnerEvaluator) ProgramID() int64            { return p.cfg.ProgramID }
func (p *PartnerEvaluator) evaluator()                  {}

func (p *PartnerEvaluator) RequiredFields() []string {
	return []string{p.cfg.DiscountField, p.cfg.CompanyTypeField, p.cfg.GroupField}
}

func (p *PartnerEvaluator) Evaluate(ctx context.Context, scope Scope, records []domain.ProgramRecord) (Candidates, error) {
	out := newCandidates()
	for _, rec := range p.matchingCompanyType(records, scope.Company.Type) {
		group, err := rec.Group(p.cfg.GroupField)
		if err != nil {
			return out, err
		}
		if !scope.Totals.Has(group) {
			out.log(domain.ProgramPartner, rec.Label(), "skip",
				fmt.Sprintf("group %d is not in the order", group))
			continue
		}
		percent, err := rec.Percent(p.cfg.DiscountField)
		if err != nil {
			return out, err
		}
		out.Groups[group] = percent
		out.log(domain.ProgramPartner, rec.Label(), "discount",
			fmt.Sprintf("group %d: %d%%", group, percent))
	}
	return out, nil
}

func (p *PartnerEvaluator) matchingCompanyType(records []domain.ProgramRecord, companyType string) []domain.ProgramRecord {
	var matched []domain.ProgramRecord
	for _, rec := range records {
		if rec.Text(p.cfg.CompanyTypeField) == companyType {
			matched = append(matched, rec)
		}
	}
	return matched
}
