package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"service-discounts/internal/domain"
	apperrors "service-discounts/internal/errors"
	"service-discounts/internal/logging"
)

// ProductEvaluator turns the buyer's special offers into per-product discounts.
type ProductEvaluator struct {
	cfg  domain.ProductSettings
	rows ProductRows
}

func NewProductEvaluator(cfg domain.ProductSettings, rows ProductRows) *ProductEvaluator {
	return &ProductEvaluator{cfg: cfg, rows: rows}
}

func (p *ProductEvaluator) Program() domain.ProgramType { return domain.ProgramProduct }
func (p *ProductEvaluator) ProgramID() int64            { return p.cfg.ProgramID }
func (p *ProductEvaluator) RequiredFields() []string    { return []string{p.cfg.DiscountField} }
func (p *ProductEvaluator) evaluator()                  {}

func (p *ProductEvaluator) Evaluate(ctx context.Context, scope Scope, records []domain.ProgramRecord) (Candidates, error) {
	out := newCandidates()
	for _, rec := range records {
		companyID, err := rec.Int(p.cfg.CompanyField)
		if err != nil || companyID != scope.Company.ID {
			out.log(domain.ProgramProduct, rec.Label(), "skip",
				fmt.Sprintf("offer is for company %q, order company is %d", rec.Text(p.cfg.CompanyField), scope.Company.ID))
			continue
		}
		percent, err := rec.Percent(p.cfg.DiscountField)
		if err != nil {
			return out, err
		}
		recordID, err := rec.Int(p.cfg.IDField)
		if err != nil {
			return out, err
		}
		rows, err := p.rows.FetchProductRows(ctx, recordID)
		if err != nil {
			return out, apperrors.Lookup("product rows", err).WithContext("record_id", recordID)
		}
		for _, row := range rows {
			out.Products[row.ProductID] = percent
		}
		logging.Debug("special offer expanded",
			zap.Int64("record_id", recordID), zap.Int("products", len(rows)), zap.Int("percent", percent))
		out.log(domain.ProgramProduct, rec.Label(), "discount",
			fmt.Sprintf("%d products: %d%%", len(rows), percent))
	}
	return out, nil
}
