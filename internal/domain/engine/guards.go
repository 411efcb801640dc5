package engine

import (
	"context"
	"fmt"

	"service-discounts/internal/domain"
)

// CheckGuards runs every guard over every priced line and returns the violations.
// A guard that cannot be evaluated is an error.
func CheckGuards(ctx context.Context, exec GuardExecutor, guards []domain.GuardConfig, lines []domain.LineItem, company domain.Company) ([]domain.GuardViolation, error) {
	if len(guards) == 0 {
		return nil, nil
	}
	companyData := map[string]any{"id": company.ID, "type": company.Type, "inn": company.INN}
	var hits []domain.GuardViolation
	for _, line := range lines {
		data := map[string]any{"line": lineData(line), "company": companyData}
		for _, g := range guards {
			hit, err := exec.Check(ctx, g, data)
			if err != nil {
				return nil, fmt.Errorf("guard %s: %w", g.ID, err)
			}
			if !hit {
				continue
			}
			msg := g.ErrorMessage
			if msg == "" {
				msg = "guard condition met"
			}
			hits = append(hits, domain.GuardViolation{
				RuleID:  g.ID,
				Reason:  fmt.Sprintf("product %d", line.ProductID),
				Context: msg,
			})
		}
	}
	return hits, nil
}

func lineData(line domain.LineItem) map[string]any {
	return map[string]any{
		"product_id":            int64(line.ProductID),
		"nomenclature_group_id": int64(line.GroupID),
		"unit_price":            line.UnitPrice.InexactFloat64(),
		"quantity":              line.Quantity.InexactFloat64(),
		"discount_rate":         line.DiscountRate,
		"price":                 line.Price.InexactFloat64(),
	}
}
