package engine

import (
	"service-discounts/internal/domain"
)

// Aggregate sums the amount of every classified line per nomenclature group.
// Unclassified lines are left out of the totals.
func Aggregate(items []domain.LineItem) domain.GroupTotals {
	totals := domain.GroupTotals{}
	for _, item := range items {
		if !item.Classified() {
			continue
		}
		if sum, ok := totals[item.GroupID]; ok {
			totals[item.GroupID] = sum.Add(item.Amount())
		} else {
			totals[item.GroupID] = item.Amount()
		}
	}
	return totals
}
