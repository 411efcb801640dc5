package engine

import (
	"service-discounts/internal/domain"
)

// Merge folds candidates into running and returns the new map. Each group keeps the larger of
// its running and candidate percent, so no entry ever decreases. running is not modified.
func Merge(running, candidates domain.DiscountMap) domain.DiscountMap {
	merged := running.Clone()
	for group, percent := range candidates {
		if prev, ok := merged[group]; ok && prev >= percent {
			continue
		}
		merged[group] = percent
	}
	return merged
}
