package engine

import (
	"service-discounts/internal/domain"
)

// FilterValid returns the records holding a truthy value for every required field, in their
// original order. The input slice is not modified.
func FilterValid(records []domain.ProgramRecord, required []string) []domain.ProgramRecord {
	valid := make([]domain.ProgramRecord, 0, len(records))
	for _, rec := range records {
		if hasAll(rec, required) {
			valid = append(valid, rec)
		}
	}
	return valid
}

func hasAll(rec domain.ProgramRecord, fields []string) bool {
	for _, f := range fields {
		if !rec.Has(f) {
			return false
		}
	}
	return true
}
