package engine

import (
	"context"

	"go.uber.org/zap"

	"service-discounts/internal/domain"
	"service-discounts/internal/logging"
)

// ResolveActive keeps the groups whose reference-list element flags them active for a program.
// A failed lookup for one group only drops that group.
func ResolveActive(ctx context.Context, lists ReferenceLists, totals domain.GroupTotals, listID int64, activity domain.ActivitySettings) domain.GroupTotals {
	active := domain.GroupTotals{}
	for _, id := range totals.IDs() {
		elem, found, err := lists.FetchReferenceListElement(ctx, listID, int64(id))
		if err != nil {
			logging.Warn("reference list lookup failed, group skipped",
				zap.Int64("list_id", listID), zap.Int64("group_id", int64(id)), zap.Error(err))
			continue
		}
		if !found {
			continue
		}
		value, ok := elem[activity.Field]
		if !ok {
			continue
		}
		if domain.Text(value) == activity.ActiveYes {
			active[id] = totals[id]
		}
	}
	return active
}
