package usecase

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"service-discounts/internal/domain"
	apperrors "service-discounts/internal/errors"
	"service-discounts/internal/interfaces"
	"service-discounts/internal/logging"
)

// lineFailure is the product whose lookup aborted line classification.
type lineFailure struct {
	status    Status
	productID domain.ProductID
}

// fetchLines returns the order lines with their nomenclature group resolved from the catalog.
func fetchLines(ctx context.Context, orders interfaces.OrderSource, catalog interfaces.CatalogSource, groupField string, orderID int64) ([]domain.LineItem, *lineFailure, error) {
	lines, err := orders.FetchOrderLines(ctx, orderID)
	if err != nil {
		if apperrors.IsType(err, apperrors.TypeNotFound) {
			return nil, &lineFailure{status: StatusNoProducts}, err
		}
		return nil, &lineFailure{status: StatusNoProducts}, apperrors.Lookup("order products", err).WithContext("order_id", orderID)
	}
	if len(lines) == 0 {
		return nil, &lineFailure{status: StatusNoProducts}, apperrors.NotFound("order products", strconv.FormatInt(orderID, 10))
	}

	for i := range lines {
		line := &lines[i]
		props, err := catalog.FetchCatalogProperties(ctx, line.ProductID)
		if err != nil {
			fail := &lineFailure{status: StatusNoProductProps, productID: line.ProductID}
			if apperrors.IsType(err, apperrors.TypeNotFound) {
				return nil, fail, apperrors.Wrapf(apperrors.TypeDataInconsistency, err,
					"product %d of line %d is not in the catalog", line.ProductID, line.ID)
			}
			return nil, fail, apperrors.Lookup(fmt.Sprintf("properties of product %d", line.ProductID), err)
		}
		group, err := groupOf(props, groupField)
		if err != nil {
			return nil, &lineFailure{status: StatusNoProductProps, productID: line.ProductID},
				fmt.Errorf("product %d: %w", line.ProductID, err)
		}
		line.GroupID = group
		if !line.Classified() {
			logging.Info("line skipped, product has no nomenclature group",
				zap.Int64("line_id", line.ID), zap.Int64("product_id", int64(line.ProductID)))
		}
	}
	return lines, nil, nil
}

// groupOf reads the nomenclature group of a product. An empty value means unclassified.
func groupOf(props domain.Properties, field string) (domain.GroupID, error) {
	raw := domain.Unwrap(props[field])
	if !domain.Truthy(raw) {
		return domain.Unclassified, nil
	}
	d, err := domain.ToDecimal(raw)
	if err != nil || !d.IsInteger() {
		return domain.Unclassified, apperrors.Inconsistent("nomenclature group %v is not an id", raw).WithContext("field", field)
	}
	return domain.GroupID(d.IntPart()), nil
}

func copyLines(lines []domain.LineItem) []domain.LineItem {
	out := make([]domain.LineItem, len(lines))
	copy(out, lines)
	return out
}
