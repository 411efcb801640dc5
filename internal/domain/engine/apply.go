package engine

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"service-discounts/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// DiscountedPrice is round(price * (100 - percent) / 100, 2).
func DiscountedPrice(price decimal.Decimal, percent int) decimal.Decimal {
	return price.Mul(hundred.Sub(decimal.NewFromInt(int64(percent)))).Div(hundred).RoundBank(domain.MoneyPlaces)
}

// ApplyPrices writes the discount rate and price of every line in place. Group discounts are applied
// first; products is nil when the per-product program is off, otherwise its entries override the group
// rate according to policy.
func ApplyPrices(lines []domain.LineItem, discounts domain.DiscountMap, products domain.ProductDiscountMap, policy domain.OverridePolicy) []domain.ExecutionStep {
	var steps []domain.ExecutionStep
	for i := range lines {
		line := &lines[i]
		line.DiscountRate = 0
		line.Price = line.UnitPrice.RoundBank(domain.MoneyPlaces)
		if percent, ok := discounts[line.GroupID]; ok && line.Classified() {
			setRate(line, percent)
			steps = append(steps, priceStep("group", line))
		}
		if products == nil {
			continue
		}
		percent, ok := products[line.ProductID]
		if !ok {
			continue
		}
		if policy != domain.OverrideAlways && line.DiscountRate >= percent {
			continue
		}
		setRate(line, percent)
		steps = append(steps, priceStep("product", line))
	}
	return steps
}

func setRate(line *domain.LineItem, percent int) {
	line.DiscountRate = percent
	line.Price = DiscountedPrice(line.UnitPrice, percent)
}

func priceStep(action string, line *domain.LineItem) domain.ExecutionStep {
	return domain.ExecutionStep{
		Phase:   PhaseApply,
		RuleID:  strconv.FormatInt(int64(line.ProductID), 10),
		Action:  action,
		Message: fmt.Sprintf("%d%% -> %s", line.DiscountRate, line.Price.StringFixed(domain.MoneyPlaces)),
	}
}
