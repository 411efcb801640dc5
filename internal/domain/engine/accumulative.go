package engine

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"service-discounts/internal/domain"
	apperrors "service-discounts/internal/errors"
)

// Tier is one band of the accumulative program. An unbounded tier has no upper limit.
type Tier struct {
	Lower     decimal.Decimal
	Upper     decimal.Decimal
	Unbounded bool
	Percent   int
}

// Contains reports whether volume lies in [Lower, Upper), or in [Lower, ∞) when unbounded.
func (t Tier) Contains(volume decimal.Decimal) bool {
	if volume.LessThan(t.Lower) {
		return false
	}
	return t.Unbounded || volume.LessThan(t.Upper)
}

// AccumulativeEvaluator discounts active groups by the company's historical volume.
type AccumulativeEvaluator struct {
	settings domain.Settings
	volumes  VolumeReader
}

func NewAccumulativeEvaluator(settings domain.Settings, volumes VolumeReader) *AccumulativeEvaluator {
	return &AccumulativeEvaluator{settings: settings, volumes: volumes}
}

func (a *AccumulativeEvaluator) Program() domain.ProgramType { return domain.ProgramAccumulative }
func (a *AccumulativeEvaluator) ProgramID() int64            { return a.settings.Accumulative.ProgramID }
func (a *AccumulativeEvaluator) evaluator()                  {}

func (a *AccumulativeEvaluator) Activity() domain.ActivitySettings {
	return a.settings.Accumulative.Activity
}

func (a *AccumulativeEvaluator) RequiredFields() []string {
	c := a.settings.Accumulative
	return []string{
		c.FirstLimitField, c.FirstDiscountField,
		c.SecondLimitField, c.SecondDiscountField,
		c.ThirdLimitField, c.ThirdDiscountField,
		c.GroupField,
	}
}

func (a *AccumulativeEvaluator) Evaluate(ctx context.Context, scope Scope, records []domain.ProgramRecord) (Candidates, error) {
	out := newCandidates()
	for _, rec := range records {
		group, err := rec.Group(a.settings.Accumulative.GroupField)
		if err != nil {
			return out, err
		}
		if !scope.Active.Has(group) {
			out.log(domain.ProgramAccumulative, rec.Label(), "skip",
				fmt.Sprintf("group %d is not active in the order", group))
			continue
		}
		key := a.settings.VolumeKeyFor(scope.Company.ID, group)
		volume, found, err := a.volumes.ReadVolume(ctx, key)
		if err != nil {
			return out, apperrors.Lookup("accumulated volume", err).
				WithContext("company_id", key.CompanyID).WithContext("group_id", int64(key.GroupID))
		}
		if !found {
			out.log(domain.ProgramAccumulative, rec.Label(), "skip",
				fmt.Sprintf("no accumulated volume for company %d group %d", key.CompanyID, group))
			continue
		}
		tiers, err := a.Tiers(rec)
		if err != nil {
			return out, err
		}
		if percent, ok := SelectTier(tiers, volume); ok {
			out.Groups[group] = percent
			out.log(domain.ProgramAccumulative, rec.Label(), "discount",
				fmt.Sprintf("volume %s: group %d %d%%", volume.StringFixed(domain.MoneyPlaces), group, percent))
		}
	}
	return out, nil
}

// Tiers reads the three bands of a record: [l1, l2), [l2, l3), [l3, ∞).
func (a *AccumulativeEvaluator) Tiers(rec domain.ProgramRecord) ([3]Tier, error) {
	var tiers [3]Tier
	c := a.settings.Accumulative
	limitFields := [3]string{c.FirstLimitField, c.SecondLimitField, c.ThirdLimitField}
	discountFields := [3]string{c.FirstDiscountField, c.SecondDiscountField, c.ThirdDiscountField}

	var limits [3]decimal.Decimal
	for i, f := range limitFields {
		d, err := rec.Decimal(f)
		if err != nil {
			return tiers, err
		}
		limits[i] = d
	}
	for i, f := range discountFields {
		percent, err := rec.Percent(f)
		if err != nil {
			return tiers, err
		}
		tiers[i] = Tier{Lower: limits[i], Percent: percent}
		if i+1 < len(limits) {
			tiers[i].Upper = limits[i+1]
		} else {
			tiers[i].Unbounded = true
		}
	}
	return tiers, nil
}

// SelectTier checks every tier in ascending order; a later matching tier overwrites an earlier one.
func SelectTier(tiers [3]Tier, volume decimal.Decimal) (int, bool) {
	percent, matched := 0, false
	for _, t := range tiers {
		if t.Contains(volume) {
			percent, matched = t.Percent, true
		}
	}
	return percent, matched
}
