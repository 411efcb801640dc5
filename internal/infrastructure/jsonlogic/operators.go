package jsonlogic

import (
	"encoding/json"
	"sync"

	"github.com/diegoholiveira/jsonlogic/v3"
	"github.com/shopspring/decimal"

	"service-discounts/internal/domain"
)

var registerOnce sync.Once

// registerOperators adds the custom operators guards may use. jsonlogic keeps operators
// in a package-level table, so they are registered once per process.
func registerOperators() {
	registerOnce.Do(func() {
		jsonlogic.AddOperator("round", func(values, data any) any {
			return Round(values)
		})
	})
}

// Round rounds its first argument half-even to the places given by the second (default 2).
func Round(values any) any {
	args, ok := values.([]any)
	if !ok {
		args = []any{values}
	}
	if len(args) == 0 {
		return 0.0
	}
	d, err := domain.ToDecimal(args[0])
	if err != nil {
		return nil
	}
	places := int32(domain.MoneyPlaces)
	if len(args) > 1 {
		if p, err := domain.ToDecimal(args[1]); err == nil {
			places = int32(p.IntPart())
		}
	}
	return d.RoundBank(places).InexactFloat64()
}

// toNumber turns a decimal into the float jsonlogic compares with.
func toNumber(v any) any {
	switch t := v.(type) {
	case decimal.Decimal:
		return t.InexactFloat64()
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return t.String()
		}
		return f
	}
	return v
}
