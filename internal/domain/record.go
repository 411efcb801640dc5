package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "service-discounts/internal/errors"
)

// ProgramRecord is one rule definition of a discount program. Field codes come from settings.
type ProgramRecord map[string]any

// Has reports whether field is present and holds a truthy value.
func (r ProgramRecord) Has(field string) bool {
	v, ok := r[field]
	return ok && Truthy(v)
}

// Text returns the field value as a string, or "" when absent.
func (r ProgramRecord) Text(field string) string {
	return Text(r[field])
}

// Decimal parses the field as a decimal number.
func (r ProgramRecord) Decimal(field string) (decimal.Decimal, error) {
	d, err := ToDecimal(r[field])
	if err != nil {
		return decimal.Zero, apperrors.Inconsistent("field %s: %v", field, err).WithContext("field", field)
	}
	return d, nil
}

// Percent parses the field as an integer percent in [0, 100].
func (r ProgramRecord) Percent(field string) (int, error) {
	d, err := r.Decimal(field)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() || d.LessThan(decimal.Zero) || d.GreaterThan(decimal.NewFromInt(100)) {
		return 0, apperrors.Inconsistent("field %s: %s is not a percent", field, d.String()).WithContext("field", field)
	}
	return int(d.IntPart()), nil
}

// Int parses the field as an integer id.
func (r ProgramRecord) Int(field string) (int64, error) {
	d, err := r.Decimal(field)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, apperrors.Inconsistent("field %s: %s is not an id", field, d.String()).WithContext("field", field)
	}
	return d.IntPart(), nil
}

// Group parses the field as a nomenclature group id.
func (r ProgramRecord) Group(field string) (GroupID, error) {
	id, err := r.Int(field)
	return GroupID(id), err
}

// Label identifies the record in logs: its title, else its id.
func (r ProgramRecord) Label() string {
	if t := r.Text("title"); t != "" {
		return t
	}
	return r.Text("id")
}

// Truthy follows the usual dynamic-language notion: nil, false, zero numbers and empty
// strings or collections are false. The string "0" is true.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case float64:
		return t != 0
	case float32:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case int32:
		return t != 0
	case uint64:
		return t != 0
	case decimal.Decimal:
		return !t.IsZero()
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	return true
}

// Text renders a scalar field value as a string. A single-entry or {"value": x} map is unwrapped.
func Text(v any) string {
	switch t := Unwrap(v).(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case decimal.Decimal:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// Unwrap reduces list-bound field values to their scalar. Catalog and reference-list
// properties arrive either as {"value": x} or as a map keyed by a property value id;
// the latter yields the entry with the smallest key.
func Unwrap(v any) any {
	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return v
	}
	if inner, ok := m["value"]; ok {
		return inner
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return m[keys[0]]
}

// ToDecimal converts a numeric field value to a decimal.
func ToDecimal(v any) (decimal.Decimal, error) {
	switch t := Unwrap(v).(type) {
	case nil:
		return decimal.Zero, fmt.Errorf("value is empty")
	case decimal.Decimal:
		return t, nil
	case string:
		return decimal.NewFromString(strings.TrimSpace(t))
	case json.Number:
		return decimal.NewFromString(t.String())
	case float64:
		return decimal.NewFromFloat(t), nil
	case float32:
		return decimal.NewFromFloat32(t), nil
	case int:
		return decimal.NewFromInt(int64(t)), nil
	case int64:
		return decimal.NewFromInt(t), nil
	case int32:
		return decimal.NewFromInt32(t), nil
	case uint64:
		return decimal.NewFromString(strconv.FormatUint(t, 10))
	}
	return decimal.Zero, fmt.Errorf("value %v is not numeric", v)
}
