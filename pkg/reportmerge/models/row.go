package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Row is an ordered mapping from canonical field to a scalar value.
// Values are string, decimal.Decimal, or time.Time. A Row is immutable
// once built; iteration follows Schema order.
type Row struct {
	values map[Field]any
}

// NewRow builds a Row from the given field values. Fields outside the
// canonical schema are ignored.
func NewRow(values map[Field]any) Row {
	m := make(map[Field]any, len(values))
	for f, v := range values {
		if f.Valid() && v != nil {
			m[f] = v
		}
	}
	return Row{values: m}
}

// Get returns the value for f and whether it is set.
func (r Row) Get(f Field) (any, bool) {
	v, ok := r.values[f]
	return v, ok
}

// Text returns the value for f as a string, or "" when unset or non-text.
func (r Row) Text(f Field) string {
	if s, ok := r.values[f].(string); ok {
		return s
	}
	return ""
}

// Amount returns the value for f as a decimal and whether it is one.
func (r Row) Amount(f Field) (decimal.Decimal, bool) {
	d, ok := r.values[f].(decimal.Decimal)
	return d, ok
}

// Time returns the value for f as a time and whether it is one.
func (r Row) Time(f Field) (time.Time, bool) {
	t, ok := r.values[f].(time.Time)
	return t, ok
}

// Len returns the number of set fields.
func (r Row) Len() int {
	return len(r.values)
}
