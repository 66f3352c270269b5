package record

import "sort"

// NullPolicy places Null values within an ordering.
type NullPolicy int

const (
	// NullsDefault sorts Null as the smallest value: first ascending, last descending.
	NullsDefault NullPolicy = iota
	NullsFirst
	NullsLast
)

// OrderKey is one (field, direction, null-policy) triple.
type OrderKey struct {
	Field string
	Desc  bool
	Nulls NullPolicy
}

// OrderSpec defines a total order within a partition. Rows comparing equal under
// every key are ties.
type OrderSpec []OrderKey

func Asc(field string) OrderKey { return OrderKey{Field: field} }
func Desc(field string) OrderKey { return OrderKey{Field: field, Desc: true} }

// Compare returns -1, 0 or 1 ordering a before, tied with, or after b.
func (o OrderSpec) Compare(a, b Row) int {
	for _, k := range o {
		va, vb := a.Value(k.Field), b.Value(k.Field)
		if c := k.compare(va, vb); c != 0 {
			return c
		}
	}
	return 0
}

func (k OrderKey) compare(a, b Value) int {
	an, bn := a.IsNull(), b.IsNull()
	if an || bn {
		if an && bn {
			return 0
		}
		nullFirst := !k.Desc
		switch k.Nulls {
		case NullsFirst:
			nullFirst = true
		case NullsLast:
			nullFirst = false
		}
		if an == nullFirst {
			return -1
		}
		return 1
	}
	c := Compare(a, b)
	if k.Desc {
		return -c
	}
	return c
}

// Sort returns the rows stably sorted by o; ties keep input order. The
// input slice is left untouched.
func (o OrderSpec) Sort(rows []Row) []Row {
	out := make([]Row, len(rows))
	copy(out, rows)
	if len(o) == 0 {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool { return o.Compare(out[i], out[j]) < 0 })
	return out
}

// Validate reports order keys naming fields the schema lacks.
func (o OrderSpec) Validate(s *Schema) error {
	for _, k := range o {
		if !s.Has(k.Field) {
			return &SchemaError{Field: k.Field, Row: -1}
		}
	}
	return nil
}
