package analysis

import (
	"github.com/KaramelBytes/retailboard/internal/record"
	"github.com/shopspring/decimal"
)

// AggFunc reduces a non-empty window of values.
type AggFunc func(window []decimal.Decimal) decimal.Decimal

// Sum adds the window.
func Sum(w []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range w {
		total = total.Add(v)
	}
	return total
}

// Mean averages the window; an empty window averages to zero.
func Mean(w []decimal.Decimal) decimal.Decimal {
	if len(w) == 0 {
		return decimal.Zero
	}
	return Sum(w).Div(decimal.NewFromInt(int64(len(w))))
}

func Min(w []decimal.Decimal) decimal.Decimal {
	if len(w) == 0 {
		return decimal.Zero
	}
	m := w[0]
	for _, v := range w[1:] {
		if v.LessThan(m) {
			m = v
		}
	}
	return m
}

func Max(w []decimal.Decimal) decimal.Decimal {
	if len(w) == 0 {
		return decimal.Zero
	}
	m := w[0]
	for _, v := range w[1:] {
		if v.GreaterThan(m) {
			m = v
		}
	}
	return m
}

// Round2 rounds to 2 places, halves away from zero (MySQL ROUND on exact values).
func Round2(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

// Moving applies fn to the window [i-preceding, i+following] around each index,
// clipped to the sequence bounds. Boundary windows shrink; they are never padded.
func Moving(values []decimal.Decimal, preceding, following int, fn AggFunc) ([]decimal.Decimal, error) {
	if preceding < 0 {
		return nil, &record.DomainError{Param: "preceding", Value: preceding, Reason: "must not be negative"}
	}
	if following < 0 {
		return nil, &record.DomainError{Param: "following", Value: following, Reason: "must not be negative"}
	}
	out := make([]decimal.Decimal, len(values))
	for i := range values {
		lo := max(i-preceding, 0)
		hi := min(i+following, len(values)-1)
		out[i] = fn(values[lo : hi+1])
	}
	return out, nil
}

// Lag returns, for each index, the value offset positions back, or def when that
// position falls before the start.
func Lag(values []decimal.Decimal, offset int, def decimal.Decimal) ([]decimal.Decimal, error) {
	if offset < 0 {
		return nil, &record.DomainError{Param: "offset", Value: offset, Reason: "must not be negative"}
	}
	out := make([]decimal.Decimal, len(values))
	for i := range values {
		if j := i - offset; j >= 0 {
			out[i] = values[j]
		} else {
			out[i] = def
		}
	}
	return out, nil
}

// Delta returns current - lag(current) per index.
func Delta(values []decimal.Decimal, offset int, def decimal.Decimal) ([]decimal.Decimal, error) {
	lag, err := Lag(values, offset, def)
	if err != nil {
		return nil, err
	}
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = v.Sub(lag[i])
	}
	return out, nil
}
