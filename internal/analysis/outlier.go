package analysis

import (
	"sort"

	"github.com/shopspring/decimal"
)

// DefaultIQRMultiplier is Tukey's fence factor.
var DefaultIQRMultiplier = decimal.NewFromFloat(1.5)

// Class is an outlier classification relative to IQR fences.
type Class int

const (
	Normal Class = iota
	Below
	Above
)

func (c Class) String() string {
	switch c {
	case Below:
		return "below"
	case Above:
		return "above"
	default:
		return "normal"
	}
}

// IQRFences captures the quartiles and fences of one partition.
type IQRFences struct {
	Q1, Q3, IQR  decimal.Decimal
	Lower, Upper decimal.Decimal
}

// Classify places v relative to the fences; values on a fence are normal.
func (f IQRFences) Classify(v decimal.Decimal) Class {
	switch {
	case v.LessThan(f.Lower):
		return Below
	case v.GreaterThan(f.Upper):
		return Above
	}
	return Normal
}

// Fences computes Q1 and Q3 by linear-interpolation percentile and the fences
// Q1-k*IQR and Q3+k*IQR. An empty partition yields zero fences.
func Fences(values []decimal.Decimal, k decimal.Decimal) IQRFences {
	if len(values) == 0 {
		return IQRFences{}
	}
	cp := make([]decimal.Decimal, len(values))
	copy(cp, values)
	sort.Slice(cp, func(i, j int) bool { return cp[i].LessThan(cp[j]) })
	q1 := quantile(cp, decimal.NewFromFloat(0.25))
	q3 := quantile(cp, decimal.NewFromFloat(0.75))
	iqr := q3.Sub(q1)
	spread := iqr.Mul(k)
	return IQRFences{Q1: q1, Q3: q3, IQR: iqr, Lower: q1.Sub(spread), Upper: q3.Add(spread)}
}

// ClassifyAll computes fences over values and classifies each of them.
func ClassifyAll(values []decimal.Decimal, k decimal.Decimal) (IQRFences, []Class) {
	f := Fences(values, k)
	out := make([]Class, len(values))
	for i, v := range values {
		out[i] = f.Classify(v)
	}
	return f, out
}

// quantile interpolates linearly between the closest ranks of sorted.
func quantile(sorted []decimal.Decimal, q decimal.Decimal) decimal.Decimal {
	if len(sorted) == 0 {
		return decimal.Zero
	}
	if q.Sign() <= 0 {
		return sorted[0]
	}
	if q.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return sorted[len(sorted)-1]
	}
	pos := q.Mul(decimal.NewFromInt(int64(len(sorted) - 1)))
	lo := int(pos.Floor().IntPart())
	hi := int(pos.Ceil().IntPart())
	if lo == hi {
		return sorted[lo]
	}
	w := pos.Sub(decimal.NewFromInt(int64(lo)))
	return sorted[lo].Add(sorted[hi].Sub(sorted[lo]).Mul(w))
}
