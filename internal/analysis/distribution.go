package analysis

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultParetoThreshold is the cumulative percentage that still counts as the top tier.
const DefaultParetoThreshold = 80

var hundred = decimal.NewFromInt(100)

// Share is one row's position in a cumulative distribution.
type Share struct {
	Cumulative decimal.Decimal
	Percent    decimal.Decimal
	Class      string
}

// ParetoLabels returns the top and bottom class labels for threshold, e.g.
// "Top 80%" and "Bottom 20%".
func ParetoLabels(threshold decimal.Decimal) (top, bottom string) {
	return fmt.Sprintf("Top %s%%", threshold.String()), fmt.Sprintf("Bottom %s%%", hundred.Sub(threshold).String())
}

// Cumulative walks values, already ordered descending, and reports the running sum,
// its rounded percentage of the whole and its Pareto class. A row whose percentage
// equals the threshold stays in the top class. When the total is zero every
// percentage is 0 and every row is in the bottom class.
func Cumulative(values []decimal.Decimal, threshold decimal.Decimal) []Share {
	top, bottom := ParetoLabels(threshold)
	total := Sum(values)
	out := make([]Share, len(values))
	running := decimal.Zero
	for i, v := range values {
		running = running.Add(v)
		s := Share{Cumulative: running, Percent: decimal.Zero, Class: bottom}
		if !total.IsZero() {
			s.Percent = Round2(running.Mul(hundred).Div(total))
			if s.Percent.LessThanOrEqual(threshold) {
				s.Class = top
			}
		}
		out[i] = s
	}
	return out
}

// Percentages returns round(v*100/total, 2) for each value; a zero total yields zeros.
func Percentages(values []decimal.Decimal) (total decimal.Decimal, pct []decimal.Decimal) {
	total = Sum(values)
	pct = make([]decimal.Decimal, len(values))
	for i, v := range values {
		if total.IsZero() {
			pct[i] = decimal.Zero
			continue
		}
		pct[i] = Round2(v.Mul(hundred).Div(total))
	}
	return total, pct
}
