package report

import (
	"github.com/KaramelBytes/retailboard/internal/analysis"
	"github.com/KaramelBytes/retailboard/internal/record"
	"github.com/shopspring/decimal"
)

// Params tunes the reports. The zero value is not useful; start from DefaultParams.
type Params struct {
	TopCustomers        int
	StateTopK           int
	PriceTierBuckets    int
	StockTierBuckets    int
	ProductPriceBuckets int
	MovingPreceding     int
	MovingFollowing     int
	ParetoThreshold     decimal.Decimal
	IQRMultiplier       decimal.Decimal
}

// DefaultParams reproduces the figures shown by the back-office screens.
func DefaultParams() Params {
	return Params{
		TopCustomers:        10,
		StateTopK:           3,
		PriceTierBuckets:    5,
		StockTierBuckets:    5,
		ProductPriceBuckets: 4,
		MovingPreceding:     1,
		MovingFollowing:     1,
		ParetoThreshold:     decimal.NewFromInt(analysis.DefaultParetoThreshold),
		IQRMultiplier:       analysis.DefaultIQRMultiplier,
	}
}

func positive(name string, v int) error {
	if v <= 0 {
		return &record.DomainError{Param: name, Value: v, Reason: "must be positive"}
	}
	return nil
}

func (p Params) validateThreshold() error {
	if p.ParetoThreshold.Sign() < 0 || p.ParetoThreshold.GreaterThan(decimal.NewFromInt(100)) {
		return &record.DomainError{Param: "pareto_threshold", Value: p.ParetoThreshold, Reason: "must be within 0..100"}
	}
	return nil
}

func (p Params) validateMultiplier() error {
	if p.IQRMultiplier.Sign() < 0 {
		return &record.DomainError{Param: "iqr_multiplier", Value: p.IQRMultiplier, Reason: "must not be negative"}
	}
	return nil
}
