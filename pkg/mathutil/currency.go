// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/mortgage-calc/pkg/constants"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Used for making logical comparisons.
func Round(val float64) float64 {
	return math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
}

// IsZero checks if a value is effectively zero (within a cent)
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.CurrencyTolerance
}

// IsFinite reports whether a value is neither NaN nor infinite.
func IsFinite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}

// AnnualRate converts an annual percentage rate to a decimal fraction.
func AnnualRate(annualRatePercent float64) float64 {
	return annualRatePercent / constants.PercentageMultiplier
}

// MonthlyRate converts an annual percentage rate to a monthly decimal rate.
// Every rate conversion in the engine goes through here.
func MonthlyRate(annualRatePercent float64) float64 {
	return AnnualRate(annualRatePercent) / constants.MonthsPerYear
}

// Mean returns the arithmetic mean of values, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
