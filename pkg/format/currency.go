// Package format renders and parses currency and percentage values.
package format

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/mortgage-calc/pkg/constants"
	"github.com/shopspring/decimal"
)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	formatted := formatPositiveCurrency(math.Abs(amount))
	if amount < 0 && formatted != "0.00" {
		return "-$" + formatted
	}
	return "$" + formatted
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount float64) string {
	formatted := formatPositiveCurrency(math.Abs(amount))
	if amount < 0 && formatted != "0.00" {
		return "-" + formatted
	}
	return formatted
}

// Fixed renders an amount with exactly two decimals and no separators, the
// form used for machine-readable exports.
func Fixed(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(constants.CurrencyPlaces)
}

// Percent renders a percentage with three decimals (e.g., "6.500%").
func Percent(rate float64) string {
	return fmt.Sprintf("%.3f%%", rate)
}

func formatPositiveCurrency(value float64) string {
	formatted := Fixed(value)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return intPart + "." + decPart
}
