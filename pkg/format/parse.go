package format

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseCurrency converts a user-entered amount such as "$300,000", "1 896.20"
// or "-$12.5" into a float64. At most one minus sign is accepted, either
// before or after the dollar sign.
func ParseCurrency(value string) (float64, error) {
	cleaned := strings.TrimSpace(value)
	negative := false
	if strings.HasPrefix(cleaned, "-") {
		negative = true
		cleaned = strings.TrimSpace(cleaned[1:])
	}
	cleaned = strings.TrimPrefix(cleaned, "$")
	if strings.HasPrefix(cleaned, "-") {
		if negative {
			return 0, fmt.Errorf("invalid amount %q: more than one minus sign", value)
		}
		negative = true
		cleaned = cleaned[1:]
	}
	if strings.HasPrefix(cleaned, "-") {
		return 0, fmt.Errorf("invalid amount %q: more than one minus sign", value)
	}
	cleaned = strings.NewReplacer(",", "", " ", "", "_", "").Replace(cleaned)
	if cleaned == "" {
		return 0, fmt.Errorf("invalid amount %q: empty", value)
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	if negative {
		d = d.Neg()
	}
	return d.InexactFloat64(), nil
}

// ParsePercent converts a user-entered percentage such as "6.5%" or "6.5"
// into the percentage value (6.5).
func ParsePercent(value string) (float64, error) {
	cleaned := strings.TrimSpace(value)
	cleaned = strings.TrimSpace(strings.TrimSuffix(cleaned, "%"))
	if cleaned == "" {
		return 0, fmt.Errorf("invalid percentage %q: empty", value)
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, fmt.Errorf("invalid percentage %q: %w", value, err)
	}
	return d.InexactFloat64(), nil
}
