package validation

import (
	"fmt"
	"time"

	"github.com/iwvelando/mortgage-calc/pkg/constants"
)

// fractionRateCeiling flags rates that look like decimal fractions (0.065)
// rather than percentages (6.5).
const fractionRateCeiling = 1.0

// ValidateRateScale warns when a configured rate looks like a decimal
// fraction. Rates are percentages.
func ValidateRateScale(name string, rate *float64) []string {
	if rate == nil || *rate <= 0 || *rate >= fractionRateCeiling {
		return nil
	}
	return []string{fmt.Sprintf("Rate for '%s' is %v%%; rates are percentages, did you mean %v%%?",
		name, *rate, *rate*constants.PercentageMultiplier)}
}

// ValidateStartDate warns when a start date is not in YYYY-MM form.
func ValidateStartDate(name, startDate string) []string {
	if startDate == "" {
		return nil
	}
	if _, err := time.Parse(constants.DateTimeLayout, startDate); err != nil {
		return []string{fmt.Sprintf("Start date for '%s' is %q, expected YYYY-MM; dates will be omitted", name, startDate)}
	}
	return nil
}
