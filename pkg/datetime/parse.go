// Package datetime provides date and time utility functions.
package datetime

import (
	"time"

	"github.com/iwvelando/mortgage-calc/pkg/constants"
)

const (
	// DateTimeLayout is the month format of schedule start dates and the
	// exported date column.
	DateTimeLayout = constants.DateTimeLayout

	// DayLayout is the format of maturity dates.
	DayLayout = constants.DayLayout
)

// OffsetDate returns the string-formatted date offset by the given number of
// months relative to the given date.
func OffsetDate(date, layout string, months int) (string, error) {
	t, err := time.Parse(layout, date)
	if err != nil {
		return date, err
	}
	return t.AddDate(0, months, 0).Format(layout), nil
}

// PaymentDate returns the month in which the given 1-based period falls for
// a schedule whose first payment is due in startMonth.
func PaymentDate(startMonth string, period int) (string, error) {
	return OffsetDate(startMonth, DateTimeLayout, period-1)
}

// MonthsUntil returns the number of whole months between now and the
// maturity date (YYYY-MM-DD). A maturity on or before now yields 0.
func MonthsUntil(maturity string, now time.Time) (int, error) {
	maturityT, err := time.Parse(DayLayout, maturity)
	if err != nil {
		return 0, err
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if !maturityT.After(today) {
		return 0, nil
	}

	months := (maturityT.Year()-today.Year())*12 + int(maturityT.Month()-today.Month())
	// A partial final month does not count.
	if maturityT.Day() < today.Day() {
		months--
	}
	if months < 0 {
		return 0, nil
	}
	return months, nil
}
