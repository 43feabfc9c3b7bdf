// Package testutil provides common utility functions for testing.
package testutil

import (
	"math"

	"github.com/iwvelando/mortgage-calc/pkg/output"
)

// FindScenario finds a refinance row by name in the report.
// Returns a pointer to the row if found, nil otherwise.
func FindScenario(report output.RefinanceReport, name string) *output.RefinanceRow {
	for i := range report.Scenarios {
		if report.Scenarios[i].Name == name {
			return &report.Scenarios[i]
		}
	}
	return nil
}

// FindPayment returns the schedule row of the given 1-based period, nil when
// the schedule ended earlier.
func FindPayment(report output.ScheduleReport, period int) *output.PaymentRow {
	if period < 1 || period > len(report.Payments) {
		return nil
	}
	return &report.Payments[period-1]
}

// Close reports whether got is within a cent of expected.
func Close(got, expected float64) bool {
	return math.Abs(got-expected) <= 0.01
}
