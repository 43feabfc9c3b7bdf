package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/mortgage-calc/pkg/format"
)

// ScheduleColumns is the column order of schedule CSV exports. A date column
// is prepended when the schedule carries dates.
var ScheduleColumns = []string{
	"period", "payment", "principal", "interest", "balance",
	"cumulative_principal", "cumulative_interest",
}

// RefinanceColumns is the column order of refinance CSV exports.
var RefinanceColumns = []string{
	"scenario_name", "recommendation",
	"current_rate", "new_rate_before_buydown", "effective_rate_after_buydown",
	"buydown_points", "buydown_cost", "closing_costs", "total_upfront_cost",
	"current_payment", "new_monthly_payment", "monthly_savings",
	"break_even_months", "break_even_years",
	"savings_5_years", "savings_10_years", "savings_full_term",
	"current_remaining_balance", "current_remaining_months", "new_term_months",
	"current_total_payments_remaining", "new_total_payments",
	"current_total_interest_remaining", "new_total_interest",
	"interest_savings_full_term", "net_interest_savings",
}

// timingColumns are appended to refinance exports that include market timing.
var timingColumns = []string{
	"market_timing_rec", "market_confidence", "rate_environment",
	"forecast_consensus", "enhanced_recommendation",
}

const never = "Never"

// ScheduleCSV writes the schedule in comma-separated value format.
func ScheduleCSV(w io.Writer, report ScheduleReport) error {
	cw := csv.NewWriter(w)
	dated := report.HasDates()

	header := ScheduleColumns
	if dated {
		header = append([]string{"date"}, ScheduleColumns...)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, p := range report.Payments {
		record := make([]string, 0, len(header))
		if dated {
			record = append(record, p.Date)
		}
		record = append(record,
			strconv.Itoa(p.Period),
			format.Fixed(p.Payment),
			format.Fixed(p.Principal),
			format.Fixed(p.Interest),
			format.Fixed(p.Balance),
			format.Fixed(p.CumulativePrincipal),
			format.Fixed(p.CumulativeInterest),
		)
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// RefinanceCSV writes one row per analysis in comma-separated value format.
func RefinanceCSV(w io.Writer, report RefinanceReport) error {
	cw := csv.NewWriter(w)

	header := RefinanceColumns
	if report.Timing != nil {
		header = append(append([]string{}, RefinanceColumns...), timingColumns...)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range report.Scenarios {
		months, years := never, never
		if r.BreaksEven {
			months = strconv.Itoa(r.BreakevenMonths)
			years = fmt.Sprintf("%.2f", r.BreakevenYears)
		}

		record := []string{
			r.Name, r.Recommendation,
			fmt.Sprintf("%.3f", r.CurrentRate),
			fmt.Sprintf("%.3f", r.NewRate),
			fmt.Sprintf("%.3f", r.EffectiveRate),
			strconv.FormatFloat(r.BuydownPoints, 'f', -1, 64),
			format.Fixed(r.BuydownCost),
			format.Fixed(r.ClosingCosts),
			format.Fixed(r.UpfrontCost),
			format.Fixed(r.CurrentPayment),
			format.Fixed(r.NewPayment),
			format.Fixed(r.MonthlySavings),
			months, years,
			format.Fixed(r.Savings5Years),
			format.Fixed(r.Savings10Years),
			format.Fixed(r.LifetimeSavings),
			format.Fixed(r.CurrentBalance),
			strconv.Itoa(r.CurrentRemainingMonths),
			strconv.Itoa(r.NewTermMonths),
			format.Fixed(r.CurrentTotalPaid),
			format.Fixed(r.NewTotalPaid),
			format.Fixed(r.CurrentTotalInterest),
			format.Fixed(r.NewTotalInterest),
			format.Fixed(r.InterestSavings),
			format.Fixed(r.NetInterestSavings),
		}
		if t := report.Timing; t != nil {
			record = append(record,
				string(t.Recommendation),
				fmt.Sprintf("%.2f", t.Confidence),
				string(t.Environment),
				string(t.Consensus),
				r.CombinedRecommendation,
			)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
