// Package output renders amortization schedules and refinance analyses as
// human-readable tables, CSV and JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iwvelando/mortgage-calc/internal/marketdata"
	"github.com/iwvelando/mortgage-calc/pkg/amortization"
	"github.com/iwvelando/mortgage-calc/pkg/datetime"
	"github.com/iwvelando/mortgage-calc/pkg/mathutil"
)

// PaymentRow is one schedule period.
type PaymentRow struct {
	Period              int     `json:"period"`
	Date                string  `json:"date,omitempty"`
	Payment             float64 `json:"payment"`
	Principal           float64 `json:"principal"`
	Interest            float64 `json:"interest"`
	Balance             float64 `json:"balance"`
	CumulativePrincipal float64 `json:"cumulativePrincipal"`
	CumulativeInterest  float64 `json:"cumulativeInterest"`
}

// ScheduleReport is the presentation form of an amortization result.
// Amounts are rounded to cents.
type ScheduleReport struct {
	MonthlyPayment      float64      `json:"monthlyPayment"`
	ExtraMonthlyPayment float64      `json:"extraMonthlyPayment"`
	TotalInterest       float64      `json:"totalInterest"`
	TotalPaid           float64      `json:"totalPaid"`
	PayoffPeriods       int          `json:"payoffPeriods"`
	Payments            []PaymentRow `json:"schedule"`
}

// NewScheduleReport converts a result. When startMonth (YYYY-MM) is set every
// row carries the month its payment falls due.
func NewScheduleReport(result amortization.Result, startMonth string) (ScheduleReport, error) {
	report := ScheduleReport{
		MonthlyPayment:      mathutil.Round(result.MonthlyPayment),
		ExtraMonthlyPayment: mathutil.Round(result.ExtraMonthlyPayment),
		TotalInterest:       mathutil.Round(result.TotalInterest),
		TotalPaid:           mathutil.Round(result.TotalPaid),
		PayoffPeriods:       result.PayoffPeriods,
		Payments:            make([]PaymentRow, 0, len(result.Schedule)),
	}

	for _, p := range result.Schedule {
		row := PaymentRow{
			Period:              p.Period,
			Payment:             mathutil.Round(p.Payment),
			Principal:           mathutil.Round(p.Principal),
			Interest:            mathutil.Round(p.Interest),
			Balance:             mathutil.Round(p.RemainingBalance),
			CumulativePrincipal: mathutil.Round(p.CumulativePrincipal),
			CumulativeInterest:  mathutil.Round(p.CumulativeInterest),
		}
		if startMonth != "" {
			date, err := datetime.PaymentDate(startMonth, p.Period)
			if err != nil {
				return ScheduleReport{}, fmt.Errorf("invalid start month %q: %w", startMonth, err)
			}
			row.Date = date
		}
		report.Payments = append(report.Payments, row)
	}
	return report, nil
}

// HasDates reports whether rows carry payment dates.
func (r ScheduleReport) HasDates() bool {
	return len(r.Payments) > 0 && r.Payments[0].Date != ""
}

// RefinanceRow is the presentation form of one refinance analysis.
type RefinanceRow struct {
	Name                   string  `json:"name"`
	Recommendation         string  `json:"recommendation"`
	CombinedRecommendation string  `json:"combinedRecommendation,omitempty"`
	CurrentRate            float64 `json:"currentRate"`
	NewRate                float64 `json:"newRate"`
	EffectiveRate          float64 `json:"effectiveRate"`
	BuydownPoints          float64 `json:"buydownPoints"`
	BuydownCost            float64 `json:"buydownCost"`
	ClosingCosts           float64 `json:"closingCosts"`
	UpfrontCost            float64 `json:"upfrontCost"`
	CurrentPayment         float64 `json:"currentPayment"`
	NewPayment             float64 `json:"newPayment"`
	MonthlySavings         float64 `json:"monthlySavings"`
	BreaksEven             bool    `json:"breaksEven"`
	BreakevenMonths        int     `json:"breakevenMonths"`
	BreakevenYears         float64 `json:"breakevenYears"`
	Savings5Years          float64 `json:"savings5Years"`
	Savings10Years         float64 `json:"savings10Years"`
	LifetimeSavings        float64 `json:"lifetimeSavings"`
	CurrentBalance         float64 `json:"currentBalance"`
	CurrentRemainingMonths int     `json:"currentRemainingMonths"`
	NewTermMonths          int     `json:"newTermMonths"`
	CurrentTotalPaid       float64 `json:"currentTotalPaid"`
	NewTotalPaid           float64 `json:"newTotalPaid"`
	CurrentTotalInterest   float64 `json:"currentTotalInterest"`
	NewTotalInterest       float64 `json:"newTotalInterest"`
	InterestSavings        float64 `json:"interestSavings"`
	NetInterestSavings     float64 `json:"netInterestSavings"`
}

// RefinanceReport lists refinance analyses in input order, optionally with
// the market timing they were judged against.
type RefinanceReport struct {
	Scenarios []RefinanceRow     `json:"scenarios"`
	Timing    *marketdata.Timing `json:"timing,omitempty"`
}

// NewRefinanceReport converts analyses. A non-nil timing adds the combined
// financial and timing recommendation to every row.
func NewRefinanceReport(analyses []amortization.RefinanceAnalysis, timing *marketdata.Timing) RefinanceReport {
	report := RefinanceReport{
		Scenarios: make([]RefinanceRow, 0, len(analyses)),
		Timing:    timing,
	}

	for _, a := range analyses {
		c := a.Comparison
		years, breaksEven := c.BreakevenYears()
		row := RefinanceRow{
			Name:                   a.Name,
			Recommendation:         string(a.Recommendation),
			CurrentRate:            a.CurrentRate,
			NewRate:                a.Option.AnnualRate,
			EffectiveRate:          a.EffectiveRate,
			BuydownPoints:          a.Option.BuydownPoints,
			BuydownCost:            mathutil.Round(a.BuydownCost),
			ClosingCosts:           mathutil.Round(a.Option.ClosingCosts),
			UpfrontCost:            mathutil.Round(a.UpfrontCost),
			CurrentPayment:         mathutil.Round(c.Current.MonthlyPayment),
			NewPayment:             mathutil.Round(c.Proposed.MonthlyPayment),
			MonthlySavings:         mathutil.Round(c.MonthlySavings),
			BreaksEven:             breaksEven,
			BreakevenMonths:        c.BreakevenPeriods,
			BreakevenYears:         years,
			Savings5Years:          mathutil.Round(a.ShortHorizonSavings),
			Savings10Years:         mathutil.Round(a.LongHorizonSavings),
			LifetimeSavings:        mathutil.Round(c.LifetimeSavings),
			CurrentBalance:         mathutil.Round(a.CurrentBalance),
			CurrentRemainingMonths: c.Current.PayoffPeriods,
			NewTermMonths:          a.Option.TermMonths,
			CurrentTotalPaid:       mathutil.Round(c.Current.TotalPaid),
			NewTotalPaid:           mathutil.Round(c.Proposed.TotalPaid),
			CurrentTotalInterest:   mathutil.Round(c.Current.TotalInterest),
			NewTotalInterest:       mathutil.Round(c.Proposed.TotalInterest),
			InterestSavings:        mathutil.Round(a.InterestSavings),
			NetInterestSavings:     mathutil.Round(a.NetInterestSavings),
		}
		if timing != nil {
			row.CombinedRecommendation = marketdata.CombineRecommendation(a.Recommendation, timing.Recommendation, years, breaksEven)
		}
		report.Scenarios = append(report.Scenarios, row)
	}
	return report
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
