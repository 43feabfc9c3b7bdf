package output

import (
	"io"
	"strings"

	"github.com/iwvelando/mortgage-calc/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// SchedulePretty outputs a human-readable rather than machine-readable table.
func SchedulePretty(w io.Writer, report ScheduleReport) error {
	p := message.NewPrinter(language.English)

	lines := []struct {
		format string
		args   []interface{}
	}{
		{"Monthly payment:   $%.2f\n", []interface{}{report.MonthlyPayment}},
		{"Extra principal:   $%.2f\n", []interface{}{report.ExtraMonthlyPayment}},
		{"Total interest:    $%.2f\n", []interface{}{report.TotalInterest}},
		{"Total paid:        $%.2f\n", []interface{}{report.TotalPaid}},
		{"Payoff:            %d payments (%d years %d months)\n\n", []interface{}{
			report.PayoffPeriods, report.PayoffPeriods / 12, report.PayoffPeriods % 12,
		}},
	}
	for _, line := range lines {
		if _, err := p.Fprintf(w, line.format, line.args...); err != nil {
			return err
		}
	}

	dated := report.HasDates()
	header := "Period | Payment | Principal | Interest | Balance\n"
	if dated {
		header = "Date    | " + header
	}
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}

	for _, row := range report.Payments {
		prefix := ""
		if dated {
			prefix = row.Date + " | "
		}
		if _, err := p.Fprintf(w, "%s%d | $%.2f | $%.2f | $%.2f | $%.2f\n",
			prefix, row.Period, row.Payment, row.Principal, row.Interest, row.Balance); err != nil {
			return err
		}
	}
	return nil
}

// RefinancePretty outputs each analysis as a block of labeled values,
// followed by the market timing when present.
func RefinancePretty(w io.Writer, report RefinanceReport) error {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	if len(report.Scenarios) > 0 {
		first := report.Scenarios[0]
		b.WriteString("Current Mortgage Details:\n")
		b.WriteString(p.Sprintf("  Rate: %s\n", format.Percent(first.CurrentRate)))
		b.WriteString(p.Sprintf("  Balance: $%.2f\n", first.CurrentBalance))
		b.WriteString(p.Sprintf("  Monthly Payment: $%.2f\n", first.CurrentPayment))
		b.WriteString(p.Sprintf("  Remaining Term: %d years %d months\n",
			first.CurrentRemainingMonths/12, first.CurrentRemainingMonths%12))
	}

	for _, r := range report.Scenarios {
		b.WriteString("\n--- " + r.Name + " ---\n")
		b.WriteString(p.Sprintf("  Effective Rate: %s\n", format.Percent(r.EffectiveRate)))
		b.WriteString(p.Sprintf("  Monthly Payment: $%.2f\n", r.NewPayment))
		b.WriteString("  Monthly Savings: " + format.Currency(r.MonthlySavings) + "\n")
		b.WriteString("  Upfront Cost: " + format.Currency(r.UpfrontCost) + "\n")
		if r.BreaksEven {
			b.WriteString(p.Sprintf("  Break-even: %.1f years (%d months)\n", r.BreakevenYears, r.BreakevenMonths))
		} else {
			b.WriteString("  Break-even: " + never + "\n")
		}
		b.WriteString("  5-Year Savings: " + format.Currency(r.Savings5Years) + "\n")
		b.WriteString("  10-Year Savings: " + format.Currency(r.Savings10Years) + "\n")
		b.WriteString("  Lifetime Savings: " + format.Currency(r.LifetimeSavings) + "\n")
		b.WriteString("  Recommendation: " + r.Recommendation + "\n")
		if r.CombinedRecommendation != "" {
			b.WriteString("  With Market Timing: " + r.CombinedRecommendation + "\n")
		}
	}

	if t := report.Timing; t != nil {
		b.WriteString("\nMarket Timing:\n")
		b.WriteString("  Average Rate: " + format.Percent(t.AverageRate) + "\n")
		b.WriteString("  Rate Environment: " + strings.ToUpper(string(t.Environment)) + "\n")
		b.WriteString("  Expert Consensus: " + humanize(string(t.Consensus)) + "\n")
		b.WriteString("  Timing Recommendation: " + humanize(string(t.Recommendation)) + "\n")
		b.WriteString(p.Sprintf("  Confidence Level: %.0f%%\n", t.Confidence*100))
		b.WriteString("  3-Month Outlook: " + t.Outlook3Months + "\n")
		b.WriteString("  6-Month Outlook: " + t.Outlook6Months + "\n")
		b.WriteString("  " + t.Reasoning + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// humanize turns "rates_rising" into "Rates Rising".
func humanize(value string) string {
	words := strings.Fields(strings.ReplaceAll(value, "_", " "))
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
