package amortization

import (
	"github.com/iwvelando/mortgage-calc/pkg/constants"
	"github.com/iwvelando/mortgage-calc/pkg/mathutil"
)

// LoanParameters describes a fixed-rate loan. Values are validated at
// construction and never change afterwards.
type LoanParameters struct {
	principal    float64
	ratePercent  float64 // annual, e.g. 6.5
	termMonths   int
	extraPayment float64
	payment      float64 // fixed contractual payment, 0 when derived
}

// NewLoanParameters validates and builds loan parameters. The annual rate is
// given as a percentage (6.5 means 6.5%).
func NewLoanParameters(principal, annualRatePercent float64, termMonths int, extraMonthlyPayment float64) (LoanParameters, error) {
	if !mathutil.IsFinite(principal) || principal <= 0 {
		return LoanParameters{}, invalid("principal", principal, "must be positive")
	}
	if !mathutil.IsFinite(annualRatePercent) || annualRatePercent < 0 {
		return LoanParameters{}, invalid("annual rate", annualRatePercent, "must not be negative")
	}
	if annualRatePercent >= constants.MaxAnnualRatePercent {
		return LoanParameters{}, invalid("annual rate", annualRatePercent, "must be below 100 percent")
	}
	if termMonths <= 0 {
		return LoanParameters{}, invalid("term", float64(termMonths), "must be a positive number of months")
	}
	if termMonths > constants.MaxTermMonths {
		return LoanParameters{}, invalid("term", float64(termMonths), "must not exceed 1200 months")
	}
	if !mathutil.IsFinite(extraMonthlyPayment) || extraMonthlyPayment < 0 {
		return LoanParameters{}, invalid("extra monthly payment", extraMonthlyPayment, "must not be negative")
	}

	return LoanParameters{
		principal:    principal,
		ratePercent:  annualRatePercent,
		termMonths:   termMonths,
		extraPayment: extraMonthlyPayment,
	}, nil
}

// WithPayment returns a copy whose scheduled payment is fixed to the given
// amount instead of derived from the amortization formula. It models an
// existing loan whose contractual payment is known.
func (p LoanParameters) WithPayment(payment float64) (LoanParameters, error) {
	if !mathutil.IsFinite(payment) || payment <= 0 {
		return LoanParameters{}, invalid("payment", payment, "must be positive")
	}
	p.payment = payment
	return p, nil
}

// Principal returns the amount borrowed.
func (p LoanParameters) Principal() float64 { return p.principal }

// AnnualRate returns the annual rate as a decimal fraction.
func (p LoanParameters) AnnualRate() float64 { return mathutil.AnnualRate(p.ratePercent) }

// AnnualRatePercent returns the annual rate as a percentage.
func (p LoanParameters) AnnualRatePercent() float64 { return p.ratePercent }

// MonthlyRate returns the periodic rate applied each month.
func (p LoanParameters) MonthlyRate() float64 {
	return mathutil.MonthlyRate(p.ratePercent)
}

// TermMonths returns the number of scheduled periods.
func (p LoanParameters) TermMonths() int { return p.termMonths }

// MonthlyPayment returns the scheduled payment excluding extra principal.
func (p LoanParameters) MonthlyPayment() float64 {
	if p.payment > 0 {
		return p.payment
	}
	return monthlyPayment(p.principal, p.MonthlyRate(), p.termMonths)
}
