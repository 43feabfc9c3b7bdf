// Package amortization computes fixed-rate loan payments, amortization
// schedules and refinance comparisons. Every function is pure: results depend
// only on the arguments, so calls are safe from any number of goroutines.
package amortization

import (
	"math"

	"github.com/iwvelando/mortgage-calc/pkg/constants"
	"github.com/iwvelando/mortgage-calc/pkg/mathutil"
)

// Payment holds the values for a given period.
type Payment struct {
	Period              int
	Payment             float64
	Principal           float64
	Interest            float64
	RemainingBalance    float64
	CumulativePrincipal float64
	CumulativeInterest  float64
}

// Result is a computed amortization schedule with its totals.
type Result struct {
	// MonthlyPayment is the scheduled payment excluding extra principal.
	MonthlyPayment      float64
	ExtraMonthlyPayment float64
	Schedule            []Payment
	TotalInterest       float64
	TotalPaid           float64
	PayoffPeriods       int
}

// ComputeMonthlyPayment calculates the monthly payment for a loan using the
// standard amortization formula M = P*r / (1 - (1+r)^-n). A zero rate pays
// the principal down in equal parts.
func ComputeMonthlyPayment(principal, annualRatePercent float64, termMonths int) (float64, error) {
	params, err := NewLoanParameters(principal, annualRatePercent, termMonths, 0)
	if err != nil {
		return 0, err
	}
	return params.MonthlyPayment(), nil
}

func monthlyPayment(principal, monthlyRate float64, termMonths int) float64 {
	if monthlyRate == 0 {
		return principal / float64(termMonths)
	}
	return principal * monthlyRate / (1 - math.Pow(1+monthlyRate, -float64(termMonths)))
}

// BuildSchedule walks the loan period by period until the balance is paid or
// the term is exhausted. The last entry always pays exactly the remaining
// balance plus that period's interest, absorbing rounding residue and any
// overshoot from extra payments.
func BuildSchedule(params LoanParameters) (Result, error) {
	if params.termMonths <= 0 || params.principal <= 0 {
		return Result{}, invalid("loan parameters", params.principal, "must be built with NewLoanParameters")
	}

	rate := params.MonthlyRate()
	scheduled := params.MonthlyPayment()
	extra := params.extraPayment

	result := Result{
		MonthlyPayment:      scheduled,
		ExtraMonthlyPayment: extra,
		Schedule:            make([]Payment, 0, min(params.termMonths, constants.MaxTermMonths)),
	}

	balance := params.principal
	cumulativePrincipal := 0.0
	stalled := 0

	for period := 1; period <= params.termMonths; period++ {
		interest := balance * rate
		principal := scheduled - interest + extra
		payment := scheduled + extra

		if principal <= 0 {
			stalled++
			if stalled >= 2 {
				return Result{}, &NonConvergentScheduleError{
					Period:   period,
					Balance:  balance,
					Payment:  payment,
					Interest: interest,
				}
			}
		} else {
			stalled = 0
		}

		if principal >= balance || mathutil.IsZero(balance-principal) || period == params.termMonths {
			principal = balance
			payment = balance + interest
			balance = 0
		} else {
			balance -= principal
		}

		cumulativePrincipal += principal
		result.TotalInterest += interest
		result.TotalPaid += payment
		result.Schedule = append(result.Schedule, Payment{
			Period:              period,
			Payment:             payment,
			Principal:           principal,
			Interest:            interest,
			RemainingBalance:    balance,
			CumulativePrincipal: cumulativePrincipal,
			CumulativeInterest:  result.TotalInterest,
		})

		if balance == 0 {
			break
		}
	}

	result.PayoffPeriods = len(result.Schedule)
	return result, nil
}

// RemainingBalance returns the outstanding balance of a loan after
// monthsPaid payments of the given amount, using the closed-form balance
// formula. The result is never negative.
func RemainingBalance(principal, payment, annualRatePercent float64, monthsPaid int) (float64, error) {
	if !mathutil.IsFinite(principal) || principal <= 0 {
		return 0, invalid("principal", principal, "must be positive")
	}
	if !mathutil.IsFinite(payment) || payment < 0 {
		return 0, invalid("payment", payment, "must not be negative")
	}
	if !mathutil.IsFinite(annualRatePercent) || annualRatePercent < 0 {
		return 0, invalid("annual rate", annualRatePercent, "must not be negative")
	}
	if monthsPaid < 0 {
		return 0, invalid("months paid", float64(monthsPaid), "must not be negative")
	}

	rate := mathutil.MonthlyRate(annualRatePercent)
	var remaining float64
	if rate == 0 {
		remaining = principal - payment*float64(monthsPaid)
	} else {
		growth := math.Pow(1+rate, float64(monthsPaid))
		remaining = principal*growth - payment*(growth-1)/rate
	}
	return math.Max(0, remaining), nil
}
