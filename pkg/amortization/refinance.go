package amortization

import (
	"fmt"
	"math"

	"github.com/iwvelando/mortgage-calc/pkg/constants"
	"github.com/iwvelando/mortgage-calc/pkg/mathutil"
)

// NeverBreakeven marks a refinance whose monthly savings never recover the
// closing costs.
const NeverBreakeven = -1

// maxBreakevenPeriods bounds the breakeven search; savings so small that
// recovery takes longer are reported as NeverBreakeven.
const maxBreakevenPeriods = 1_000_000

// RefinanceComparison compares the remaining schedule of a current loan with
// a proposed replacement.
type RefinanceComparison struct {
	Current          Result
	Proposed         Result
	ClosingCosts     float64
	MonthlySavings   float64
	BreakevenPeriods int
	LifetimeSavings  float64
}

// BreaksEven reports whether the monthly savings ever recover the closing costs.
func (c RefinanceComparison) BreaksEven() bool {
	return c.BreakevenPeriods != NeverBreakeven
}

// BreakevenYears returns the breakeven point in years, and false when the
// refinance never breaks even.
func (c RefinanceComparison) BreakevenYears() (float64, bool) {
	if !c.BreaksEven() {
		return 0, false
	}
	return float64(c.BreakevenPeriods) / constants.MonthsPerYear, true
}

// CompareRefinance builds both schedules and derives the savings of moving
// from current to proposed after paying closingCosts.
func CompareRefinance(current, proposed LoanParameters, closingCosts float64) (RefinanceComparison, error) {
	if !mathutil.IsFinite(closingCosts) || closingCosts < 0 {
		return RefinanceComparison{}, invalid("closing costs", closingCosts, "must not be negative")
	}

	currentResult, err := BuildSchedule(current)
	if err != nil {
		return RefinanceComparison{}, fmt.Errorf("current loan: %w", err)
	}
	proposedResult, err := BuildSchedule(proposed)
	if err != nil {
		return RefinanceComparison{}, fmt.Errorf("proposed loan: %w", err)
	}

	savings := currentResult.MonthlyPayment - proposedResult.MonthlyPayment
	return RefinanceComparison{
		Current:          currentResult,
		Proposed:         proposedResult,
		ClosingCosts:     closingCosts,
		MonthlySavings:   savings,
		BreakevenPeriods: breakevenPeriods(savings, closingCosts),
		LifetimeSavings:  currentResult.TotalPaid - (proposedResult.TotalPaid + closingCosts),
	}, nil
}

// breakevenPeriods returns the smallest k with k*savings >= costs.
func breakevenPeriods(savings, costs float64) int {
	if savings <= 0 {
		return NeverBreakeven
	}
	if costs == 0 {
		return 0
	}

	ratio := math.Ceil(costs / savings)
	if ratio > maxBreakevenPeriods {
		return NeverBreakeven
	}

	k := int(ratio)
	for k > 0 && float64(k-1)*savings >= costs {
		k--
	}
	for float64(k)*savings < costs {
		k++
	}
	return k
}

// RefinanceOption describes a refinance offer. Rates are percentages.
type RefinanceOption struct {
	Name         string
	AnnualRate   float64
	TermMonths   int
	ClosingCosts float64
	// BuydownPoints lowers the rate by RateReductionPerPoint percentage points
	// per point, each point costing PointCostPercent of the balance.
	BuydownPoints         float64
	PointCostPercent      float64
	RateReductionPerPoint float64
}

// WithDefaults fills unset point pricing with the market conventions of one
// percent of the balance per point and a quarter point of rate per point.
func (o RefinanceOption) WithDefaults() RefinanceOption {
	if o.PointCostPercent == 0 {
		o.PointCostPercent = constants.DefaultPointCostPercent
	}
	if o.RateReductionPerPoint == 0 {
		o.RateReductionPerPoint = constants.DefaultRateReductionPerPoint
	}
	return o
}

// EffectiveRate returns the rate after applying buydown points.
func (o RefinanceOption) EffectiveRate() float64 {
	return o.AnnualRate - o.BuydownPoints*o.RateReductionPerPoint
}

// BuydownCost returns the price of the buydown points for the given balance.
func (o RefinanceOption) BuydownCost(balance float64) float64 {
	return balance * o.BuydownPoints * o.PointCostPercent / constants.PercentageMultiplier
}

// UpfrontCost returns closing costs plus buydown cost.
func (o RefinanceOption) UpfrontCost(balance float64) float64 {
	return o.ClosingCosts + o.BuydownCost(balance)
}

// DisplayName returns the option name, or a description of its terms when
// unnamed.
func (o RefinanceOption) DisplayName() string {
	if o.Name != "" {
		return o.Name
	}
	return fmt.Sprintf("Refi: %.3f%% rate, %dyr term", o.EffectiveRate(), o.TermMonths/constants.MonthsPerYear)
}

func (o RefinanceOption) validate() error {
	if !mathutil.IsFinite(o.ClosingCosts) || o.ClosingCosts < 0 {
		return invalid("closing costs", o.ClosingCosts, "must not be negative")
	}
	if !mathutil.IsFinite(o.BuydownPoints) || o.BuydownPoints < 0 {
		return invalid("buydown points", o.BuydownPoints, "must not be negative")
	}
	if !mathutil.IsFinite(o.PointCostPercent) || o.PointCostPercent < 0 {
		return invalid("point cost", o.PointCostPercent, "must not be negative")
	}
	if !mathutil.IsFinite(o.RateReductionPerPoint) || o.RateReductionPerPoint < 0 {
		return invalid("rate reduction per point", o.RateReductionPerPoint, "must not be negative")
	}
	if o.EffectiveRate() < 0 {
		return invalid("effective rate", o.EffectiveRate(), "buydown points reduce the rate below zero")
	}
	return nil
}

// RefinanceAnalysis is a full evaluation of one refinance option against the
// current loan.
type RefinanceAnalysis struct {
	Name                string
	Option              RefinanceOption
	CurrentRate         float64
	CurrentBalance      float64
	EffectiveRate       float64
	BuydownCost         float64
	UpfrontCost         float64
	Comparison          RefinanceComparison
	ShortHorizonSavings float64
	LongHorizonSavings  float64
	InterestSavings     float64
	NetInterestSavings  float64
	Recommendation      Recommendation
}

// AnalyzeRefinance refinances the outstanding balance of current into the
// given option and evaluates the result. Closing costs and buydown costs
// together form the upfront cost recovered by the monthly savings.
func AnalyzeRefinance(current LoanParameters, option RefinanceOption) (RefinanceAnalysis, error) {
	option = option.WithDefaults()
	if err := option.validate(); err != nil {
		return RefinanceAnalysis{}, err
	}

	balance := current.Principal()
	effectiveRate := option.EffectiveRate()
	proposed, err := NewLoanParameters(balance, effectiveRate, option.TermMonths, 0)
	if err != nil {
		return RefinanceAnalysis{}, fmt.Errorf("proposed loan: %w", err)
	}

	upfront := option.UpfrontCost(balance)
	comparison, err := CompareRefinance(current, proposed, upfront)
	if err != nil {
		return RefinanceAnalysis{}, err
	}

	savings := comparison.MonthlySavings
	interestSavings := comparison.Current.TotalInterest - comparison.Proposed.TotalInterest
	analysis := RefinanceAnalysis{
		Name:                option.DisplayName(),
		Option:              option,
		CurrentRate:         current.AnnualRatePercent(),
		CurrentBalance:      balance,
		EffectiveRate:       effectiveRate,
		BuydownCost:         option.BuydownCost(balance),
		UpfrontCost:         upfront,
		Comparison:          comparison,
		ShortHorizonSavings: savings*constants.ShortHorizonMonths - upfront,
		LongHorizonSavings:  savings*constants.LongHorizonMonths - upfront,
		InterestSavings:     interestSavings,
		NetInterestSavings:  interestSavings - upfront,
	}
	analysis.Recommendation = Recommend(analysis)
	return analysis, nil
}
