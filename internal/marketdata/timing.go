package marketdata

import (
	"strings"

	"github.com/iwvelando/mortgage-calc/pkg/amortization"
	"github.com/iwvelando/mortgage-calc/pkg/constants"
)

// Rate environment thresholds, in percent.
const (
	lowRateCeiling    = 5.5
	mediumRateCeiling = 7.5

	// fallbackMarketRate is assumed when no 30-year quotes are available.
	fallbackMarketRate = 7.0
)

// Direction is a forecast rate direction.
type Direction string

const (
	DirectionUp     Direction = "up"
	DirectionDown   Direction = "down"
	DirectionStable Direction = "stable"
)

// Forecast is an expert outlook on where rates are headed.
type Forecast struct {
	Source          string    `json:"source"`
	Date            string    `json:"date,omitempty"`
	Timeframe       string    `json:"timeframe,omitempty"`
	Direction       Direction `json:"direction"`
	PredictedChange *float64  `json:"predictedChange,omitempty"`
	Confidence      string    `json:"confidence,omitempty"`
	Summary         string    `json:"summary,omitempty"`
}

// Environment classifies the current rate level.
type Environment string

const (
	EnvironmentLow    Environment = "low"
	EnvironmentMedium Environment = "medium"
	EnvironmentHigh   Environment = "high"
)

// Consensus summarizes the forecasts.
type Consensus string

const (
	ConsensusRising    Consensus = "rates_rising"
	ConsensusFalling   Consensus = "rates_falling"
	ConsensusStable    Consensus = "rates_stable"
	ConsensusUncertain Consensus = "uncertain"
)

// TimingAction is the recommended moment to refinance.
type TimingAction string

const (
	TimingRefiNow     TimingAction = "refi_now"
	TimingWait3Months TimingAction = "wait_3_months"
	TimingWait6Months TimingAction = "wait_6_months"
	TimingUncertain   TimingAction = "uncertain"
)

// Timing is the market timing analysis.
type Timing struct {
	AverageRate    float64      `json:"averageRate"`
	Environment    Environment  `json:"environment"`
	Consensus      Consensus    `json:"consensus"`
	Recommendation TimingAction `json:"recommendation"`
	Confidence     float64      `json:"confidence"`
	Reasoning      string       `json:"reasoning"`
	Outlook3Months string       `json:"outlook3Months"`
	Outlook6Months string       `json:"outlook6Months"`
}

// ClassifyEnvironment places a rate in the low, medium or high band.
func ClassifyEnvironment(rate float64) Environment {
	switch {
	case rate < lowRateCeiling:
		return EnvironmentLow
	case rate < mediumRateCeiling:
		return EnvironmentMedium
	default:
		return EnvironmentHigh
	}
}

// ForecastConsensus returns rising or falling only when that direction
// outvotes all others combined.
func ForecastConsensus(forecasts []Forecast) Consensus {
	if len(forecasts) == 0 {
		return ConsensusUncertain
	}
	var up, down, stable int
	for _, f := range forecasts {
		switch Direction(strings.ToLower(string(f.Direction))) {
		case DirectionUp:
			up++
		case DirectionDown:
			down++
		case DirectionStable:
			stable++
		}
	}
	switch {
	case up > down+stable:
		return ConsensusRising
	case down > up+stable:
		return ConsensusFalling
	default:
		return ConsensusStable
	}
}

// AnalyzeTiming combines the 30-year quotes and forecasts into a timing
// recommendation.
func AnalyzeTiming(quotes []Quote, forecasts []Forecast) Timing {
	average, ok := AverageRates(quotes)[constants.DefaultRateType]
	if !ok {
		average = fallbackMarketRate
	}

	timing := Timing{
		AverageRate: average,
		Environment: ClassifyEnvironment(average),
		Consensus:   ForecastConsensus(forecasts),
	}

	switch {
	case timing.Environment == EnvironmentLow && timing.Consensus == ConsensusRising:
		timing.Recommendation, timing.Confidence = TimingRefiNow, 0.9
		timing.Reasoning = "Rates are currently low and expected to rise. Excellent time to refinance."
		timing.Outlook3Months, timing.Outlook6Months = "Likely higher", "Likely higher"
	case timing.Environment == EnvironmentMedium && timing.Consensus == ConsensusRising:
		timing.Recommendation, timing.Confidence = TimingRefiNow, 0.8
		timing.Reasoning = "Rates are moderate but trending up. Good time to lock in current rates."
		timing.Outlook3Months, timing.Outlook6Months = "Likely higher", "Likely higher"
	case timing.Environment == EnvironmentHigh && timing.Consensus == ConsensusFalling:
		timing.Recommendation, timing.Confidence = TimingWait6Months, 0.7
		timing.Reasoning = "Rates are high but may decline. Consider waiting for better opportunities."
		timing.Outlook3Months, timing.Outlook6Months = "Possibly lower", "Likely lower"
	case timing.Environment == EnvironmentLow && timing.Consensus == ConsensusFalling:
		timing.Recommendation, timing.Confidence = TimingWait3Months, 0.6
		timing.Reasoning = "Rates are already low but may go lower. Short wait could be beneficial."
		timing.Outlook3Months, timing.Outlook6Months = "Possibly lower", "Stable to lower"
	case timing.Consensus == ConsensusStable:
		timing.Recommendation, timing.Confidence = TimingRefiNow, 0.7
		timing.Reasoning = "Rates appear stable. If refinancing makes sense financially, proceed."
		timing.Outlook3Months, timing.Outlook6Months = "Stable", "Stable"
	default:
		timing.Recommendation, timing.Confidence = TimingUncertain, 0.5
		timing.Reasoning = "Mixed market signals. Focus on personal financial benefits rather than timing."
		timing.Outlook3Months, timing.Outlook6Months = "Uncertain", "Uncertain"
	}
	return timing
}

// CombineRecommendation merges the financial verdict on a refinance option
// with the market timing.
func CombineRecommendation(financial amortization.Recommendation, timing TimingAction, breakevenYears float64, breaksEven bool) string {
	if !financial.Positive() {
		return string(financial) + " + Market timing irrelevant"
	}
	if !breaksEven {
		breakevenYears = 999
	}

	switch timing {
	case TimingRefiNow:
		if financial == amortization.RecommendationHighly {
			return "EXCELLENT OPPORTUNITY - Great financials + Perfect timing"
		}
		return "GOOD OPPORTUNITY - " + string(financial) + " + Good market timing"
	case TimingWait3Months:
		if breakevenYears <= 2 {
			return "REFI NOW - Benefits too good despite timing concerns"
		}
		return "CONSIDER WAITING - " + string(financial) + " but rates may improve"
	case TimingWait6Months:
		if breakevenYears <= 1.5 {
			return "REFI NOW - Exceptional benefits outweigh timing"
		}
		return "WAIT FOR BETTER RATES - Market conditions suggest patience"
	default:
		return "MIXED SIGNALS - " + string(financial) + " but uncertain market"
	}
}
