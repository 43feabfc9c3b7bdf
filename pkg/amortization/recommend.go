package amortization

// Recommendation is the verdict on a refinance option.
type Recommendation string

const (
	RecommendationHigherPayment  Recommendation = "NOT RECOMMENDED - Higher monthly payment"
	RecommendationNeverBreakeven Recommendation = "NOT RECOMMENDED - Never breaks even"
	RecommendationHighly         Recommendation = "HIGHLY RECOMMENDED - Quick break-even"
	RecommendationRecommended    Recommendation = "RECOMMENDED - Reasonable break-even period"
	RecommendationConsider       Recommendation = "CONSIDER - Long break-even but potential savings"
	RecommendationTooLong        Recommendation = "NOT RECOMMENDED - Break-even too long"
)

// Positive reports whether the recommendation favors refinancing.
func (r Recommendation) Positive() bool {
	switch r {
	case RecommendationHighly, RecommendationRecommended, RecommendationConsider:
		return true
	}
	return false
}

// Recommend grades an analysis by its monthly savings, breakeven time and
// five-year net savings.
func Recommend(analysis RefinanceAnalysis) Recommendation {
	if analysis.Comparison.MonthlySavings <= 0 {
		return RecommendationHigherPayment
	}
	years, ok := analysis.Comparison.BreakevenYears()
	switch {
	case !ok:
		return RecommendationNeverBreakeven
	case years <= 2:
		return RecommendationHighly
	case years <= 5 && analysis.ShortHorizonSavings > 0:
		return RecommendationRecommended
	case years <= 10:
		return RecommendationConsider
	default:
		return RecommendationTooLong
	}
}
