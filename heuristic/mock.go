package heuristic

import "github.com/YuminosukeSato/sleepq/sleep"

// Mock score references.
const (
	mockStepsRef    = 10000.0
	mockCaloriesRef = 3000.0
)

// MockScore is steps/10000*0.5 + calories/3000*0.5, uncapped.
func MockScore(in sleep.FeatureInput) float64 {
	return float64(in.DailySteps)/mockStepsRef*0.5 + float64(in.CaloriesBurned)/mockCaloriesRef*0.5
}

// Mock maps MockScore to a label with exclusive cutoffs.
func Mock(in sleep.FeatureInput) sleep.Label {
	s := MockScore(in)
	switch {
	case s > ExcellentCutoff:
		return sleep.Excellent
	case s > GoodCutoff:
		return sleep.Good
	case s > FairCutoff:
		return sleep.Fair
	default:
		return sleep.Poor
	}
}
