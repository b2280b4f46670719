package heuristic

import "github.com/YuminosukeSato/sleepq/sleep"

// Coarse rule thresholds. Comparisons are strict.
const (
	CoarseGoodSteps    = 8000
	CoarseGoodCalories = 2500
	CoarseFairSteps    = 6000
	CoarseFairCalories = 2000
)

// CoarseRule applies hard thresholds and returns Good, Fair or Poor.
// sleep.Coarsen turns the result into the two-tier Good/Bad display.
func CoarseRule(in sleep.FeatureInput) sleep.Label {
	active := in.ActivityLevel == sleep.ActivityModerate || in.ActivityLevel == sleep.ActivityHigh
	switch {
	case in.DailySteps > CoarseGoodSteps && in.CaloriesBurned > CoarseGoodCalories &&
		active && in.DietaryHabits == sleep.DietHealthy:
		return sleep.Good
	case in.DailySteps > CoarseFairSteps && in.CaloriesBurned > CoarseFairCalories &&
		(in.DietaryHabits == sleep.DietAverage || in.DietaryHabits == sleep.DietHealthy):
		return sleep.Fair
	default:
		return sleep.Poor
	}
}
