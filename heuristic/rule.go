package heuristic

import (
	"github.com/YuminosukeSato/sleepq/pkg/errors"
	"github.com/YuminosukeSato/sleepq/sleep"
)

// Score weights. Steps and calories are capped ratios against the Excellent
// reference, so the total lies in [0, 1].
const (
	StepsWeight    = 0.40
	CaloriesWeight = 0.30
)

// Tier cutoffs; a total exactly on a cutoff maps to the higher tier.
const (
	ExcellentCutoff = 0.8
	GoodCutoff      = 0.6
	FairCutoff      = 0.4
)

// scoreEpsilon absorbs float error when summing decimal weights, so that
// 0.4+0.2 still reaches the 0.6 cutoff.
const scoreEpsilon = 1e-9

var activityScores = map[sleep.ActivityLevel]float64{
	sleep.ActivityHigh:     0.20,
	sleep.ActivityModerate: 0.10,
	sleep.ActivityLow:      0,
}

var dietScores = map[sleep.DietQuality]float64{
	sleep.DietHealthy: 0.10,
	sleep.DietAverage: 0.05,
	sleep.DietPoor:    0,
}

// Breakdown is the per-component contribution to a weighted score.
type Breakdown struct {
	Steps    float64 `json:"steps" yaml:"steps"`
	Calories float64 `json:"calories" yaml:"calories"`
	Activity float64 `json:"activity" yaml:"activity"`
	Diet     float64 `json:"diet" yaml:"diet"`
}

// Total returns the sum of the components.
func (b Breakdown) Total() float64 {
	return b.Steps + b.Calories + b.Activity + b.Diet
}

// RuleBased scores inputs against the Excellent row of an average profile.
type RuleBased struct {
	excellent Reference
}

// NewRuleBased builds the scorer. An invalid profile is replaced by the
// built-in table, so the result is always usable.
func NewRuleBased(p AverageProfile) *RuleBased {
	if p == nil || p.Validate() != nil {
		p = DefaultProfile()
	}
	return &RuleBased{excellent: p[sleep.Excellent]}
}

// Breakdown returns the weighted components for in.
func (r *RuleBased) Breakdown(in sleep.FeatureInput) Breakdown {
	return Breakdown{
		Steps:    cappedRatio(float64(in.DailySteps), r.excellent.DailySteps) * StepsWeight,
		Calories: cappedRatio(float64(in.CaloriesBurned), r.excellent.CaloriesBurned) * CaloriesWeight,
		Activity: activityScores[in.ActivityLevel],
		Diet:     dietScores[in.DietaryHabits],
	}
}

// Score returns the total weighted score in [0, 1].
func (r *RuleBased) Score(in sleep.FeatureInput) float64 {
	return r.Breakdown(in).Total()
}

// Predict maps the score to a label.
func (r *RuleBased) Predict(in sleep.FeatureInput) sleep.Label {
	return LabelForScore(r.Score(in))
}

// LabelForScore applies the inclusive tier cutoffs.
func LabelForScore(total float64) sleep.Label {
	switch {
	case total >= ExcellentCutoff-scoreEpsilon:
		return sleep.Excellent
	case total >= GoodCutoff-scoreEpsilon:
		return sleep.Good
	case total >= FairCutoff-scoreEpsilon:
		return sleep.Fair
	default:
		return sleep.Poor
	}
}

func cappedRatio(v, ref float64) float64 {
	if v <= 0 {
		return 0
	}
	return errors.ClipValue(v/ref, 0, 1)
}
