package predictor

import (
	"github.com/YuminosukeSato/sleepq/heuristic"
	"github.com/YuminosukeSato/sleepq/sleep"
)

// RuleBasedPredictor is the four-tier weighted score. It never fails.
type RuleBasedPredictor struct {
	rule *heuristic.RuleBased
}

// NewRuleBasedPredictor scores against profile, or the built-in table when
// profile is nil or invalid.
func NewRuleBasedPredictor(profile heuristic.AverageProfile) *RuleBasedPredictor {
	return &RuleBasedPredictor{rule: heuristic.NewRuleBased(profile)}
}

// Source implements Predictor.
func (p *RuleBasedPredictor) Source() Source { return SourceRuleBased }

// Predict implements Predictor.
func (p *RuleBasedPredictor) Predict(in sleep.FeatureInput) (Prediction, error) {
	return Prediction{Label: p.rule.Predict(in), Source: SourceRuleBased}, nil
}

// Breakdown exposes the weighted components of the score.
func (p *RuleBasedPredictor) Breakdown(in sleep.FeatureInput) heuristic.Breakdown {
	return p.rule.Breakdown(in)
}

// CoarseRulePredictor is the hard-threshold rule. It never fails.
type CoarseRulePredictor struct{}

// Source implements Predictor.
func (CoarseRulePredictor) Source() Source { return SourceCoarseRule }

// Predict implements Predictor.
func (CoarseRulePredictor) Predict(in sleep.FeatureInput) (Prediction, error) {
	return Prediction{Label: heuristic.CoarseRule(in), Source: SourceCoarseRule}, nil
}

// MockPredictor is the uncapped steps/calories score. It never fails.
type MockPredictor struct{}

// Source implements Predictor.
func (MockPredictor) Source() Source { return SourceMock }

// Predict implements Predictor.
func (MockPredictor) Predict(in sleep.FeatureInput) (Prediction, error) {
	return Prediction{Label: heuristic.Mock(in), Source: SourceMock}, nil
}
