// Package predictor defines the prediction capability shared by every tier of
// the cascade, and its implementations: the trained linear and neural
// classifiers and the artifact-free rule predictors.
package predictor

import (
	"github.com/YuminosukeSato/sleepq/sleep"
)

// Source identifies which predictor produced a label.
type Source string

// Sources, most to least capable.
const (
	SourceNeural     Source = "neural"
	SourceLinear     Source = "linear"
	SourceRuleBased  Source = "rule_based"
	SourceCoarseRule Source = "coarse_rule"
	SourceMock       Source = "mock"
)

// Artifact names used in errors and logs.
const (
	ArtifactLinear   = "linear"
	ArtifactNeural   = "neural"
	ArtifactEncoders = "encoders"
)

// Prediction is the result of one predictor call.
type Prediction struct {
	Label  sleep.Label
	Source Source
	// Confidence is nil for the rule predictors.
	Confidence sleep.Confidence
}

// ConfidencePercent returns p(Label) * 100, or 0 without a distribution.
func (p Prediction) ConfidencePercent() float64 {
	if p.Confidence == nil {
		return 0
	}
	return p.Confidence.Percent(p.Label)
}

// Predictor maps a feature tuple to a label. Implementations encode the
// tuple into their own input layout. Errors are InferenceFailure.
type Predictor interface {
	Source() Source
	Predict(in sleep.FeatureInput) (Prediction, error)
}
