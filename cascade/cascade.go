// Package cascade resolves a prediction by trying predictors in priority
// order and degrading to the next tier when one cannot be loaded or fails.
//
// At most one predictor answers each call. Degradation only moves down the
// list; a tier that failed is never retried within the same call.
package cascade

import (
	"fmt"

	"github.com/YuminosukeSato/sleepq/pkg/errors"
	"github.com/YuminosukeSato/sleepq/pkg/log"
	"github.com/YuminosukeSato/sleepq/predictor"
	"github.com/YuminosukeSato/sleepq/sleep"
	"github.com/YuminosukeSato/sleepq/suggestion"
)

// Notice records a tier that was skipped.
type Notice struct {
	Source  predictor.Source `json:"source" yaml:"source"`
	Kind    string           `json:"kind" yaml:"kind"`
	Message string           `json:"message" yaml:"message"`
	Detail  string           `json:"detail" yaml:"detail"`
}

// Outcome is everything the presentation layer needs for one request.
type Outcome struct {
	Label             sleep.Label           `json:"label" yaml:"label"`
	Coarse            sleep.CoarseLabel     `json:"coarse,omitempty" yaml:"coarse,omitempty"`
	Source            predictor.Source      `json:"source" yaml:"source"`
	Confidence        sleep.Confidence      `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	ConfidencePercent float64               `json:"confidence_percent,omitempty" yaml:"confidence_percent,omitempty"`
	Suggestions       suggestion.Suggestion `json:"suggestions" yaml:"suggestions"`
	Recommendations   []string              `json:"recommendations,omitempty" yaml:"recommendations,omitempty"`
	Notices           []Notice              `json:"notices,omitempty" yaml:"notices,omitempty"`
}

// Degraded reports whether a higher tier was skipped.
func (o Outcome) Degraded() bool {
	return len(o.Notices) > 0
}

// Cascade is an ordered list of predictor tiers.
type Cascade struct {
	tiers  []*predictor.Lazy
	coarse bool
	logger log.Logger
}

// New builds a cascade over tiers, most capable first. The last tier should
// be artifact-free; if it fails anyway PredictWithFallback returns
// ErrCascadeExhausted.
func New(tiers []*predictor.Lazy, opts ...Option) (*Cascade, error) {
	if len(tiers) == 0 {
		return nil, errors.NewValueError("cascade.New", "at least one tier is required")
	}
	cfg := newConfig(opts)
	return &Cascade{
		tiers:  tiers,
		coarse: cfg.coarse,
		logger: cfg.logger.With(log.ComponentKey, "cascade"),
	}, nil
}

// Sources returns the tier order.
func (c *Cascade) Sources() []predictor.Source {
	out := make([]predictor.Source, len(c.tiers))
	for i, t := range c.tiers {
		out[i] = t.Source()
	}
	return out
}

// PredictWithFallback validates in and returns the answer of the first tier
// that both loads and predicts. Load and inference failures become notices.
// InvalidInput is returned to the caller without trying any tier.
func (c *Cascade) PredictWithFallback(in sleep.FeatureInput) (Outcome, error) {
	if err := in.Validate(); err != nil {
		return Outcome{}, err
	}

	var notices []Notice
	for _, tier := range c.tiers {
		logger := c.logger.With(log.TierKey, string(tier.Source()))

		p, err := tier.Get()
		if err != nil {
			notices = append(notices, c.degrade(logger, tier.Source(), "load", err))
			continue
		}

		pred, err := predict(p, in)
		if err != nil {
			if errors.Kind(err) == errors.KindInvalidInput {
				return Outcome{}, err
			}
			notices = append(notices, c.degrade(logger, tier.Source(), "predict", err))
			continue
		}

		out := c.outcome(pred, notices)
		logger.Info("Prediction resolved",
			log.SourceKey, string(out.Source),
			log.LabelKey, string(out.Label),
			log.ConfidenceKey, out.ConfidencePercent,
			"notices", len(notices),
		)
		return out, nil
	}

	c.logger.Error("Every predictor tier failed", "tiers", len(c.tiers))
	return Outcome{Notices: notices}, errors.Wrapf(errors.ErrCascadeExhausted, "%d tiers tried", len(c.tiers))
}

// predict runs p and reports a panic inside it as an error.
func predict(p predictor.Predictor, in sleep.FeatureInput) (pred predictor.Prediction, err error) {
	defer errors.Recover(&err, string(p.Source())+".Predict")
	return p.Predict(in)
}

func (c *Cascade) degrade(logger log.Logger, source predictor.Source, stage string, err error) Notice {
	kind := errors.Kind(err)
	if kind == errors.KindUnknown {
		kind = errors.KindInferenceFailure
	}
	logger.Warn("Predictor tier unavailable, degrading",
		log.OperationKey, stage,
		log.ErrorKindKey, kind.String(),
		log.ErrorKey, err,
	)
	return Notice{
		Source:  source,
		Kind:    kind.String(),
		Message: fmt.Sprintf("%s model unavailable, using simpler method", source),
		Detail:  err.Error(),
	}
}

func (c *Cascade) outcome(pred predictor.Prediction, notices []Notice) Outcome {
	out := Outcome{
		Label:             pred.Label,
		Source:            pred.Source,
		Confidence:        pred.Confidence,
		ConfidencePercent: pred.ConfidencePercent(),
		Suggestions:       suggestion.For(pred.Label),
		Notices:           notices,
	}
	if c.coarse {
		out.Coarse = sleep.Coarsen(pred.Label)
	}
	if pred.Confidence == nil {
		out.Recommendations = suggestion.General()
	}
	return out
}
