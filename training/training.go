// Package training implements the offline batch jobs that produce the
// linear and neural artifacts consumed by the prediction cascade.
//
// Both jobs hold out a shuffled test split, fit on the rest, and report
// held-out accuracy through Evaluate.
package training

import (
	"time"

	"github.com/YuminosukeSato/sleepq/core/parallel"
	"github.com/YuminosukeSato/sleepq/dataset"
	"github.com/YuminosukeSato/sleepq/metrics"
	"github.com/YuminosukeSato/sleepq/neural"
	"github.com/YuminosukeSato/sleepq/pkg/errors"
	"github.com/YuminosukeSato/sleepq/pkg/log"
	"github.com/YuminosukeSato/sleepq/predictor"
	"github.com/YuminosukeSato/sleepq/sklearn/linear_model"
	"github.com/YuminosukeSato/sleepq/sleep"
)

const (
	// DefaultTestFraction is the held-out share of the dataset.
	DefaultTestFraction = 0.2
	// DefaultSeed seeds the split and the network initialisation.
	DefaultSeed int64 = 42

	// 逐次評価と並列評価の切り替え閾値
	parallelThreshold = 256
)

// DefaultHiddenLayers are the hidden widths of the neural job.
var DefaultHiddenLayers = []int{64, 32, 16}

type options struct {
	testFraction float64
	seed         int64
	logger       log.Logger
	hidden       []int
	lrOpts       []linear_model.LogisticRegressionOption
	nnOpts       []neural.TrainOption
}

// Option configures a training job.
type Option func(*options)

// WithTestFraction sets the held-out share.
func WithTestFraction(f float64) Option {
	return func(o *options) { o.testFraction = f }
}

// WithSeed sets the split and initialisation seed.
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = seed }
}

// WithLogger sets the job logger.
func WithLogger(l log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithHiddenLayers overrides the hidden widths of the neural job.
func WithHiddenLayers(sizes ...int) Option {
	return func(o *options) { o.hidden = append([]int(nil), sizes...) }
}

// WithLogisticOptions passes options through to the logistic regression.
func WithLogisticOptions(opts ...linear_model.LogisticRegressionOption) Option {
	return func(o *options) { o.lrOpts = append(o.lrOpts, opts...) }
}

// WithNeuralOptions passes options through to MLP.Fit.
func WithNeuralOptions(opts ...neural.TrainOption) Option {
	return func(o *options) { o.nnOpts = append(o.nnOpts, opts...) }
}

func newOptions(opts []Option) options {
	o := options{
		testFraction: DefaultTestFraction,
		seed:         DefaultSeed,
		hidden:       DefaultHiddenLayers,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.GetLogger()
	}
	return o
}

// Report summarises held-out performance.
type Report struct {
	Source    predictor.Source                    `json:"source"`
	Samples   int                                 `json:"samples"`
	Accuracy  float64                             `json:"accuracy"`
	Classes   []sleep.Label                       `json:"classes"`
	Confusion [][]float64                         `json:"confusion"`
	PerClass  map[sleep.Label]metrics.ClassReport `json:"per_class"`
}

// Evaluate predicts every record of test with p and compares the labels
// against the recorded ones. Large sets are predicted in parallel, so p must
// be safe for concurrent use.
func Evaluate(p predictor.Predictor, test *dataset.Dataset, classes []sleep.Label) (*Report, error) {
	n := test.Len()
	if n == 0 {
		return nil, errors.NewModelError("training.Evaluate", "empty data", errors.ErrEmptyData)
	}

	pred := make([]sleep.Label, n)
	err := parallel.ForEach(n, parallelThreshold, func(start, end int) error {
		for i := start; i < end; i++ {
			out, err := p.Predict(test.Records[i].Input)
			if err != nil {
				return errors.Wrapf(err, "record %d", i)
			}
			pred[i] = out.Label
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	truth := test.Qualities()
	acc, err := metrics.Accuracy(truth, pred)
	if err != nil {
		return nil, err
	}
	cm, err := metrics.ConfusionMatrix(truth, pred, classes)
	if err != nil {
		return nil, err
	}
	per, err := metrics.Report(truth, pred, classes)
	if err != nil {
		return nil, err
	}

	k := len(classes)
	confusion := make([][]float64, k)
	for i := range confusion {
		confusion[i] = append([]float64(nil), cm.RawRowView(i)...)
	}
	return &Report{
		Source:    p.Source(),
		Samples:   n,
		Accuracy:  acc,
		Classes:   append([]sleep.Label(nil), classes...),
		Confusion: confusion,
		PerClass:  per,
	}, nil
}

func since(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
