package training

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sleepq/core/model"
	"github.com/YuminosukeSato/sleepq/dataset"
	"github.com/YuminosukeSato/sleepq/pkg/errors"
	"github.com/YuminosukeSato/sleepq/pkg/log"
	"github.com/YuminosukeSato/sleepq/predictor"
	"github.com/YuminosukeSato/sleepq/preprocessing"
	"github.com/YuminosukeSato/sleepq/sklearn/linear_model"
	"github.com/YuminosukeSato/sleepq/sleep"
)

// LinearResult is the output of TrainLinear.
type LinearResult struct {
	Weights *model.ModelWeights
	Report  *Report
}

// TrainLinear fits a one-vs-rest logistic regression over the drop-first
// one-hot layout with standardised inputs. Classes are ordered by name.
func TrainLinear(d *dataset.Dataset, opts ...Option) (*LinearResult, error) {
	o := newOptions(opts)
	logger := o.logger.With(log.ModelNameKey, linear_model.ModelTypeLogisticRegression, log.OperationKey, log.OperationFit)
	start := time.Now()

	train, test, err := d.Split(o.testFraction, o.seed)
	if err != nil {
		return nil, err
	}

	enc, err := preprocessing.NewOneHotEncoder(preprocessing.DefaultCategories())
	if err != nil {
		return nil, err
	}
	X := train.Encode(enc)
	scaler := preprocessing.NewStandardScaler()
	Xs, err := scaler.FitTransform(X)
	if err != nil {
		return nil, err
	}

	classes := sortedLabels(train)
	index := make(map[sleep.Label]int, len(classes))
	for i, l := range classes {
		index[l] = i
	}
	y := mat.NewVecDense(train.Len(), nil)
	for i, rec := range train.Records {
		y.SetVec(i, float64(index[rec.Quality]))
	}

	logger.Info("Fitting linear model", log.SamplesKey, train.Len(), log.FeaturesKey, len(enc.FeatureNames()))

	lrOpts := append([]linear_model.LogisticRegressionOption{
		linear_model.WithLRMultiClass(linear_model.MultiClassOVR),
		linear_model.WithLRRandomState(o.seed),
	}, o.lrOpts...)
	lr := linear_model.NewLogisticRegression(lrOpts...)
	if err := lr.Fit(Xs, y); err != nil {
		return nil, errors.Wrap(err, "fit logistic regression")
	}

	w, err := lr.ExportWeights()
	if err != nil {
		return nil, err
	}
	// Fit sees only the classes present in train; relabel by position.
	names := make([]string, len(w.Classes))
	for i, id := range lr.Classes() {
		names[i] = string(classes[id])
	}
	w.Classes = names
	w.Features = enc.FeatureNames()
	w.Scaler = &model.ScalerParams{
		Mean:  append([]float64(nil), scaler.Mean...),
		Scale: append([]float64(nil), scaler.Scale...),
	}
	cats := enc.Categories()
	w.Encoding = map[string][]string{
		preprocessing.ColumnGender:   cats.Gender,
		preprocessing.ColumnActivity: cats.Activity,
		preprocessing.ColumnDiet:     cats.Diet,
	}

	p, err := predictor.NewLinearPredictor(w)
	if err != nil {
		return nil, errors.Wrap(err, "exported weights do not round-trip")
	}
	report, err := Evaluate(p, test, sortedLabels(d))
	if err != nil {
		return nil, err
	}

	logger.Info("Linear model trained",
		log.AccuracyKey, report.Accuracy,
		"iterations", lr.NIter(),
		log.DurationMsKey, since(start),
	)
	return &LinearResult{Weights: w, Report: report}, nil
}

// SaveLinear writes the linear artifact. Paths ending in .gob are gob
// encoded, everything else JSON.
func SaveLinear(w *model.ModelWeights, path string) error {
	return model.Save(w, path)
}

func sortedLabels(d *dataset.Dataset) []sleep.Label {
	seen := make(map[sleep.Label]bool)
	var out []sleep.Label
	for _, rec := range d.Records {
		if !seen[rec.Quality] {
			seen[rec.Quality] = true
			out = append(out, rec.Quality)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
