package training

import (
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/sleepq/dataset"
	"github.com/YuminosukeSato/sleepq/neural"
	"github.com/YuminosukeSato/sleepq/pkg/errors"
	"github.com/YuminosukeSato/sleepq/pkg/log"
	"github.com/YuminosukeSato/sleepq/predictor"
	"github.com/YuminosukeSato/sleepq/sklearn/linear_model"
	"github.com/YuminosukeSato/sleepq/sleep"
)

// separable returns active Excellent sleepers and sedentary Poor sleepers.
func separable(n int) *dataset.Dataset {
	rng := rand.New(rand.NewSource(7))
	d := &dataset.Dataset{}
	genders := []sleep.Gender{sleep.Male, sleep.Female}
	for i := 0; i < n; i++ {
		in := sleep.FeatureInput{
			Age:    20 + rng.Intn(40),
			Gender: genders[i%2],
		}
		var q sleep.Label
		if i%2 == 0 {
			in.DailySteps = 10000 + rng.Intn(3000)
			in.CaloriesBurned = 2900 + rng.Intn(400)
			in.ActivityLevel = sleep.ActivityHigh
			in.DietaryHabits = sleep.DietHealthy
			q = sleep.Excellent
		} else {
			in.DailySteps = 2000 + rng.Intn(2000)
			in.CaloriesBurned = 1500 + rng.Intn(400)
			in.ActivityLevel = sleep.ActivityLow
			in.DietaryHabits = sleep.DietPoor
			q = sleep.Poor
		}
		d.Records = append(d.Records, dataset.Record{Input: in, Quality: q})
	}
	return d
}

func TestTrainLinear(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelInfo)
	d := separable(200)

	res, err := TrainLinear(d,
		WithLogger(logger),
		WithLogisticOptions(linear_model.WithLRLearningRate(0.1), linear_model.WithLRMaxIter(300)),
	)
	require.NoError(t, err)

	w := res.Weights
	assert.Equal(t, []string{"Excellent", "Poor"}, w.Classes)
	assert.Len(t, w.Features, 8)
	require.NotNil(t, w.Scaler)
	assert.Len(t, w.Scaler.Mean, 8)
	assert.Equal(t, []string{"Female", "Male"}, w.Encoding["Gender"])

	assert.Equal(t, 40, res.Report.Samples)
	assert.Equal(t, predictor.SourceLinear, res.Report.Source)
	assert.Greater(t, res.Report.Accuracy, 0.9)
	assert.True(t, logger.ContainsMessage("Linear model trained"))

	path := filepath.Join(t.TempDir(), "models", "sleep_model.json")
	require.NoError(t, SaveLinear(w, path))
	p, err := predictor.LoadLinear(path)
	require.NoError(t, err)

	out, err := p.Predict(sleep.FeatureInput{
		Age: 30, Gender: sleep.Male, DailySteps: 12000, CaloriesBurned: 3100,
		ActivityLevel: sleep.ActivityHigh, DietaryHabits: sleep.DietHealthy,
	})
	require.NoError(t, err)
	assert.Equal(t, sleep.Excellent, out.Label)
}

func TestTrainNeural(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelInfo)
	d := separable(200)

	res, err := TrainNeural(d,
		WithLogger(logger),
		WithHiddenLayers(16, 8),
		WithNeuralOptions(neural.WithEpochs(60), neural.WithLearningRate(0.01), neural.WithBatchSize(16)),
	)
	require.NoError(t, err)

	assert.Equal(t, []int{6, 16, 8, 2}, res.Net.Sizes())
	assert.Equal(t, map[string]int{"Excellent": 0, "Poor": 1}, res.Encoders.SleepMap)
	assert.Len(t, res.History.Loss, 60)
	assert.Less(t, res.History.Loss[59], res.History.Loss[0])
	assert.Greater(t, res.Report.Accuracy, 0.8)

	dir := t.TempDir()
	weights := filepath.Join(dir, "sleep_nn_model.json")
	encoders := filepath.Join(dir, "encoders.json")
	require.NoError(t, SaveNeural(res, weights, encoders))

	p, err := predictor.LoadNeural(weights, encoders)
	require.NoError(t, err)
	assert.Equal(t, []sleep.Label{sleep.Excellent, sleep.Poor}, p.Classes())
}

func TestFitEncoderMap(t *testing.T) {
	d := &dataset.Dataset{Records: []dataset.Record{
		{Input: sleep.FeatureInput{Gender: sleep.Male, ActivityLevel: sleep.ActivityLow, DietaryHabits: sleep.DietPoor}, Quality: sleep.Good},
		{Input: sleep.FeatureInput{Gender: sleep.Female, ActivityLevel: sleep.ActivityHigh, DietaryHabits: sleep.DietPoor}, Quality: sleep.Poor},
		{Input: sleep.FeatureInput{Gender: sleep.Male, ActivityLevel: sleep.ActivityModerate, DietaryHabits: sleep.DietHealthy}, Quality: sleep.Good},
	}}

	m := FitEncoderMap(d)
	assert.Equal(t, map[string]int{"Male": 0, "Female": 1}, m.GenderMap)
	assert.Equal(t, map[string]int{"Low": 0, "High": 1, "Moderate": 2}, m.ActivityMap)
	assert.Equal(t, map[string]int{"Poor": 0, "Healthy": 1}, m.DietMap)
	assert.Equal(t, map[string]int{"Good": 0, "Poor": 1}, m.SleepMap)
	assert.NoError(t, m.Validate())
}

type fixedPredictor struct {
	label sleep.Label
	err   error
}

func (f fixedPredictor) Source() predictor.Source { return predictor.SourceMock }

func (f fixedPredictor) Predict(sleep.FeatureInput) (predictor.Prediction, error) {
	return predictor.Prediction{Label: f.label, Source: predictor.SourceMock}, f.err
}

func TestEvaluate(t *testing.T) {
	d := separable(300)
	classes := []sleep.Label{sleep.Excellent, sleep.Poor}

	rep, err := Evaluate(fixedPredictor{label: sleep.Excellent}, d, classes)
	require.NoError(t, err)
	assert.Equal(t, 300, rep.Samples)
	assert.InDelta(t, 0.5, rep.Accuracy, 1e-12)
	assert.Equal(t, [][]float64{{150, 0}, {150, 0}}, rep.Confusion)
	assert.InDelta(t, 1.0, rep.PerClass[sleep.Excellent].Recall, 1e-12)

	_, err = Evaluate(fixedPredictor{err: errors.New("boom")}, d, classes)
	assert.Error(t, err)

	_, err = Evaluate(fixedPredictor{}, &dataset.Dataset{}, classes)
	assert.True(t, errors.Is(err, errors.ErrEmptyData))
}

func TestPlotLoss(t *testing.T) {
	h := &neural.History{Loss: []float64{1.2, 0.8, 0.5}, Accuracy: []float64{0.4, 0.7, 0.9}}

	path := filepath.Join(t.TempDir(), "loss.png")
	require.NoError(t, PlotLoss(h, path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	var buf bytes.Buffer
	require.NoError(t, WritePlot(h, &buf, "svg"))
	assert.Contains(t, buf.String(), "<svg")

	assert.Error(t, PlotLoss(&neural.History{}, path))
}
