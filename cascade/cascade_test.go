package cascade

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/sleepq/heuristic"
	"github.com/YuminosukeSato/sleepq/pkg/errors"
	"github.com/YuminosukeSato/sleepq/pkg/log"
	"github.com/YuminosukeSato/sleepq/predictor"
	"github.com/YuminosukeSato/sleepq/sleep"
)

const linearJSON = `{
  "model_type": "LogisticRegression",
  "version": "1.0.0",
  "features": ["Age", "Gender_Male", "Daily Steps", "Calories Burned",
    "Physical Activity Level_Moderate", "Physical Activity Level_High",
    "Dietary Habits_Average", "Dietary Habits_Healthy"],
  "classes": ["Excellent", "Fair", "Good", "Poor"],
  "coef_matrix": [[0,0,0,0,0,0,0,0],[0,0,0,0,0,0,0,0],[0,0,0,0,0,0,0,0],[0,0,0,0,0,0,0,0]],
  "intercepts": [0, 2, 0, 0],
  "is_fitted": true
}`

const neuralJSON = `{
  "model_type": "MLP",
  "version": "1.0.0",
  "layers": [
    {"weights": [[0,0,0,0,0,0],[0,0,0,0,0,0],[0,0,0,0,0,0],[0,0,0,0,0,0]], "bias": [0,0,3,0], "activation": "softmax"}
  ]
}`

const encodersJSON = `{
  "gender_map": {"Male": 0, "Female": 1},
  "activity_map": {"Low": 0, "Moderate": 1, "High": 2},
  "diet_map": {"Poor": 0, "Average": 1, "Healthy": 2},
  "sleep_map": {"Good": 0, "Poor": 1, "Excellent": 2, "Fair": 3}
}`

func sampleInput() sleep.FeatureInput {
	return sleep.FeatureInput{
		Age:            30,
		Gender:         sleep.Male,
		DailySteps:     5000,
		CaloriesBurned: 2000,
		ActivityLevel:  sleep.ActivityModerate,
		DietaryHabits:  sleep.DietHealthy,
	}
}

type fixture struct {
	dir       string
	artifacts Artifacts
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	return &fixture{
		dir: dir,
		artifacts: Artifacts{
			Linear:   filepath.Join(dir, "sleep_model.json"),
			Neural:   filepath.Join(dir, "sleep_nn_model.json"),
			Encoders: filepath.Join(dir, "encoders.json"),
			Averages: filepath.Join(dir, "sleep_quality_avg_values.csv"),
		},
	}
}

func (f *fixture) write(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func testLogger() (*log.TestLogger, func() string) {
	logger, buf := log.NewTestLogger(log.LevelDebug)
	return logger, buf.String
}

func TestFull_NoArtifactsFallsBackToRules(t *testing.T) {
	f := newFixture(t)
	logger, _ := testLogger()
	c, err := NewFromProfile(ProfileFull, f.artifacts, WithLogger(logger))
	require.NoError(t, err)
	assert.Equal(t, []predictor.Source{predictor.SourceNeural, predictor.SourceLinear, predictor.SourceRuleBased}, c.Sources())

	out, err := c.PredictWithFallback(sampleInput())
	require.NoError(t, err)
	assert.Equal(t, predictor.SourceRuleBased, out.Source)
	assert.Equal(t, sleep.Good, out.Label)
	assert.Nil(t, out.Confidence)
	assert.Equal(t, "7-9 hours", out.Suggestions.SleepHours)
	assert.Len(t, out.Recommendations, 3)

	require.Len(t, out.Notices, 2)
	assert.Equal(t, predictor.SourceNeural, out.Notices[0].Source)
	assert.Equal(t, "ArtifactMissing", out.Notices[0].Kind)
	assert.Equal(t, predictor.SourceLinear, out.Notices[1].Source)
	assert.True(t, out.Degraded())

	assert.True(t, logger.ContainsNotice(string(predictor.SourceNeural), "ArtifactMissing"))
	assert.True(t, logger.ContainsNotice(string(predictor.SourceLinear), "ArtifactMissing"))
	assert.Equal(t, []string{string(predictor.SourceRuleBased)}, logger.Sources())
}

func TestFull_CorruptNeuralDegradesToLinear(t *testing.T) {
	f := newFixture(t)
	f.write(t, f.artifacts.Neural, "this is not a model")
	f.write(t, f.artifacts.Encoders, encodersJSON)
	f.write(t, f.artifacts.Linear, linearJSON)

	logger, logs := testLogger()
	c, err := NewFromProfile(ProfileFull, f.artifacts, WithLogger(logger))
	require.NoError(t, err)

	out, err := c.PredictWithFallback(sampleInput())
	require.NoError(t, err)
	assert.Equal(t, predictor.SourceLinear, out.Source)
	assert.Equal(t, sleep.Fair, out.Label)
	assert.InDelta(t, 1.0, out.Confidence.Sum(), 1e-9)
	assert.Empty(t, out.Recommendations)

	require.Len(t, out.Notices, 1)
	n := out.Notices[0]
	assert.Equal(t, predictor.SourceNeural, n.Source)
	assert.Equal(t, "ArtifactCorrupt", n.Kind)
	assert.Contains(t, n.Detail, "neural")
	assert.Contains(t, n.Message, "using simpler method")
	assert.Contains(t, logs(), "degrading")
}

func TestFull_AllArtifactsUsesNeural(t *testing.T) {
	f := newFixture(t)
	f.write(t, f.artifacts.Neural, neuralJSON)
	f.write(t, f.artifacts.Encoders, encodersJSON)
	f.write(t, f.artifacts.Linear, linearJSON)

	logger, _ := testLogger()
	c, err := NewFromProfile(ProfileFull, f.artifacts, WithLogger(logger))
	require.NoError(t, err)

	out, err := c.PredictWithFallback(sampleInput())
	require.NoError(t, err)
	assert.Equal(t, predictor.SourceNeural, out.Source)
	assert.Equal(t, sleep.Excellent, out.Label)
	assert.Empty(t, out.Notices)
	assert.Empty(t, out.Coarse)

	best, _ := out.Confidence.Argmax()
	assert.Equal(t, out.Label, best)
	assert.InDelta(t, out.Confidence[sleep.Excellent]*100, out.ConfidencePercent, 1e-9)
}

func TestFull_UsesPersistedAverages(t *testing.T) {
	f := newFixture(t)
	// a demanding reference pushes the sample input down to Fair
	f.write(t, f.artifacts.Averages, "Sleep Quality,Age,Daily Steps,Calories Burned\nExcellent,30,20000,6000\n")

	logger, _ := testLogger()
	c, err := NewFromProfile(ProfileFull, f.artifacts, WithLogger(logger))
	require.NoError(t, err)

	out, err := c.PredictWithFallback(sampleInput())
	require.NoError(t, err)
	assert.Equal(t, predictor.SourceRuleBased, out.Source)
	assert.Equal(t, sleep.Fair, out.Label)
}

func TestFull_SuppliedAveragesSkipFile(t *testing.T) {
	f := newFixture(t)
	f.write(t, f.artifacts.Averages, "Sleep Quality,Age,Daily Steps,Calories Burned\nExcellent,30,20000,6000\n")

	logger, _ := testLogger()
	c, err := NewFromProfile(ProfileFull, f.artifacts, WithLogger(logger), WithAverages(heuristic.DefaultProfile()))
	require.NoError(t, err)

	out, err := c.PredictWithFallback(sampleInput())
	require.NoError(t, err)
	assert.Equal(t, predictor.SourceRuleBased, out.Source)
	assert.Equal(t, sleep.Good, out.Label)
}

func TestFull_ArtifactWrittenLaterIsPickedUp(t *testing.T) {
	f := newFixture(t)
	logger, _ := testLogger()
	c, err := NewFromProfile(ProfileFull, f.artifacts, WithLogger(logger))
	require.NoError(t, err)

	out, err := c.PredictWithFallback(sampleInput())
	require.NoError(t, err)
	assert.Equal(t, predictor.SourceRuleBased, out.Source)

	f.write(t, f.artifacts.Linear, linearJSON)
	out, err = c.PredictWithFallback(sampleInput())
	require.NoError(t, err)
	assert.Equal(t, predictor.SourceLinear, out.Source)
}

func TestSimpleProfile(t *testing.T) {
	f := newFixture(t)
	logger, _ := testLogger()
	c, err := NewFromProfile(ProfileSimple, f.artifacts, WithLogger(logger))
	require.NoError(t, err)

	out, err := c.PredictWithFallback(sampleInput())
	require.NoError(t, err)
	assert.Equal(t, predictor.SourceMock, out.Source)
	assert.Equal(t, sleep.Fair, out.Label)
	require.Len(t, out.Notices, 1)
	assert.Equal(t, predictor.SourceLinear, out.Notices[0].Source)
}

func TestCoarseProfile(t *testing.T) {
	f := newFixture(t)
	logger, _ := testLogger()
	c, err := NewFromProfile(ProfileCoarse, f.artifacts, WithLogger(logger))
	require.NoError(t, err)

	in := sampleInput()
	in.DailySteps, in.CaloriesBurned = 9000, 2600
	out, err := c.PredictWithFallback(in)
	require.NoError(t, err)
	assert.Equal(t, predictor.SourceCoarseRule, out.Source)
	assert.Equal(t, sleep.Good, out.Label)
	assert.Equal(t, sleep.CoarseGood, out.Coarse)

	in.DietaryHabits = sleep.DietAverage
	out, err = c.PredictWithFallback(in)
	require.NoError(t, err)
	assert.Equal(t, sleep.Fair, out.Label)
	assert.Equal(t, sleep.CoarseBad, out.Coarse)

	f.write(t, f.artifacts.Neural, neuralJSON)
	f.write(t, f.artifacts.Encoders, encodersJSON)
	out, err = c.PredictWithFallback(in)
	require.NoError(t, err)
	assert.Equal(t, predictor.SourceNeural, out.Source)
	assert.Equal(t, sleep.CoarseGood, out.Coarse)
}

func TestPredictWithFallback_InvalidInput(t *testing.T) {
	calls := 0
	tier := predictor.NewLazy(predictor.SourceLinear, func() (predictor.Predictor, error) {
		calls++
		return predictor.MockPredictor{}, nil
	}, nil)
	c, err := New([]*predictor.Lazy{tier})
	require.NoError(t, err)

	in := sampleInput()
	in.Age = 5
	_, err = c.PredictWithFallback(in)
	require.Error(t, err)
	assert.Equal(t, errors.KindInvalidInput, errors.Kind(err))
	assert.Zero(t, calls)
}

// stub is a predictor with a scripted result.
type stub struct {
	source predictor.Source
	err    error
	label  sleep.Label
	calls  *int
	panics bool
}

func (s stub) Source() predictor.Source { return s.source }

func (s stub) Predict(sleep.FeatureInput) (predictor.Prediction, error) {
	*s.calls++
	if s.panics {
		var v []float64
		_ = v[3]
	}
	if s.err != nil {
		return predictor.Prediction{}, s.err
	}
	return predictor.Prediction{Label: s.label, Source: s.source}, nil
}

func TestPredictWithFallback_InferenceFailureDegrades(t *testing.T) {
	var first, second, third int
	c, err := New([]*predictor.Lazy{
		predictor.Static(stub{source: predictor.SourceNeural, calls: &first, panics: true}),
		predictor.Static(stub{source: predictor.SourceLinear, calls: &second, err: errors.NewInferenceFailureError("linear", errors.New("shape"))}),
		predictor.Static(stub{source: predictor.SourceRuleBased, calls: &third, label: sleep.Poor}),
	})
	require.NoError(t, err)

	out, err := c.PredictWithFallback(sampleInput())
	require.NoError(t, err)
	assert.Equal(t, predictor.SourceRuleBased, out.Source)
	assert.Equal(t, sleep.Poor, out.Label)
	require.Len(t, out.Notices, 2)
	assert.Equal(t, "InferenceFailure", out.Notices[0].Kind)
	assert.Equal(t, "InferenceFailure", out.Notices[1].Kind)
	assert.Equal(t, []int{1, 1, 1}, []int{first, second, third})
}

func TestPredictWithFallback_PanickingTierDegradesToMock(t *testing.T) {
	var calls int
	logger, _ := testLogger()
	c, err := New([]*predictor.Lazy{
		predictor.Static(stub{source: predictor.SourceLinear, calls: &calls, panics: true}),
		predictor.Static(predictor.MockPredictor{}),
	}, WithLogger(logger))
	require.NoError(t, err)

	var out Outcome
	require.NotPanics(t, func() {
		out, err = c.PredictWithFallback(sampleInput())
	})
	require.NoError(t, err)
	assert.Equal(t, predictor.SourceMock, out.Source)
	require.Len(t, out.Notices, 1)
	assert.Equal(t, predictor.SourceLinear, out.Notices[0].Source)
	assert.Equal(t, "InferenceFailure", out.Notices[0].Kind)
	assert.Contains(t, out.Notices[0].Detail, "index out of range")
	assert.Equal(t, 1, calls)
	assert.True(t, logger.ContainsNotice(string(predictor.SourceLinear), "InferenceFailure"))
	assert.Equal(t, []string{string(predictor.SourceMock)}, logger.Sources())
}

func TestPredictWithFallback_FirstSuccessWins(t *testing.T) {
	var first, second int
	c, err := New([]*predictor.Lazy{
		predictor.Static(stub{source: predictor.SourceLinear, calls: &first, label: sleep.Excellent}),
		predictor.Static(stub{source: predictor.SourceRuleBased, calls: &second, label: sleep.Poor}),
	})
	require.NoError(t, err)

	out, err := c.PredictWithFallback(sampleInput())
	require.NoError(t, err)
	assert.Equal(t, sleep.Excellent, out.Label)
	assert.Equal(t, 1, first)
	assert.Zero(t, second)
}

func TestPredictWithFallback_InvalidInputFromTierStops(t *testing.T) {
	var first, second int
	c, err := New([]*predictor.Lazy{
		predictor.Static(stub{source: predictor.SourceLinear, calls: &first, err: errors.NewInvalidInputError("age", "bad", 0)}),
		predictor.Static(stub{source: predictor.SourceRuleBased, calls: &second, label: sleep.Poor}),
	})
	require.NoError(t, err)

	_, err = c.PredictWithFallback(sampleInput())
	assert.Equal(t, errors.KindInvalidInput, errors.Kind(err))
	assert.Zero(t, second)
}

func TestPredictWithFallback_Exhausted(t *testing.T) {
	var calls int
	logger, logs := testLogger()
	c, err := New([]*predictor.Lazy{
		predictor.Static(stub{source: predictor.SourceMock, calls: &calls, err: errors.New("boom")}),
	}, WithLogger(logger))
	require.NoError(t, err)

	out, err := c.PredictWithFallback(sampleInput())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCascadeExhausted))
	require.Len(t, out.Notices, 1)
	assert.Equal(t, "InferenceFailure", out.Notices[0].Kind)
	assert.True(t, strings.Contains(logs(), "Every predictor tier failed"))
}

func TestNew_Errors(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	_, err = NewFromProfile("weird", Artifacts{})
	assert.Error(t, err)
}

func TestParseProfile(t *testing.T) {
	for _, p := range Profiles {
		got, err := ParseProfile(strings.ToUpper(string(p)))
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
	_, err := ParseProfile("fancy")
	assert.Error(t, err)
}
