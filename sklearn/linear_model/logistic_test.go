package linear_model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sleepq/pkg/errors"
)

// threeBlobs returns linearly separable data around (0,0), (4,0) and (0,4).
func threeBlobs() (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(9, 2, []float64{
		0.0, 0.2,
		0.3, -0.1,
		-0.2, 0.1,
		4.0, 0.1,
		4.2, -0.2,
		3.8, 0.3,
		0.1, 4.0,
		-0.3, 4.1,
		0.2, 3.9,
	})
	y := mat.NewDense(9, 1, []float64{0, 0, 0, 1, 1, 1, 2, 2, 2})
	return X, y
}

func TestLogisticRegression_FitPredict_Binary(t *testing.T) {
	// Class 0 around (1, 1), class 1 around (3, 3)
	X := mat.NewDense(6, 2, []float64{
		0.5, 0.5,
		1.0, 1.5,
		1.5, 1.0,
		3.0, 2.5,
		2.5, 3.0,
		3.5, 3.5,
	})
	y := mat.NewDense(6, 1, []float64{0, 0, 0, 1, 1, 1})

	lr := NewLogisticRegression(WithLRMaxIter(2000), WithLRRandomState(42), WithLRLearningRate(0.1))
	require.NoError(t, lr.Fit(X, y))

	preds, err := lr.Predict(mat.NewDense(2, 2, []float64{1, 1, 3, 3}))
	require.NoError(t, err)
	assert.Equal(t, 0.0, preds.At(0, 0))
	assert.Equal(t, 1.0, preds.At(1, 0))
}

func TestLogisticRegression_Multiclass(t *testing.T) {
	for _, strategy := range []string{MultiClassMultinomial, MultiClassOVR} {
		t.Run(strategy, func(t *testing.T) {
			X, y := threeBlobs()
			lr := NewLogisticRegression(
				WithLRMultiClass(strategy),
				WithLRMaxIter(2000),
				WithLRRandomState(42),
				WithLRLearningRate(0.1),
			)
			require.NoError(t, lr.Fit(X, y))
			assert.Equal(t, []int{0, 1, 2}, lr.Classes())

			score, err := lr.Score(X, y)
			require.NoError(t, err)
			assert.Equal(t, 1.0, score)
		})
	}
}

func TestLogisticRegression_PredictProba(t *testing.T) {
	for _, strategy := range []string{MultiClassMultinomial, MultiClassOVR} {
		t.Run(strategy, func(t *testing.T) {
			X, y := threeBlobs()
			lr := NewLogisticRegression(WithLRMultiClass(strategy), WithLRMaxIter(1000), WithLRRandomState(1), WithLRLearningRate(0.1))
			require.NoError(t, lr.Fit(X, y))

			probas, err := lr.PredictProba(X)
			require.NoError(t, err)
			preds, err := lr.Predict(X)
			require.NoError(t, err)

			rows, cols := probas.Dims()
			require.Equal(t, 9, rows)
			require.Equal(t, 3, cols)
			for i := 0; i < rows; i++ {
				row := mat.Row(nil, i, probas)
				sum := 0.0
				best := 0
				for c, p := range row {
					assert.GreaterOrEqual(t, p, 0.0)
					assert.LessOrEqual(t, p, 1.0)
					sum += p
					if p > row[best] {
						best = c
					}
				}
				assert.InDelta(t, 1.0, sum, 1e-9)
				assert.Equal(t, float64(best), preds.At(i, 0), "sample %d", i)
			}
		})
	}
}

func TestLogisticRegression_Regularization(t *testing.T) {
	X, y := threeBlobs()

	weak := NewLogisticRegression(WithLRC(100), WithLRMaxIter(500), WithLRRandomState(7), WithLRLearningRate(0.1))
	strong := NewLogisticRegression(WithLRC(0.5), WithLRMaxIter(500), WithLRRandomState(7), WithLRLearningRate(0.1))
	require.NoError(t, weak.Fit(X, y))
	require.NoError(t, strong.Fit(X, y))

	wWeak, err := weak.ExportWeights()
	require.NoError(t, err)
	wStrong, err := strong.ExportWeights()
	require.NoError(t, err)

	norm := func(rows [][]float64) float64 {
		s := 0.0
		for _, r := range rows {
			for _, v := range r {
				s += v * v
			}
		}
		return s
	}
	assert.Less(t, norm(wStrong.CoefMatrix), norm(wWeak.CoefMatrix))
}

func TestLogisticRegression_Errors(t *testing.T) {
	lr := NewLogisticRegression()

	_, err := lr.Predict(mat.NewDense(1, 2, nil))
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))

	err = lr.Fit(mat.NewDense(3, 2, nil), mat.NewDense(2, 1, nil))
	var de *errors.DimensionError
	assert.True(t, errors.As(err, &de))

	err = lr.Fit(mat.NewDense(2, 1, []float64{1, 2}), mat.NewDense(2, 1, []float64{1, 1}))
	var ve *errors.ValueError
	assert.True(t, errors.As(err, &ve))

	X, y := threeBlobs()
	require.NoError(t, lr.Fit(X, y))
	_, err = lr.PredictProba(mat.NewDense(1, 3, nil))
	assert.True(t, errors.As(err, &de))
}

func TestLogisticRegression_ExportImportWeights(t *testing.T) {
	X, y := threeBlobs()
	lr := NewLogisticRegression(WithLRMultiClass(MultiClassOVR), WithLRMaxIter(800), WithLRRandomState(3), WithLRLearningRate(0.1))
	require.NoError(t, lr.Fit(X, y))

	w, err := lr.ExportWeights()
	require.NoError(t, err)
	assert.Equal(t, ModelTypeLogisticRegression, w.ModelType)
	assert.Equal(t, []string{"0", "1", "2"}, w.Classes)
	require.NoError(t, w.Validate())

	restored := NewLogisticRegression()
	require.NoError(t, restored.ImportWeights(w))

	want, err := lr.PredictProba(X)
	require.NoError(t, err)
	got, err := restored.PredictProba(X)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(want, got, 1e-12))

	w.ModelType = "MLP"
	assert.Error(t, NewLogisticRegression().ImportWeights(w))
}

func TestLogisticRegression_Params(t *testing.T) {
	lr := NewLogisticRegression()
	require.NoError(t, lr.SetParams(map[string]interface{}{"C": 2.5, "max_iter": 10}))
	assert.Equal(t, 2.5, lr.GetParams()["C"])
	assert.Equal(t, 10, lr.GetParams()["max_iter"])

	assert.Error(t, lr.SetParams(map[string]interface{}{"C": "high"}))
	assert.Error(t, lr.SetParams(map[string]interface{}{"solver": "lbfgs"}))
}
