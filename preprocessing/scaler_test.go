package preprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sleepq/pkg/errors"
)

func TestStandardScaler_FitTransform(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 10,
		2, 10,
		3, 10,
		4, 10,
	})

	s := NewStandardScaler()
	assert.False(t, s.IsFitted())

	out, err := s.FitTransform(X)
	require.NoError(t, err)
	assert.True(t, s.IsFitted())

	assert.InDelta(t, 2.5, s.Mean[0], 1e-12)
	assert.InDelta(t, 1.118033988749895, s.Scale[0], 1e-12)
	// constant column keeps unit scale
	assert.Equal(t, 1.0, s.Scale[1])

	col := mat.Col(nil, 0, out)
	var sum float64
	for _, v := range col {
		sum += v
	}
	assert.InDelta(t, 0, sum, 1e-12)
	assert.Equal(t, 0.0, out.At(2, 1))
}

func TestStandardScaler_TransformVector(t *testing.T) {
	s, err := NewStandardScalerFromParams([]float64{10, 0}, []float64{2, 4})
	require.NoError(t, err)

	got, err := s.TransformVector([]float64{14, -8})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, -2}, got)

	_, err = s.TransformVector([]float64{1})
	var de *errors.DimensionError
	assert.True(t, errors.As(err, &de))
}

func TestStandardScaler_NotFitted(t *testing.T) {
	s := NewStandardScaler()
	_, err := s.Transform(mat.NewDense(1, 1, []float64{1}))
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))

	_, err = s.TransformVector([]float64{1})
	assert.True(t, errors.As(err, &nf))
}

func TestNewStandardScalerFromParams_Invalid(t *testing.T) {
	_, err := NewStandardScalerFromParams([]float64{1, 2}, []float64{1})
	assert.Error(t, err)

	_, err = NewStandardScalerFromParams([]float64{1}, []float64{0})
	assert.Error(t, err)

	_, err = NewStandardScalerFromParams(nil, nil)
	assert.Error(t, err)
}
