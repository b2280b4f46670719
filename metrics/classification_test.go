package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/sleepq/sleep"
)

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   []int
		yPred   []int
		want    float64
		wantErr bool
	}{
		{name: "perfect", yTrue: []int{0, 1, 2}, yPred: []int{0, 1, 2}, want: 1},
		{name: "half", yTrue: []int{0, 1, 0, 1}, yPred: []int{0, 0, 0, 0}, want: 0.5},
		{name: "none", yTrue: []int{1, 1}, yPred: []int{0, 0}, want: 0},
		{name: "empty", yTrue: nil, yPred: nil, wantErr: true},
		{name: "length mismatch", yTrue: []int{1, 2}, yPred: []int{1}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Accuracy(tt.yTrue, tt.yPred)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestConfusionMatrix(t *testing.T) {
	classes := []sleep.Label{sleep.Poor, sleep.Fair, sleep.Good}
	yTrue := []sleep.Label{sleep.Poor, sleep.Poor, sleep.Fair, sleep.Good, sleep.Good}
	yPred := []sleep.Label{sleep.Poor, sleep.Fair, sleep.Fair, sleep.Good, sleep.Poor}

	cm, err := ConfusionMatrix(yTrue, yPred, classes)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 0}, cm.RawRowView(0))
	assert.Equal(t, []float64{0, 1, 0}, cm.RawRowView(1))
	assert.Equal(t, []float64{1, 0, 1}, cm.RawRowView(2))

	_, err = ConfusionMatrix(yTrue, yPred, []sleep.Label{sleep.Poor})
	assert.Error(t, err)
	_, err = ConfusionMatrix(yTrue, yPred, nil)
	assert.Error(t, err)
}

func TestReport(t *testing.T) {
	classes := []string{"a", "b"}
	yTrue := []string{"a", "a", "b", "b"}
	yPred := []string{"a", "b", "b", "b"}

	rep, err := Report(yTrue, yPred, classes)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, rep["a"].Precision, 1e-12)
	assert.InDelta(t, 0.5, rep["a"].Recall, 1e-12)
	assert.InDelta(t, 2.0/3.0, rep["a"].F1, 1e-12)
	assert.Equal(t, 2, rep["a"].Support)

	assert.InDelta(t, 2.0/3.0, rep["b"].Precision, 1e-12)
	assert.InDelta(t, 1.0, rep["b"].Recall, 1e-12)
	assert.InDelta(t, 0.8, rep["b"].F1, 1e-12)
}

func TestReport_UnpredictedClass(t *testing.T) {
	rep, err := Report([]int{0, 0}, []int{0, 0}, []int{0, 1})
	require.NoError(t, err)
	assert.Equal(t, ClassReport{}, rep[1])
}
