// Package neural implements the small feed-forward classifier behind the
// neural sleep-quality predictor: dense layers with ReLU hidden activations
// and a softmax output, trained offline with Adam on cross-entropy.
package neural

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sleepq/core/model"
	"github.com/YuminosukeSato/sleepq/pkg/errors"
	"github.com/YuminosukeSato/sleepq/preprocessing"
)

// Activation names a layer's output non-linearity.
type Activation string

// Supported activations.
const (
	ReLU    Activation = "relu"
	Softmax Activation = "softmax"
)

// layer is one fully connected layer: out = act(W·in + b).
type layer struct {
	W   *mat.Dense // out x in
	b   []float64
	act Activation
}

func (l *layer) dims() (out, in int) {
	return l.W.Dims()
}

// MLP is a multilayer perceptron classifier.
type MLP struct {
	state  *model.StateManager
	layers []*layer
	scaler *preprocessing.StandardScaler
}

// NewMLP builds an untrained network with the given layer widths, e.g.
// NewMLP([]int{6, 64, 32, 16, 4}, 42). Hidden layers use ReLU and the last
// layer softmax. Weights use He initialisation.
func NewMLP(sizes []int, seed int64) (*MLP, error) {
	if len(sizes) < 2 {
		return nil, errors.NewValueError("NewMLP", fmt.Sprintf("need at least input and output sizes, got %v", sizes))
	}
	for _, s := range sizes {
		if s <= 0 {
			return nil, errors.NewValueError("NewMLP", fmt.Sprintf("layer sizes must be positive, got %v", sizes))
		}
	}
	if sizes[len(sizes)-1] < 2 {
		return nil, errors.NewValueError("NewMLP", "output layer needs at least 2 classes")
	}

	rng := rand.New(rand.NewSource(seed))
	m := &MLP{state: model.NewStateManager()}
	for i := 1; i < len(sizes); i++ {
		in, out := sizes[i-1], sizes[i]
		std := math.Sqrt(2.0 / float64(in))
		data := make([]float64, out*in)
		for j := range data {
			data[j] = rng.NormFloat64() * std
		}
		act := ReLU
		if i == len(sizes)-1 {
			act = Softmax
		}
		m.layers = append(m.layers, &layer{W: mat.NewDense(out, in, data), b: make([]float64, out), act: act})
	}
	return m, nil
}

// InputSize returns the width of the input layer.
func (m *MLP) InputSize() int {
	_, in := m.layers[0].dims()
	return in
}

// OutputSize returns the number of classes.
func (m *MLP) OutputSize() int {
	out, _ := m.layers[len(m.layers)-1].dims()
	return out
}

// Sizes returns every layer width from input to output.
func (m *MLP) Sizes() []int {
	sizes := []int{m.InputSize()}
	for _, l := range m.layers {
		out, _ := l.dims()
		sizes = append(sizes, out)
	}
	return sizes
}

// SetScaler attaches input standardisation applied before the first layer.
func (m *MLP) SetScaler(s *preprocessing.StandardScaler) {
	m.scaler = s
}

// Scaler returns the attached input scaler, or nil.
func (m *MLP) Scaler() *preprocessing.StandardScaler {
	return m.scaler
}

// IsFitted reports whether the network holds trained or imported weights.
func (m *MLP) IsFitted() bool {
	return m.state.IsFitted()
}

// PredictProba runs a forward pass for one sample and returns the class
// probabilities.
func (m *MLP) PredictProba(x []float64) ([]float64, error) {
	if err := m.state.RequireFitted("MLP", "PredictProba"); err != nil {
		return nil, err
	}
	if len(x) != m.InputSize() {
		return nil, errors.NewDimensionError("MLP.PredictProba", m.InputSize(), len(x), 1)
	}
	P, err := m.PredictProbaBatch(mat.NewDense(1, len(x), append([]float64(nil), x...)))
	if err != nil {
		return nil, err
	}
	return mat.Row(nil, 0, P), nil
}

// PredictProbaBatch runs a forward pass for every row of X.
func (m *MLP) PredictProbaBatch(X mat.Matrix) (*mat.Dense, error) {
	if err := m.state.RequireFitted("MLP", "PredictProbaBatch"); err != nil {
		return nil, err
	}
	if _, c := X.Dims(); c != m.InputSize() {
		return nil, errors.NewDimensionError("MLP.PredictProbaBatch", m.InputSize(), c, 1)
	}
	in, err := m.scaleInput(X)
	if err != nil {
		return nil, err
	}
	acts := m.forward(in)
	out := acts[len(acts)-1]
	r, c := out.Dims()
	if err := errors.CheckNumericalStability("MLP.PredictProbaBatch", out.RawMatrix().Data[:r*c]); err != nil {
		return nil, err
	}
	return out, nil
}

// Predict returns the argmax class index per row.
func (m *MLP) Predict(X mat.Matrix) ([]int, error) {
	P, err := m.PredictProbaBatch(X)
	if err != nil {
		return nil, err
	}
	r, _ := P.Dims()
	out := make([]int, r)
	for i := 0; i < r; i++ {
		out[i] = floats.MaxIdx(P.RawRowView(i))
	}
	return out, nil
}

func (m *MLP) scaleInput(X mat.Matrix) (mat.Matrix, error) {
	if m.scaler == nil {
		return X, nil
	}
	return m.scaler.Transform(X)
}

// forward returns the activations of every layer, input first.
func (m *MLP) forward(X mat.Matrix) []*mat.Dense {
	r, c := X.Dims()
	a := mat.NewDense(r, c, nil)
	a.Copy(X)
	acts := []*mat.Dense{a}
	for _, l := range m.layers {
		out, _ := l.dims()
		z := mat.NewDense(r, out, nil)
		z.Mul(a, l.W.T())
		for i := 0; i < r; i++ {
			row := z.RawRowView(i)
			for j := range row {
				row[j] += l.b[j]
			}
			activate(l.act, row)
		}
		acts = append(acts, z)
		a = z
	}
	return acts
}

func activate(act Activation, row []float64) {
	switch act {
	case Softmax:
		errors.Softmax(row, row)
	default:
		for j, v := range row {
			if v < 0 {
				row[j] = 0
			}
		}
	}
}
