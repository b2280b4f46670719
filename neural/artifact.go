package neural

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sleepq/core/model"
	"github.com/YuminosukeSato/sleepq/pkg/errors"
	"github.com/YuminosukeSato/sleepq/preprocessing"
)

// ModelTypeMLP is the model_type of the weights artifact.
const ModelTypeMLP = "MLP"

const artifactVersion = "1.0.0"

// LayerWeights is one dense layer in the weights artifact.
type LayerWeights struct {
	Weights    [][]float64 `json:"weights"` // [out][in]
	Bias       []float64   `json:"bias"`
	Activation Activation  `json:"activation"`
}

// Artifact is the persisted form of a trained MLP.
type Artifact struct {
	ModelType  string         `json:"model_type"`
	Version    string         `json:"version"`
	InputMean  []float64      `json:"input_mean,omitempty"`
	InputScale []float64      `json:"input_scale,omitempty"`
	Layers     []LayerWeights `json:"layers"`
}

// Export returns the persisted form of m.
func (m *MLP) Export() (*Artifact, error) {
	if err := m.state.RequireFitted("MLP", "Export"); err != nil {
		return nil, err
	}
	a := &Artifact{ModelType: ModelTypeMLP, Version: artifactVersion}
	if m.scaler != nil {
		a.InputMean = append([]float64(nil), m.scaler.Mean...)
		a.InputScale = append([]float64(nil), m.scaler.Scale...)
	}
	for _, l := range m.layers {
		out, _ := l.dims()
		lw := LayerWeights{
			Weights:    make([][]float64, out),
			Bias:       append([]float64(nil), l.b...),
			Activation: l.act,
		}
		for i := 0; i < out; i++ {
			lw.Weights[i] = mat.Row(nil, i, l.W)
		}
		a.Layers = append(a.Layers, lw)
	}
	return a, nil
}

// FromArtifact validates a and rebuilds the network. Every layer's input width
// must equal the previous layer's output width, hidden layers must be ReLU and
// the last layer softmax.
func FromArtifact(a *Artifact) (*MLP, error) {
	if a == nil {
		return nil, errors.NewValueError("neural.FromArtifact", "artifact is nil")
	}
	if a.ModelType != ModelTypeMLP {
		return nil, errors.NewValueError("neural.FromArtifact", fmt.Sprintf("model type mismatch: expected %s, got %q", ModelTypeMLP, a.ModelType))
	}
	if len(a.Layers) == 0 {
		return nil, errors.NewValueError("neural.FromArtifact", "no layers")
	}

	m := &MLP{state: model.NewStateManager()}
	prevOut := -1
	for li, lw := range a.Layers {
		out := len(lw.Weights)
		if out == 0 {
			return nil, errors.NewValueError("neural.FromArtifact", fmt.Sprintf("layer %d has no units", li))
		}
		in := len(lw.Weights[0])
		if in == 0 {
			return nil, errors.NewValueError("neural.FromArtifact", fmt.Sprintf("layer %d has no inputs", li))
		}
		if prevOut >= 0 && in != prevOut {
			return nil, errors.NewDimensionError(fmt.Sprintf("neural.FromArtifact layer %d", li), prevOut, in, 1)
		}
		if len(lw.Bias) != out {
			return nil, errors.NewDimensionError(fmt.Sprintf("neural.FromArtifact layer %d bias", li), out, len(lw.Bias), 0)
		}
		wantAct := ReLU
		if li == len(a.Layers)-1 {
			wantAct = Softmax
		}
		if lw.Activation != wantAct {
			return nil, errors.NewValueError("neural.FromArtifact", fmt.Sprintf("layer %d activation must be %s, got %q", li, wantAct, lw.Activation))
		}

		W := mat.NewDense(out, in, nil)
		for i, row := range lw.Weights {
			if len(row) != in {
				return nil, errors.NewDimensionError(fmt.Sprintf("neural.FromArtifact layer %d row %d", li, i), in, len(row), 1)
			}
			if err := errors.CheckNumericalStability("neural.FromArtifact", row); err != nil {
				return nil, err
			}
			W.SetRow(i, row)
		}
		if err := errors.CheckNumericalStability("neural.FromArtifact", lw.Bias); err != nil {
			return nil, err
		}
		m.layers = append(m.layers, &layer{W: W, b: append([]float64(nil), lw.Bias...), act: lw.Activation})
		prevOut = out
	}

	if len(a.InputMean) > 0 || len(a.InputScale) > 0 {
		if len(a.InputMean) != m.InputSize() {
			return nil, errors.NewDimensionError("neural.FromArtifact input_mean", m.InputSize(), len(a.InputMean), 1)
		}
		s, err := preprocessing.NewStandardScalerFromParams(a.InputMean, a.InputScale)
		if err != nil {
			return nil, err
		}
		m.scaler = s
	}

	m.state.SetDimensions(m.InputSize(), 0)
	m.state.SetFitted()
	return m, nil
}

// ReadArtifact decodes a JSON weights artifact and rebuilds the network.
func ReadArtifact(r io.Reader) (*MLP, error) {
	var a Artifact
	if err := model.LoadJSONFromReader(&a, r); err != nil {
		return nil, err
	}
	return FromArtifact(&a)
}

// WriteArtifact encodes m as a JSON weights artifact.
func WriteArtifact(w io.Writer, m *MLP) error {
	a, err := m.Export()
	if err != nil {
		return err
	}
	return model.SaveJSONToWriter(a, w)
}
