package predictor

import (
	"io"

	"github.com/YuminosukeSato/sleepq/neural"
	"github.com/YuminosukeSato/sleepq/pkg/errors"
	"github.com/YuminosukeSato/sleepq/preprocessing"
	"github.com/YuminosukeSato/sleepq/sleep"
)

// NeuralPredictor is a feed-forward network over the ordinal layout of its
// companion encoder map.
type NeuralPredictor struct {
	net     *neural.MLP
	encoder *preprocessing.LabelEncoder
	classes []sleep.Label
}

// NewNeuralPredictor checks that the network's input and output widths match
// the encoder map.
func NewNeuralPredictor(net *neural.MLP, m *preprocessing.EncoderMap) (*NeuralPredictor, error) {
	if net == nil || m == nil {
		return nil, errors.NewValueError("NewNeuralPredictor", "network and encoder map are required")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	enc := preprocessing.NewLabelEncoder(m)
	if got, want := net.InputSize(), len(enc.FeatureNames()); got != want {
		return nil, errors.NewDimensionError("NewNeuralPredictor input", want, got, 1)
	}
	classes := m.Classes()
	if got := net.OutputSize(); got != len(classes) {
		return nil, errors.NewDimensionError("NewNeuralPredictor output", len(classes), got, 1)
	}
	return &NeuralPredictor{net: net, encoder: enc, classes: classes}, nil
}

// LoadNeural reads the weights artifact and its encoder map. Both must load.
func LoadNeural(weightsPath, encodersPath string) (*NeuralPredictor, error) {
	var net *neural.MLP
	err := withArtifact(ArtifactNeural, weightsPath, func(r io.Reader) error {
		var err error
		net, err = neural.ReadArtifact(r)
		return err
	})
	if err != nil {
		return nil, err
	}

	var m *preprocessing.EncoderMap
	err = withArtifact(ArtifactEncoders, encodersPath, func(r io.Reader) error {
		var err error
		m, err = preprocessing.ReadEncoderMap(r)
		return err
	})
	if err != nil {
		return nil, err
	}

	p, err := NewNeuralPredictor(net, m)
	if err != nil {
		return nil, errors.NewArtifactCorruptError(ArtifactNeural, weightsPath, "does not match encoder map", err)
	}
	return p, nil
}

// Source implements Predictor.
func (p *NeuralPredictor) Source() Source { return SourceNeural }

// Classes returns the labels in output-unit order.
func (p *NeuralPredictor) Classes() []sleep.Label {
	return append([]sleep.Label(nil), p.classes...)
}

// Predict implements Predictor. The label is the argmax of the distribution.
func (p *NeuralPredictor) Predict(in sleep.FeatureInput) (pred Prediction, err error) {
	defer errors.Recover(&err, "NeuralPredictor.Predict")
	return p.PredictVector(p.encoder.Encode(in))
}

// PredictVector classifies an already encoded vector.
func (p *NeuralPredictor) PredictVector(x []float64) (Prediction, error) {
	proba, err := p.net.PredictProba(x)
	if err != nil {
		return Prediction{}, errors.NewInferenceFailureError(string(SourceNeural), err)
	}
	conf := make(sleep.Confidence, len(p.classes))
	for c, l := range p.classes {
		conf[l] = proba[c]
	}
	label, _ := conf.Argmax()
	return Prediction{Label: label, Source: SourceNeural, Confidence: conf}, nil
}
