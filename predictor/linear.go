package predictor

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sleepq/core/model"
	"github.com/YuminosukeSato/sleepq/pkg/errors"
	"github.com/YuminosukeSato/sleepq/preprocessing"
	"github.com/YuminosukeSato/sleepq/sklearn/linear_model"
	"github.com/YuminosukeSato/sleepq/sleep"
)

// LinearPredictor is a multinomial logistic regression over the drop-first
// one-hot layout recorded in its artifact.
type LinearPredictor struct {
	model   *linear_model.LogisticRegression
	encoder *preprocessing.OneHotEncoder
	scaler  *preprocessing.StandardScaler
	classes []sleep.Label
}

// NewLinearPredictor validates w against the encoder it describes. Any
// mismatch is reported as a ValueError; LoadLinear turns it into ArtifactCorrupt.
func NewLinearPredictor(w *model.ModelWeights) (*LinearPredictor, error) {
	if w == nil {
		return nil, errors.NewValueError("NewLinearPredictor", "weights are nil")
	}

	cats := preprocessing.DefaultCategories()
	if w.Encoding != nil {
		cats = preprocessing.Categories{
			Gender:   w.Encoding[preprocessing.ColumnGender],
			Activity: w.Encoding[preprocessing.ColumnActivity],
			Diet:     w.Encoding[preprocessing.ColumnDiet],
		}
	}
	enc, err := preprocessing.NewOneHotEncoder(cats)
	if err != nil {
		return nil, err
	}

	want := enc.FeatureNames()
	if len(w.Features) != len(want) {
		return nil, errors.NewDimensionError("NewLinearPredictor", len(want), len(w.Features), 1)
	}
	for i, name := range want {
		if w.Features[i] != name {
			return nil, errors.NewValueError("NewLinearPredictor", fmt.Sprintf("feature %d is %q, encoder expects %q", i, w.Features[i], name))
		}
	}

	classes := make([]sleep.Label, len(w.Classes))
	seen := make(map[sleep.Label]bool, len(w.Classes))
	for i, name := range w.Classes {
		l, err := sleep.ParseLabel(name)
		if err != nil {
			return nil, err
		}
		if seen[l] {
			return nil, errors.NewValueError("NewLinearPredictor", fmt.Sprintf("duplicate class %q", name))
		}
		seen[l] = true
		classes[i] = l
	}

	lr := linear_model.NewLogisticRegression()
	if err := lr.ImportWeights(w); err != nil {
		return nil, err
	}

	p := &LinearPredictor{model: lr, encoder: enc, classes: classes}
	if w.Scaler != nil {
		s, err := preprocessing.NewStandardScalerFromParams(w.Scaler.Mean, w.Scaler.Scale)
		if err != nil {
			return nil, err
		}
		p.scaler = s
	}
	return p, nil
}

// LoadLinear reads a linear artifact. Paths ending in .gob are gob encoded,
// everything else JSON.
func LoadLinear(path string) (*LinearPredictor, error) {
	var p *LinearPredictor
	err := withArtifact(ArtifactLinear, path, func(r io.Reader) error {
		var w model.ModelWeights
		var err error
		if strings.EqualFold(filepath.Ext(path), ".gob") {
			err = model.LoadModelFromReader(&w, r)
		} else {
			err = model.LoadJSONFromReader(&w, r)
		}
		if err != nil {
			return err
		}
		p, err = NewLinearPredictor(&w)
		if err != nil {
			return errors.NewArtifactCorruptError(ArtifactLinear, path, "layout mismatch", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Source implements Predictor.
func (p *LinearPredictor) Source() Source { return SourceLinear }

// FeatureNames returns the encoded column layout.
func (p *LinearPredictor) FeatureNames() []string { return p.encoder.FeatureNames() }

// Predict implements Predictor.
func (p *LinearPredictor) Predict(in sleep.FeatureInput) (pred Prediction, err error) {
	defer errors.Recover(&err, "LinearPredictor.Predict")
	return p.PredictVector(p.encoder.Encode(in))
}

// PredictVector classifies an already encoded vector.
func (p *LinearPredictor) PredictVector(x []float64) (Prediction, error) {
	if p.scaler != nil {
		scaled, err := p.scaler.TransformVector(x)
		if err != nil {
			return Prediction{}, errors.NewInferenceFailureError(string(SourceLinear), err)
		}
		x = scaled
	}
	proba, err := p.model.PredictProba(mat.NewDense(1, len(x), x))
	if err != nil {
		return Prediction{}, errors.NewInferenceFailureError(string(SourceLinear), err)
	}

	conf := make(sleep.Confidence, len(p.classes))
	for c, l := range p.classes {
		conf[l] = proba.At(0, c)
	}
	label, _ := conf.Argmax()
	return Prediction{Label: label, Source: SourceLinear, Confidence: conf}, nil
}
