package training

import (
	"os"
	"path/filepath"
	"time"

	"github.com/YuminosukeSato/sleepq/dataset"
	"github.com/YuminosukeSato/sleepq/neural"
	"github.com/YuminosukeSato/sleepq/pkg/errors"
	"github.com/YuminosukeSato/sleepq/pkg/log"
	"github.com/YuminosukeSato/sleepq/predictor"
	"github.com/YuminosukeSato/sleepq/preprocessing"
)

// NeuralResult is the output of TrainNeural.
type NeuralResult struct {
	Net      *neural.MLP
	Encoders *preprocessing.EncoderMap
	History  *neural.History
	Report   *Report
}

// FitEncoderMap builds label maps over the whole dataset, indices assigned
// in first-seen order.
func FitEncoderMap(d *dataset.Dataset) *preprocessing.EncoderMap {
	n := d.Len()
	gender := make([]string, n)
	activity := make([]string, n)
	diet := make([]string, n)
	quality := make([]string, n)
	for i, rec := range d.Records {
		gender[i] = string(rec.Input.Gender)
		activity[i] = string(rec.Input.ActivityLevel)
		diet[i] = string(rec.Input.DietaryHabits)
		quality[i] = string(rec.Quality)
	}
	return &preprocessing.EncoderMap{
		GenderMap:   preprocessing.FitLabelMap(gender),
		ActivityMap: preprocessing.FitLabelMap(activity),
		DietMap:     preprocessing.FitLabelMap(diet),
		SleepMap:    preprocessing.FitLabelMap(quality),
	}
}

// TrainNeural fits a ReLU network with a softmax head over label-encoded
// inputs.
func TrainNeural(d *dataset.Dataset, opts ...Option) (*NeuralResult, error) {
	o := newOptions(opts)
	logger := o.logger.With(log.ModelNameKey, "MLP", log.OperationKey, log.OperationFit)
	start := time.Now()

	encoders := FitEncoderMap(d)
	if err := encoders.Validate(); err != nil {
		return nil, err
	}
	enc := preprocessing.NewLabelEncoder(encoders)

	train, test, err := d.Split(o.testFraction, o.seed)
	if err != nil {
		return nil, err
	}
	X := train.Encode(enc)
	scaler := preprocessing.NewStandardScaler()
	if err := scaler.Fit(X); err != nil {
		return nil, err
	}
	y := make([]int, train.Len())
	for i, rec := range train.Records {
		y[i] = encoders.SleepMap[string(rec.Quality)]
	}

	sizes := append([]int{len(enc.FeatureNames())}, o.hidden...)
	sizes = append(sizes, len(encoders.SleepMap))
	net, err := neural.NewMLP(sizes, o.seed)
	if err != nil {
		return nil, err
	}
	net.SetScaler(scaler)

	nnOpts := append([]neural.TrainOption{neural.WithSeed(o.seed), neural.WithLogger(o.logger)}, o.nnOpts...)
	hist, err := net.Fit(X, y, nnOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "fit network")
	}

	p, err := predictor.NewNeuralPredictor(net, encoders)
	if err != nil {
		return nil, err
	}
	report, err := Evaluate(p, test, encoders.Classes())
	if err != nil {
		return nil, err
	}

	logger.Info("Neural model trained",
		log.AccuracyKey, report.Accuracy,
		log.LossKey, hist.Loss[len(hist.Loss)-1],
		log.DurationMsKey, since(start),
	)
	return &NeuralResult{Net: net, Encoders: encoders, History: hist, Report: report}, nil
}

// SaveNeural writes the weights artifact and the encoder map.
func SaveNeural(r *NeuralResult, weightsPath, encodersPath string) error {
	if err := writeFile(weightsPath, func(f *os.File) error { return neural.WriteArtifact(f, r.Net) }); err != nil {
		return err
	}
	return writeFile(encodersPath, func(f *os.File) error { return preprocessing.WriteEncoderMap(f, r.Encoders) })
}

func writeFile(path string, write func(f *os.File) error) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create directory %s", dir)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "close %s", path)
		}
	}()
	return write(f)
}
