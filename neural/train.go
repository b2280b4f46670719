package neural

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sleepq/pkg/errors"
	"github.com/YuminosukeSato/sleepq/pkg/log"
)

// TrainConfig holds the optimiser settings.
type TrainConfig struct {
	Epochs       int
	BatchSize    int
	LearningRate float64
	Beta1        float64
	Beta2        float64
	Epsilon      float64
	Seed         int64
	Logger       log.Logger
}

// TrainOption is a functional option for Fit.
type TrainOption func(*TrainConfig)

// WithEpochs sets the number of passes over the training data.
func WithEpochs(n int) TrainOption {
	return func(c *TrainConfig) { c.Epochs = n }
}

// WithBatchSize sets the mini-batch size.
func WithBatchSize(n int) TrainOption {
	return func(c *TrainConfig) { c.BatchSize = n }
}

// WithLearningRate sets Adam's step size.
func WithLearningRate(eta float64) TrainOption {
	return func(c *TrainConfig) { c.LearningRate = eta }
}

// WithSeed sets the shuffling seed.
func WithSeed(seed int64) TrainOption {
	return func(c *TrainConfig) { c.Seed = seed }
}

// WithLogger sets the logger that receives per-epoch progress.
func WithLogger(l log.Logger) TrainOption {
	return func(c *TrainConfig) { c.Logger = l }
}

// DefaultTrainConfig mirrors the settings of the bundled training job.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		Epochs:       50,
		BatchSize:    32,
		LearningRate: 0.001,
		Beta1:        0.9,
		Beta2:        0.999,
		Epsilon:      1e-8,
		Seed:         42,
	}
}

// History records the mean cross-entropy and training accuracy per epoch.
type History struct {
	Loss     []float64
	Accuracy []float64
}

// adamState holds first and second moment estimates for one parameter block.
type adamState struct {
	mW, vW *mat.Dense
	mB, vB []float64
}

// Fit trains the network on X with integer class targets y in [0, OutputSize).
func (m *MLP) Fit(X mat.Matrix, y []int, opts ...TrainOption) (*History, error) {
	cfg := DefaultTrainConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = log.GetLogger()
	}
	logger := cfg.Logger.With(log.ModelNameKey, "MLP", log.OperationKey, log.OperationFit)

	n, d := X.Dims()
	if n == 0 {
		return nil, errors.NewModelError("MLP.Fit", "empty data", errors.ErrEmptyData)
	}
	if d != m.InputSize() {
		return nil, errors.NewDimensionError("MLP.Fit", m.InputSize(), d, 1)
	}
	if len(y) != n {
		return nil, errors.NewDimensionError("MLP.Fit", n, len(y), 0)
	}
	k := m.OutputSize()
	for i, c := range y {
		if c < 0 || c >= k {
			return nil, errors.NewValueError("MLP.Fit", fmt.Sprintf("target %d at row %d outside [0,%d)", c, i, k))
		}
	}
	if cfg.Epochs <= 0 || cfg.BatchSize <= 0 || cfg.LearningRate <= 0 {
		return nil, errors.NewValueError("MLP.Fit", "epochs, batch size and learning rate must be positive")
	}

	input, err := m.scaleInput(X)
	if err != nil {
		return nil, err
	}

	adam := make([]adamState, len(m.layers))
	for li, l := range m.layers {
		out, in := l.dims()
		adam[li] = adamState{
			mW: mat.NewDense(out, in, nil),
			vW: mat.NewDense(out, in, nil),
			mB: make([]float64, out),
			vB: make([]float64, out),
		}
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	hist := &History{}
	step := 0
	logger.Info("Training started", log.SamplesKey, n, log.FeaturesKey, d, "epochs", cfg.Epochs)

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })

		var lossSum float64
		correct := 0
		for start := 0; start < n; start += cfg.BatchSize {
			end := start + cfg.BatchSize
			if end > n {
				end = n
			}
			bx, by := batch(input, y, order[start:end], k)
			step++
			loss, hits := m.trainStep(bx, by, adam, cfg, step)
			lossSum += loss
			correct += hits
		}

		epochLoss := lossSum / float64(n)
		if math.IsNaN(epochLoss) || math.IsInf(epochLoss, 0) {
			return hist, errors.NewValueError("MLP.Fit", fmt.Sprintf("loss diverged at epoch %d", epoch+1))
		}
		hist.Loss = append(hist.Loss, epochLoss)
		hist.Accuracy = append(hist.Accuracy, float64(correct)/float64(n))
		logger.Debug("Epoch finished",
			log.EpochKey, epoch+1,
			log.LossKey, epochLoss,
			log.AccuracyKey, hist.Accuracy[epoch],
		)
	}

	m.state.SetDimensions(d, n)
	m.state.SetFitted()
	logger.Info("Training finished", log.LossKey, hist.Loss[len(hist.Loss)-1])
	return hist, nil
}

func batch(X mat.Matrix, y []int, idx []int, k int) (*mat.Dense, *mat.Dense) {
	_, d := X.Dims()
	bx := mat.NewDense(len(idx), d, nil)
	by := mat.NewDense(len(idx), k, nil)
	row := make([]float64, d)
	for i, src := range idx {
		mat.Row(row, src, X)
		bx.SetRow(i, row)
		by.Set(i, y[src], 1)
	}
	return bx, by
}

// trainStep runs forward and backward passes on one batch, applies Adam, and
// returns the summed loss and number of correct predictions.
func (m *MLP) trainStep(X, Y *mat.Dense, adam []adamState, cfg TrainConfig, step int) (float64, int) {
	acts := m.forward(X)
	P := acts[len(acts)-1]
	bs, k := P.Dims()

	var loss float64
	hits := 0
	for i := 0; i < bs; i++ {
		best := 0
		for c := 0; c < k; c++ {
			if P.At(i, c) > P.At(i, best) {
				best = c
			}
			if Y.At(i, c) == 1 {
				loss -= errors.StabilizeLog(P.At(i, c))
			}
		}
		if Y.At(i, best) == 1 {
			hits++
		}
	}

	// softmax + cross-entropy gradient
	delta := mat.NewDense(bs, k, nil)
	delta.Sub(P, Y)
	delta.Scale(1/float64(bs), delta)

	for li := len(m.layers) - 1; li >= 0; li-- {
		l := m.layers[li]
		prev := acts[li]
		out, in := l.dims()

		gradW := mat.NewDense(out, in, nil)
		gradW.Mul(delta.T(), prev)
		gradB := make([]float64, out)
		for j := 0; j < out; j++ {
			gradB[j] = mat.Sum(delta.ColView(j))
		}

		var next *mat.Dense
		if li > 0 {
			next = mat.NewDense(bs, in, nil)
			next.Mul(delta, l.W)
			// prev is the ReLU output of the layer below
			next.Apply(func(i, j int, v float64) float64 {
				if prev.At(i, j) <= 0 {
					return 0
				}
				return v
			}, next)
		}

		adamUpdate(l, &adam[li], gradW, gradB, cfg, step)
		delta = next
	}
	return loss, hits
}

func adamUpdate(l *layer, s *adamState, gradW *mat.Dense, gradB []float64, cfg TrainConfig, step int) {
	c1 := 1 - math.Pow(cfg.Beta1, float64(step))
	c2 := 1 - math.Pow(cfg.Beta2, float64(step))

	out, in := l.dims()
	for i := 0; i < out; i++ {
		for j := 0; j < in; j++ {
			g := gradW.At(i, j)
			mw := cfg.Beta1*s.mW.At(i, j) + (1-cfg.Beta1)*g
			vw := cfg.Beta2*s.vW.At(i, j) + (1-cfg.Beta2)*g*g
			s.mW.Set(i, j, mw)
			s.vW.Set(i, j, vw)
			l.W.Set(i, j, l.W.At(i, j)-cfg.LearningRate*(mw/c1)/(math.Sqrt(vw/c2)+cfg.Epsilon))
		}
		g := gradB[i]
		s.mB[i] = cfg.Beta1*s.mB[i] + (1-cfg.Beta1)*g
		s.vB[i] = cfg.Beta2*s.vB[i] + (1-cfg.Beta2)*g*g
		l.b[i] -= cfg.LearningRate * (s.mB[i] / c1) / (math.Sqrt(s.vB[i]/c2) + cfg.Epsilon)
	}
}
