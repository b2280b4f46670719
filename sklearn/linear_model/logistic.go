// Package linear_model provides the multiclass logistic regression behind the
// linear sleep-quality predictor.
package linear_model

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sleepq/core/model"
	"github.com/YuminosukeSato/sleepq/pkg/errors"
)

// Multi-class strategies.
const (
	MultiClassMultinomial = "multinomial"
	MultiClassOVR         = "ovr"
)

// ModelTypeLogisticRegression is the model_type written to exported weights.
const ModelTypeLogisticRegression = "LogisticRegression"

// weightsVersion is bumped whenever the exported layout changes.
const weightsVersion = "1.0.0"

var (
	_ model.Classifier     = (*LogisticRegression)(nil)
	_ model.WeightExporter = (*LogisticRegression)(nil)
)

// LogisticRegression implements logistic regression for classification
// Compatible with scikit-learn's LogisticRegression
//
// The multinomial strategy minimises softmax cross-entropy directly; the ovr
// strategy fits one sigmoid per class and normalises their outputs. Both are
// trained with full-batch gradient descent and L2 regularisation.
type LogisticRegression struct {
	state *model.StateManager // State management (composition)

	// Hyperparameters
	penalty      string  // Regularization: "l2", "none"
	C            float64 // Inverse regularization strength (1/alpha)
	fitIntercept bool    // Whether to fit intercept
	randomState  int64   // Random seed
	maxIter      int     // Maximum iterations
	multiClass   string  // Multi-class: "multinomial", "ovr"
	learningRate float64 // Initial step size
	tol          float64 // Tolerance for stopping

	// Model parameters
	coef_      *mat.Dense // Coefficients (n_classes x n_features)
	intercept_ []float64  // Intercept terms
	classes_   []int      // Unique class labels
	nClasses_  int        // Number of classes
	nFeatures_ int        // Number of features
	nIter_     int        // Iterations actually run

	// Internal state
	rand *rand.Rand
}

// LogisticRegressionOption is a functional option for LogisticRegression
type LogisticRegressionOption func(*LogisticRegression)

// NewLogisticRegression creates a new LogisticRegression classifier
func NewLogisticRegression(opts ...LogisticRegressionOption) *LogisticRegression {
	lr := &LogisticRegression{
		state:        model.NewStateManager(),
		penalty:      "l2",
		C:            1.0,
		fitIntercept: true,
		randomState:  -1,
		maxIter:      500,
		multiClass:   MultiClassMultinomial,
		learningRate: 0.5,
		tol:          1e-4,
	}

	// Apply options
	for _, opt := range opts {
		opt(lr)
	}

	// Initialize random generator if seed is set
	if lr.randomState >= 0 {
		lr.rand = rand.New(rand.NewSource(lr.randomState))
	} else {
		lr.rand = rand.New(rand.NewSource(rand.Int63()))
	}

	return lr
}

// Option functions

// WithLRPenalty sets the regularization type ("l2" or "none")
func WithLRPenalty(penalty string) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.penalty = penalty
	}
}

// WithLRC sets the inverse regularization strength
func WithLRC(c float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.C = c
	}
}

// WithLogisticFitIntercept sets whether to fit intercept
func WithLogisticFitIntercept(fit bool) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.fitIntercept = fit
	}
}

// WithLRMultiClass selects the multinomial or ovr strategy
func WithLRMultiClass(strategy string) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.multiClass = strategy
	}
}

// WithLRLearningRate sets the initial gradient step
func WithLRLearningRate(eta float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.learningRate = eta
	}
}

// WithLRMaxIter sets the maximum number of iterations
func WithLRMaxIter(maxIter int) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.maxIter = maxIter
	}
}

// WithLRTol sets the tolerance for stopping criteria
func WithLRTol(tol float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.tol = tol
	}
}

// WithLRRandomState sets the random seed
func WithLRRandomState(seed int64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.randomState = seed
		if seed >= 0 {
			lr.rand = rand.New(rand.NewSource(seed))
		}
	}
}

// Fit trains the logistic regression model. y is a column of integer class ids.
func (lr *LogisticRegression) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()

	if nSamples == 0 || nFeatures == 0 {
		return errors.NewModelError("LogisticRegression.Fit", "empty data", errors.ErrEmptyData)
	}
	if nSamples != yRows {
		return errors.NewDimensionError("LogisticRegression.Fit", nSamples, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewDimensionError("LogisticRegression.Fit", 1, yCols, 1)
	}
	if lr.multiClass != MultiClassMultinomial && lr.multiClass != MultiClassOVR {
		return errors.NewValueError("LogisticRegression.Fit", fmt.Sprintf("unknown multi_class %q", lr.multiClass))
	}

	lr.extractClasses(y)
	if lr.nClasses_ < 2 {
		return errors.NewValueError("LogisticRegression.Fit", fmt.Sprintf("need samples of at least 2 classes, got %d", lr.nClasses_))
	}
	lr.nFeatures_ = nFeatures
	lr.initializeWeights(nFeatures)

	// one-hot targets, one column per class
	Y := mat.NewDense(nSamples, lr.nClasses_, nil)
	classIdx := make(map[int]int, lr.nClasses_)
	for k, c := range lr.classes_ {
		classIdx[c] = k
	}
	for i := 0; i < nSamples; i++ {
		Y.Set(i, classIdx[int(y.At(i, 0))], 1)
	}

	converged := lr.gradientDescent(X, Y)
	if !converged {
		errors.Warn(errors.NewConvergenceWarning("LogisticRegression", lr.nIter_, ""))
	}

	lr.state.SetDimensions(nFeatures, nSamples)
	lr.state.SetFitted()
	return nil
}

// extractClasses identifies unique class labels
func (lr *LogisticRegression) extractClasses(y mat.Matrix) {
	rows, _ := y.Dims()
	classMap := make(map[int]bool)
	for i := 0; i < rows; i++ {
		classMap[int(y.At(i, 0))] = true
	}

	lr.classes_ = make([]int, 0, len(classMap))
	for class := range classMap {
		lr.classes_ = append(lr.classes_, class)
	}
	sort.Ints(lr.classes_)
	lr.nClasses_ = len(lr.classes_)
}

// initializeWeights initializes model weights with small random values
func (lr *LogisticRegression) initializeWeights(nFeatures int) {
	lr.coef_ = mat.NewDense(lr.nClasses_, nFeatures, nil)
	for k := 0; k < lr.nClasses_; k++ {
		for j := 0; j < nFeatures; j++ {
			lr.coef_.Set(k, j, lr.rand.NormFloat64()*0.01)
		}
	}
	lr.intercept_ = make([]float64, lr.nClasses_)
	lr.nIter_ = 0
}

// gradientDescent runs full-batch descent and reports whether the largest
// gradient component fell below tol.
func (lr *LogisticRegression) gradientDescent(X mat.Matrix, Y *mat.Dense) bool {
	nSamples, nFeatures := X.Dims()
	k := lr.nClasses_

	lambda := 0.0
	if lr.penalty == "l2" && lr.C > 0 {
		lambda = 1.0 / (lr.C * float64(nSamples))
	}

	residual := mat.NewDense(nSamples, k, nil)
	gradW := mat.NewDense(k, nFeatures, nil)
	gradB := make([]float64, k)

	for iter := 0; iter < lr.maxIter; iter++ {
		P := lr.activations(X)

		residual.Sub(P, Y)
		residual.Scale(1/float64(nSamples), residual)

		gradW.Mul(residual.T(), X)
		if lambda > 0 {
			var reg mat.Dense
			reg.Scale(lambda, lr.coef_)
			gradW.Add(gradW, &reg)
		}
		for c := 0; c < k; c++ {
			gradB[c] = mat.Sum(residual.ColView(c))
		}

		// Adaptive learning rate
		eta := lr.learningRate / (1.0 + 0.01*float64(iter))

		var step mat.Dense
		step.Scale(eta, gradW)
		lr.coef_.Sub(lr.coef_, &step)
		if lr.fitIntercept {
			for c := range lr.intercept_ {
				lr.intercept_[c] -= eta * gradB[c]
			}
		}

		lr.nIter_ = iter + 1

		maxGrad := mat.Norm(gradW, math.Inf(1))
		for _, g := range gradB {
			maxGrad = math.Max(maxGrad, math.Abs(g))
		}
		if maxGrad < lr.tol {
			return true
		}
	}
	return false
}

// activations returns the per-class model outputs used by the loss: softmax
// rows for multinomial, independent sigmoids for ovr.
func (lr *LogisticRegression) activations(X mat.Matrix) *mat.Dense {
	scores := lr.decision(X)
	rows, k := scores.Dims()
	row := make([]float64, k)
	for i := 0; i < rows; i++ {
		mat.Row(row, i, scores)
		if lr.multiClass == MultiClassMultinomial {
			errors.Softmax(row, row)
		} else {
			for c := range row {
				row[c] = sigmoid(row[c])
			}
		}
		scores.SetRow(i, row)
	}
	return scores
}

// decision computes X·Wᵀ + b.
func (lr *LogisticRegression) decision(X mat.Matrix) *mat.Dense {
	nSamples, _ := X.Dims()
	scores := mat.NewDense(nSamples, lr.nClasses_, nil)
	scores.Mul(X, lr.coef_.T())
	for i := 0; i < nSamples; i++ {
		for c := 0; c < lr.nClasses_; c++ {
			scores.Set(i, c, scores.At(i, c)+lr.intercept_[c])
		}
	}
	return scores
}

func (lr *LogisticRegression) checkInput(X mat.Matrix, method string) error {
	if err := lr.state.RequireFitted("LogisticRegression", method); err != nil {
		return err
	}
	if _, c := X.Dims(); c != lr.nFeatures_ {
		return errors.NewDimensionError("LogisticRegression."+method, lr.nFeatures_, c, 1)
	}
	return nil
}

// DecisionFunction returns the raw per-class scores.
func (lr *LogisticRegression) DecisionFunction(X mat.Matrix) (mat.Matrix, error) {
	if err := lr.checkInput(X, "DecisionFunction"); err != nil {
		return nil, err
	}
	return lr.decision(X), nil
}

// Predict makes predictions for input data
func (lr *LogisticRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := lr.checkInput(X, "Predict"); err != nil {
		return nil, err
	}

	scores := lr.decision(X)
	nSamples, _ := X.Dims()
	predictions := mat.NewDense(nSamples, 1, nil)
	row := make([]float64, lr.nClasses_)
	for i := 0; i < nSamples; i++ {
		mat.Row(row, i, scores)
		best := 0
		for c := 1; c < len(row); c++ {
			if row[c] > row[best] {
				best = c
			}
		}
		predictions.Set(i, 0, float64(lr.classes_[best]))
	}
	return predictions, nil
}

// PredictProba returns probability estimates for each class. Columns follow
// Classes(); every row sums to 1.
func (lr *LogisticRegression) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if err := lr.checkInput(X, "PredictProba"); err != nil {
		return nil, err
	}

	probas := lr.activations(X)
	if lr.multiClass == MultiClassOVR {
		rows, _ := probas.Dims()
		for i := 0; i < rows; i++ {
			row := probas.RawRowView(i)
			sum := mat.Sum(mat.NewVecDense(len(row), row))
			for c := range row {
				row[c] = errors.SafeDivide(row[c], sum)
			}
		}
	}
	return probas, nil
}

// Score returns the mean accuracy on the given test data and labels
func (lr *LogisticRegression) Score(X, y mat.Matrix) (float64, error) {
	predictions, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}

	nSamples, _ := X.Dims()
	correct := 0
	for i := 0; i < nSamples; i++ {
		if predictions.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(nSamples), nil
}

// Classes returns the sorted class ids seen during fitting.
func (lr *LogisticRegression) Classes() []int {
	return append([]int(nil), lr.classes_...)
}

// NIter returns the number of gradient steps taken by the last Fit.
func (lr *LogisticRegression) NIter() int {
	return lr.nIter_
}

// IsFitted reports whether the model can predict.
func (lr *LogisticRegression) IsFitted() bool {
	return lr.state.IsFitted()
}

// GetParams returns the model hyperparameters
func (lr *LogisticRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"penalty":       lr.penalty,
		"C":             lr.C,
		"fit_intercept": lr.fitIntercept,
		"random_state":  lr.randomState,
		"max_iter":      lr.maxIter,
		"multi_class":   lr.multiClass,
		"learning_rate": lr.learningRate,
		"tol":           lr.tol,
	}
}

// SetParams sets the model hyperparameters
func (lr *LogisticRegression) SetParams(params map[string]interface{}) error {
	bad := func(key string, value interface{}) error {
		return errors.NewValueError("LogisticRegression.SetParams", fmt.Sprintf("invalid value %v for %s", value, key))
	}
	for key, value := range params {
		var ok bool
		switch key {
		case "penalty":
			lr.penalty, ok = value.(string)
		case "C":
			lr.C, ok = value.(float64)
		case "fit_intercept":
			lr.fitIntercept, ok = value.(bool)
		case "random_state":
			lr.randomState, ok = value.(int64)
			if ok && lr.randomState >= 0 {
				lr.rand = rand.New(rand.NewSource(lr.randomState))
			}
		case "max_iter":
			lr.maxIter, ok = value.(int)
		case "multi_class":
			lr.multiClass, ok = value.(string)
		case "learning_rate":
			lr.learningRate, ok = value.(float64)
		case "tol":
			lr.tol, ok = value.(float64)
		default:
			return errors.NewValueError("LogisticRegression.SetParams", "unknown parameter: "+key)
		}
		if !ok {
			return bad(key, value)
		}
	}
	return nil
}

// ExportWeights returns the fitted model as a ModelWeights envelope. Classes
// holds the class ids as decimal strings; callers may relabel them.
func (lr *LogisticRegression) ExportWeights() (*model.ModelWeights, error) {
	if err := lr.state.RequireFitted("LogisticRegression", "ExportWeights"); err != nil {
		return nil, err
	}

	coef := make([][]float64, lr.nClasses_)
	for c := range coef {
		coef[c] = mat.Row(nil, c, lr.coef_)
	}
	classes := make([]string, lr.nClasses_)
	for c, id := range lr.classes_ {
		classes[c] = strconv.Itoa(id)
	}
	features := make([]string, lr.nFeatures_)
	for j := range features {
		features[j] = "x" + strconv.Itoa(j)
	}

	return &model.ModelWeights{
		ModelType:       ModelTypeLogisticRegression,
		Version:         weightsVersion,
		Features:        features,
		Classes:         classes,
		CoefMatrix:      coef,
		Intercepts:      append([]float64(nil), lr.intercept_...),
		Hyperparameters: lr.GetParams(),
		Metadata:        map[string]interface{}{"n_iter": lr.nIter_},
		IsFitted:        true,
	}, nil
}

// ImportWeights restores a fitted model. Class ids become 0..k-1 in the order
// of w.Classes, so PredictProba column c corresponds to w.Classes[c].
func (lr *LogisticRegression) ImportWeights(w *model.ModelWeights) error {
	if w == nil {
		return errors.NewValueError("LogisticRegression.ImportWeights", "weights are nil")
	}
	if w.ModelType != ModelTypeLogisticRegression {
		return errors.NewValueError("LogisticRegression.ImportWeights", fmt.Sprintf("model type mismatch: expected %s, got %s", ModelTypeLogisticRegression, w.ModelType))
	}
	if err := w.Validate(); err != nil {
		return err
	}
	if !w.IsFitted {
		return errors.NewNotFittedError("LogisticRegression", "ImportWeights")
	}

	multiClass := lr.multiClass
	if v, ok := w.Hyperparameters["multi_class"]; ok {
		mc, isString := v.(string)
		if !isString || (mc != MultiClassMultinomial && mc != MultiClassOVR) {
			return errors.NewValueError("LogisticRegression.ImportWeights", fmt.Sprintf("unknown multi_class %v", v))
		}
		multiClass = mc
	}

	k, d := len(w.Classes), len(w.Features)
	lr.coef_ = mat.NewDense(k, d, nil)
	for c, row := range w.CoefMatrix {
		lr.coef_.SetRow(c, row)
	}
	lr.intercept_ = append([]float64(nil), w.Intercepts...)
	lr.classes_ = make([]int, k)
	for c := range lr.classes_ {
		lr.classes_[c] = c
	}
	lr.nClasses_ = k
	lr.nFeatures_ = d

	lr.multiClass = multiClass

	lr.state.SetDimensions(d, 0)
	lr.state.SetFitted()
	return nil
}

// sigmoid computes the sigmoid function
func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
