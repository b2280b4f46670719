// Standard attribute keys for prediction and training logs.
//
// Keys follow a hierarchical naming convention ("preds.source",
// "artifact.path") so log pipelines can filter on prefixes.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the model type.
	// Examples: "LogisticRegression", "MLP", "RuleBased"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "cascade", "training", "server"
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of model lifecycle.
	PhaseKey = "ml.phase"

	// RequestIDKey correlates every log line of one prediction request.
	RequestIDKey = "request.id"
)

// Artifacts
const (
	// ArtifactKey names the artifact kind: "linear", "neural", "encoders", "averages".
	ArtifactKey = "artifact.name"

	// ArtifactPathKey is the resolved file path of an artifact.
	ArtifactPathKey = "artifact.path"
)

// Data Shape
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of encoded features (columns).
	FeaturesKey = "data.features"
)

// Performance and Training Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// AccuracyKey records held-out accuracy in [0.0, 1.0].
	AccuracyKey = "metrics.accuracy"

	// LossKey records the training loss.
	LossKey = "metrics.loss"

	// EpochKey records the current epoch number during training.
	EpochKey = "training.epoch"
)

// Prediction Context
const (
	// SourceKey records which predictor tier produced a label.
	SourceKey = "preds.source"

	// LabelKey records the predicted sleep-quality label.
	LabelKey = "preds.label"

	// ConfidenceKey records the probability of the predicted label.
	ConfidenceKey = "preds.confidence"

	// TierKey records the tier being attempted by the cascade.
	TierKey = "cascade.tier"

	// ErrorKindKey records the taxonomy kind of a degraded tier.
	ErrorKindKey = "error.kind"
)

// Error Context
const (
	// ErrorKey carries the error value itself.
	ErrorKey = "error"
)

// Standard attribute values.
const (
	OperationFit      = "fit"
	OperationPredict  = "predict"
	OperationLoad     = "load"
	OperationEvaluate = "evaluate"

	PhaseTraining  = "training"
	PhaseTesting   = "testing"
	PhaseInference = "inference"
)
