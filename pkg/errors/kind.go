package errors

// ErrorKind classifies an error for routing decisions.
type ErrorKind int

const (
	// KindUnknown is any error outside the prediction taxonomy.
	KindUnknown ErrorKind = iota
	// KindArtifactMissing maps to ArtifactMissingError.
	KindArtifactMissing
	// KindArtifactCorrupt maps to ArtifactCorruptError.
	KindArtifactCorrupt
	// KindInferenceFailure maps to InferenceFailureError and recovered panics.
	KindInferenceFailure
	// KindInvalidInput maps to InvalidInputError.
	KindInvalidInput
)

// String returns the taxonomy name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindArtifactMissing:
		return "ArtifactMissing"
	case KindArtifactCorrupt:
		return "ArtifactCorrupt"
	case KindInferenceFailure:
		return "InferenceFailure"
	case KindInvalidInput:
		return "InvalidInput"
	default:
		return "Unknown"
	}
}

// Kind returns the taxonomy kind of err. InferenceFailure takes precedence, so
// an InferenceFailure wrapping a DimensionError is still an InferenceFailure.
func Kind(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}

	var missing *ArtifactMissingError
	var corrupt *ArtifactCorruptError
	var inference *InferenceFailureError
	var invalid *InvalidInputError
	var panicErr *PanicError

	switch {
	case As(err, &inference), As(err, &panicErr):
		return KindInferenceFailure
	case As(err, &invalid):
		return KindInvalidInput
	case As(err, &missing):
		return KindArtifactMissing
	case As(err, &corrupt):
		return KindArtifactCorrupt
	default:
		return KindUnknown
	}
}
