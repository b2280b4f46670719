// Package errors はプロジェクト全体のエラーハンドリングと警告システムを提供します。
//
// The taxonomy mirrors the failure modes of the prediction pipeline:
// artifacts that are missing or corrupt, inference that fails at runtime,
// and user input that fails validation. Every constructor attaches a stack
// trace through cockroachdb/errors.
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		log.Printf("sleepq-warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler sets the process-wide warning handler.
//
// Example:
//
//	errors.SetWarningHandler(func(w error) {
//	    // ignore warnings
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc sets the zerolog warning sink (avoids an import cycle with pkg/log).
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn emits a warning. The zerolog sink wins when configured.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	警告型
//
// ===========================================================================

// ConvergenceWarning is raised when an offline optimiser stops before converging.
type ConvergenceWarning struct {
	Algorithm  string
	Iterations int
	Message    string
}

func (w *ConvergenceWarning) Error() string {
	if w.Message != "" {
		return fmt.Sprintf("%s failed to converge after %d iterations: %s", w.Algorithm, w.Iterations, w.Message)
	}
	return fmt.Sprintf("%s failed to converge after %d iterations. Consider increasing max_iter or adjusting parameters.", w.Algorithm, w.Iterations)
}

// MarshalZerologObject adds structured warning fields to a zerolog event.
func (w *ConvergenceWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("algorithm", w.Algorithm).
		Int("iterations", w.Iterations).
		Str("message", w.Message).
		Str("type", "ConvergenceWarning")
}

// NewConvergenceWarning creates a ConvergenceWarning.
func NewConvergenceWarning(algorithm string, iterations int, message string) *ConvergenceWarning {
	return &ConvergenceWarning{Algorithm: algorithm, Iterations: iterations, Message: message}
}

// FallbackWarning is raised when a built-in default replaces a persisted resource.
type FallbackWarning struct {
	Resource string
	Reason   string
}

func (w *FallbackWarning) Error() string {
	return fmt.Sprintf("using built-in default for %s: %s", w.Resource, w.Reason)
}

// MarshalZerologObject adds structured warning fields to a zerolog event.
func (w *FallbackWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("resource", w.Resource).
		Str("reason", w.Reason).
		Str("type", "FallbackWarning")
}

// NewFallbackWarning creates a FallbackWarning.
func NewFallbackWarning(resource, reason string) *FallbackWarning {
	return &FallbackWarning{Resource: resource, Reason: reason}
}

// ===========================================================================
//
//	予測パイプラインのエラー型
//
// ===========================================================================

// ArtifactMissingError means a persisted artifact was not found where expected.
type ArtifactMissingError struct {
	Artifact string
	Path     string
}

func (e *ArtifactMissingError) Error() string {
	return fmt.Sprintf("sleepq: %s artifact not found at %q", e.Artifact, e.Path)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *ArtifactMissingError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("artifact", e.Artifact).
		Str("path", e.Path).
		Str("type", "ArtifactMissing")
}

// NewArtifactMissingError creates an ArtifactMissingError with a stack trace.
func NewArtifactMissingError(artifact, path string) error {
	return errors.WithStack(&ArtifactMissingError{Artifact: artifact, Path: path})
}

// ArtifactCorruptError means an artifact exists but cannot be read or does not
// match the layout its consumer expects.
type ArtifactCorruptError struct {
	Artifact string
	Path     string
	Reason   string
	Err      error
}

func (e *ArtifactCorruptError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sleepq: %s artifact at %q is corrupt: %s: %v", e.Artifact, e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("sleepq: %s artifact at %q is corrupt: %s", e.Artifact, e.Path, e.Reason)
}

func (e *ArtifactCorruptError) Unwrap() error {
	return e.Err
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *ArtifactCorruptError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("artifact", e.Artifact).
		Str("path", e.Path).
		Str("reason", e.Reason).
		Str("type", "ArtifactCorrupt")
	if e.Err != nil {
		event.Str("cause", e.Err.Error())
	}
}

// NewArtifactCorruptError creates an ArtifactCorruptError with a stack trace.
func NewArtifactCorruptError(artifact, path, reason string, err error) error {
	return errors.WithStack(&ArtifactCorruptError{Artifact: artifact, Path: path, Reason: reason, Err: err})
}

// InferenceFailureError wraps a runtime failure inside a predictor's forward computation.
type InferenceFailureError struct {
	Predictor string
	Err       error
}

func (e *InferenceFailureError) Error() string {
	return fmt.Sprintf("sleepq: %s inference failed: %v", e.Predictor, e.Err)
}

func (e *InferenceFailureError) Unwrap() error {
	return e.Err
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *InferenceFailureError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("predictor", e.Predictor).
		Str("cause", fmt.Sprint(e.Err)).
		Str("type", "InferenceFailure")
}

// NewInferenceFailureError creates an InferenceFailureError with a stack trace.
func NewInferenceFailureError(predictor string, err error) error {
	return errors.WithStack(&InferenceFailureError{Predictor: predictor, Err: err})
}

// InvalidInputError reports a user-correctable problem with a feature tuple.
type InvalidInputError struct {
	Field  string
	Reason string
	Value  interface{}
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("sleepq: invalid %s: %s (got: %v)", e.Field, e.Reason, e.Value)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *InvalidInputError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("field", e.Field).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "InvalidInput")
}

// NewInvalidInputError creates an InvalidInputError with a stack trace.
func NewInvalidInputError(field, reason string, value interface{}) error {
	return errors.WithStack(&InvalidInputError{Field: field, Reason: reason, Value: value})
}

// ===========================================================================
//
//	数値計算のエラー型
//
// ===========================================================================

// NotFittedError is returned when a model is used before Fit or Import.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("sleepq: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a NotFittedError with a stack trace.
func NewNotFittedError(modelName, method string) error {
	return errors.WithStack(&NotFittedError{ModelName: modelName, Method: method})
}

// DimensionError is returned when input dimensions differ from what a model expects.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("sleepq: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError creates a DimensionError with a stack trace.
func NewDimensionError(op string, expected, got, axis int) error {
	return errors.WithStack(&DimensionError{Op: op, Expected: expected, Got: got, Axis: axis})
}

// ValueError is returned when an argument has an unsuitable value.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("sleepq: %s: %s", e.Op, e.Message)
}

// NewValueError creates a ValueError with a stack trace.
func NewValueError(op, message string) error {
	return errors.WithStack(&ValueError{Op: op, Message: message})
}

// ModelError is a general model failure.
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sleepq: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("sleepq: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError creates a ModelError with a stack trace.
func NewModelError(op, kind string, err error) error {
	return errors.WithStack(&ModelError{Op: op, Kind: kind, Err: err})
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is reports whether err matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap annotates err with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf annotates err with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates an error with a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates err with a stack trace.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrEmptyData is returned when an empty dataset or matrix is supplied.
	ErrEmptyData = New("empty data")

	// ErrCascadeExhausted means every predictor tier failed. The default
	// cascade profiles end with a total predictor, so this signals a broken invariant.
	ErrCascadeExhausted = New("every predictor tier failed")
)
