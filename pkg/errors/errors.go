// Package errors はプロジェクト全体のエラーハンドリングと警告システムを提供します。
// scikit-learnの警告・例外システムにインスパイアされており、構造化されたエラー情報を提供します。
//
// Every constructor attaches a stack trace and marks the error with one of the
// kind sentinels (ErrInvalidInput, ErrNotReady, ...), so callers can branch with
// errors.Is regardless of the concrete type.
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
		// デフォルトのハンドラは標準エラー出力にログを出す
		log.Printf("gosvm-Warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler はライブラリ全体の警告ハンドラを設定します。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが利用可能な場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
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

// DataConversionWarning is raised when input values are accepted but do not have
// the form the estimator expects, e.g. class labels outside {-1, +1}.
type DataConversionWarning struct {
	FromType string
	ToType   string
	Reason   string
}

func (w *DataConversionWarning) Error() string {
	return fmt.Sprintf("data converted from %s to %s. Reason: %s", w.FromType, w.ToType, w.Reason)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *DataConversionWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("from_type", w.FromType).
		Str("to_type", w.ToType).
		Str("reason", w.Reason).
		Str("type", "DataConversionWarning")
}

// NewDataConversionWarning は新しいDataConversionWarningを作成します。
func NewDataConversionWarning(from, to, reason string) *DataConversionWarning {
	return &DataConversionWarning{FromType: from, ToType: to, Reason: reason}
}

// ===========================================================================
//
//	エラー種別（センチネル）
//
// ===========================================================================

var (
	// ErrInvalidInput marks malformed shapes, sample counts and parameter values.
	ErrInvalidInput = New("invalid input")

	// ErrNotReady marks operations invoked before the model was trained or loaded.
	ErrNotReady = New("model not ready")

	// ErrUnsupportedOperation marks requests the current model state cannot serve.
	ErrUnsupportedOperation = New("unsupported operation")

	// ErrNotConverged marks optimizers that hit their iteration cap.
	ErrNotConverged = New("training did not converge")

	// ErrNumericDegeneracy marks NaN/Inf results and zero-range features.
	ErrNumericDegeneracy = New("numeric degeneracy")

	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = New("empty data")
)

// Error codes used as structured log values and metric labels.
const (
	CodeInvalidInput      = "INVALID_INPUT"
	CodeNotFitted         = "NOT_FITTED"
	CodeUnsupported       = "UNSUPPORTED_OPERATION"
	CodeConvergence       = "CONVERGENCE_FAILURE"
	CodeNumericDegeneracy = "NUMERIC_DEGENERACY"
	CodePanic             = "PANIC"
	CodeUnknown           = "UNKNOWN"
)

// Code maps err onto one of the Code* constants.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrEmptyData):
		return CodeInvalidInput
	case errors.Is(err, ErrNotReady):
		return CodeNotFitted
	case errors.Is(err, ErrUnsupportedOperation):
		return CodeUnsupported
	case errors.Is(err, ErrNotConverged):
		return CodeConvergence
	case errors.Is(err, ErrNumericDegeneracy):
		return CodeNumericDegeneracy
	}
	var p *PanicError
	if errors.As(err, &p) {
		return CodePanic
	}
	return CodeUnknown
}

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// NotFittedError はモデルが未学習の状態で `Predict` や `Transform` を呼び出した場合のエラーです。
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("gosvm: %s: this model is not fitted yet. Call Fit() or Load() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError は新しいNotFittedErrorを作成し、スタックトレースを付与します。
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(errors.Mark(err, ErrNotReady))
}

// DimensionError は入力データの次元が期待値と異なる場合のエラーです。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("gosvm: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, e.axisName(), e.Expected, e.Got)
}

func (e *DimensionError) axisName() string {
	if e.Axis == 0 {
		return "rows"
	}
	return "features"
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", e.axisName()).
		Str("type", "DimensionError")
}

// NewDimensionError は新しいDimensionErrorを作成し、スタックトレースを付与します。
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(errors.Mark(err, ErrInvalidInput))
}

// ValidationError は入力パラメータの検証に失敗した場合のエラーです。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("gosvm: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError は新しいValidationErrorを作成し、スタックトレースを付与します。
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(errors.Mark(err, ErrInvalidInput))
}

// ValueError は引数の値が不適切または不正な場合に発生するエラーです。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("gosvm: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(errors.Mark(err, ErrInvalidInput))
}

// UnsupportedOperationError is returned when the model state cannot serve a request,
// e.g. support vector indices of a model loaded from a linear snapshot.
type UnsupportedOperationError struct {
	Op     string
	Reason string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("gosvm: %s: unsupported operation: %s", e.Op, e.Reason)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *UnsupportedOperationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("reason", e.Reason).
		Str("type", "UnsupportedOperationError")
}

// NewUnsupportedOperationError creates an UnsupportedOperationError with a stack trace.
func NewUnsupportedOperationError(op, reason string) error {
	err := &UnsupportedOperationError{Op: op, Reason: reason}
	return errors.WithStack(errors.Mark(err, ErrUnsupportedOperation))
}

// ConvergenceError は最適化アルゴリズムが反復上限に達しても収束しなかった場合のエラーです。
type ConvergenceError struct {
	Algorithm  string
	Iterations int
	Passes     int // consecutive sweeps without updates when the cap was hit
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("gosvm: %s failed to converge after %d iterations (%d stalled passes). Consider increasing max_iterations or adjusting C/tol.",
		e.Algorithm, e.Iterations, e.Passes)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ConvergenceError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("algorithm", e.Algorithm).
		Int("iterations", e.Iterations).
		Int("passes", e.Passes).
		Str("type", "ConvergenceError")
}

// NewConvergenceError creates a ConvergenceError with a stack trace.
func NewConvergenceError(algorithm string, iterations, passes int) error {
	err := &ConvergenceError{Algorithm: algorithm, Iterations: iterations, Passes: passes}
	return errors.WithStack(errors.Mark(err, ErrNotConverged))
}

// ModelError は機械学習モデルに関する一般的なエラーです。
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gosvm: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("gosvm: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError は新しいModelErrorを作成し、スタックトレースを付与します。
func NewModelError(op, kind string, err error) error {
	modelErr := &ModelError{Op: op, Kind: kind, Err: err}
	return errors.WithStack(modelErr)
}

// NumericalInstabilityError は数値計算が不安定になった場合のエラーです。
// NaN、Inf、ゼロ幅の特徴量などを検出します。
type NumericalInstabilityError struct {
	Operation string    // 発生した操作（例: "whitening", "bias_update"）
	Values    []float64 // 問題のある値
	Iteration int       // 発生したイテレーション番号（特徴量の場合は列番号）
}

func (e *NumericalInstabilityError) Error() string {
	valStr := ""
	for i, v := range e.Values {
		if i > 0 {
			valStr += ", "
		}
		if i >= 5 {
			valStr += "..."
			break
		}
		valStr += fmt.Sprintf("%.6g", v)
	}
	return fmt.Sprintf("gosvm: numerical instability detected in %s at index %d. Values: [%s]",
		e.Operation, e.Iteration, valStr)
}

// NewNumericalInstabilityError は新しいNumericalInstabilityErrorを作成します。
func NewNumericalInstabilityError(operation string, values []float64, iteration int) error {
	err := &NumericalInstabilityError{
		Operation: operation,
		Values:    values,
		Iteration: iteration,
	}
	return errors.WithStack(errors.Mark(err, ErrNumericDegeneracy))
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}

// Mark tags err so that errors.Is(err, kind) reports true.
func Mark(err, kind error) error {
	return errors.Mark(err, kind)
}
