// Package svm implements a binary support vector classifier trained with
// Sequential Minimal Optimization.
//
// Labels are -1 and +1. Features are whitened to [0,1] per dimension by
// default, the kernel is pluggable (see package kernel), and a trained model
// can be exported to a Snapshot and loaded back without retraining.
//
//	clf, err := svm.NewSVC(svm.WithKernel(kernel.Config{Type: kernel.RBF, Sigma: 0.2}), svm.WithSeed(42))
//	if err != nil { ... }
//	if err := clf.Fit(X, y); err != nil { ... }
//	pred, err := clf.Predict(Xtest)
package svm

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gosvm/core/model"
	"github.com/YuminosukeSato/gosvm/core/parallel"
	"github.com/YuminosukeSato/gosvm/kernel"
	"github.com/YuminosukeSato/gosvm/metrics"
	"github.com/YuminosukeSato/gosvm/pkg/errors"
	"github.com/YuminosukeSato/gosvm/pkg/log"
	"github.com/YuminosukeSato/gosvm/preprocessing"
)

const modelName = "SVC"

// SVC is a binary support vector classifier.
//
// An SVC is untrained after NewSVC, trained after a successful Fit, and loaded
// when created by Load. Prediction, export and support vector queries require
// trained or loaded. A failed Fit leaves the previous state untouched.
//
// Concurrent calls to the read-only methods (Predict, DecisionFunction, ...)
// are safe; Fit must not run concurrently with any other method.
type SVC struct {
	id        string
	cfg       Config
	kernel    kernel.Kernel
	random    RandomSource
	callbacks []Callback

	state    *model.StateManager
	scaler   *preprocessing.MinMaxScaler // nil when whitening is disabled
	decision Decision
	bias     float64
	support  *supportSet // nil when loaded from a snapshot without indices
	nIter    int
}

var (
	_ model.Classifier         = (*SVC)(nil)
	_ model.ParameterGetter    = (*SVC)(nil)
	_ model.Exporter[Snapshot] = (*SVC)(nil)
)

// Option configures an SVC.
type Option func(*SVC)

// WithConfig replaces the whole hyperparameter set.
func WithConfig(cfg Config) Option {
	return func(s *SVC) { s.cfg = cfg }
}

// WithC sets the box constraint.
func WithC(c float64) Option {
	return func(s *SVC) { s.cfg.C = c }
}

// WithTol sets the KKT violation tolerance.
func WithTol(tol float64) Option {
	return func(s *SVC) { s.cfg.Tol = tol }
}

// WithMaxPasses sets the number of idle sweeps that ends training.
func WithMaxPasses(n int) Option {
	return func(s *SVC) { s.cfg.MaxPasses = n }
}

// WithMaxIterations sets the sweep cap.
func WithMaxIterations(n int) Option {
	return func(s *SVC) { s.cfg.MaxIterations = n }
}

// WithAlphaTol sets the support vector retention threshold.
func WithAlphaTol(tol float64) Option {
	return func(s *SVC) { s.cfg.AlphaTol = tol }
}

// WithKernel selects the kernel.
func WithKernel(cfg kernel.Config) Option {
	return func(s *SVC) { s.cfg.Kernel = cfg }
}

// WithWhitening enables or disables min/max feature scaling.
func WithWhitening(enabled bool) Option {
	return func(s *SVC) { s.cfg.Whitening = enabled }
}

// WithSeed seeds the default partner-selection generator.
func WithSeed(seed uint64) Option {
	return func(s *SVC) { s.cfg.Seed = seed }
}

// WithRandomSource injects the partner-selection generator. It takes
// precedence over the seed.
func WithRandomSource(r RandomSource) Option {
	return func(s *SVC) { s.random = r }
}

// WithCallbacks registers per-sweep callbacks.
func WithCallbacks(cbs ...Callback) Option {
	return func(s *SVC) { s.callbacks = append(s.callbacks, cbs...) }
}

// NewSVC creates an untrained classifier from DefaultConfig and opts.
// Invalid hyperparameters are reported here as ErrInvalidInput.
func NewSVC(opts ...Option) (*SVC, error) {
	s := &SVC{
		id:    uuid.NewString(),
		cfg:   DefaultConfig(),
		state: model.NewStateManager(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}
	k, err := kernel.New(s.cfg.Kernel)
	if err != nil {
		return nil, err
	}
	s.kernel = k
	s.cfg.Kernel = k.Config()

	if s.random == nil {
		seed := s.cfg.Seed
		if seed == 0 {
			seed = rand.Uint64()
		}
		s.random = NewRandomSource(seed)
	}
	return s, nil
}

func (s *SVC) logger() log.Logger {
	return log.GetLoggerWithName("svm").With(
		log.ModelNameKey, modelName,
		log.EstimatorIDKey, s.id,
	)
}

// Fit trains the classifier on X (n_samples × n_features) and y (n_samples × 1, values ±1).
//
// X must have as many rows as y and at least two rows. Labels other than ±1
// produce a DataConversionWarning and are used as given. Reaching
// MaxIterations before MaxPasses idle sweeps returns a ConvergenceError.
func (s *SVC) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "SVC.Fit")

	start := time.Now()
	logger := s.logger()

	rows, labels, err := s.validateTrainingData(X, y)
	if err != nil {
		logger.Error("Invalid training data", err,
			log.OperationKey, log.OperationFit,
			log.ErrorCodeKey, errors.Code(err),
		)
		return err
	}
	nSamples, nFeatures := len(rows), len(rows[0])

	logger.Info("Training started",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		log.KernelKey, string(s.cfg.Kernel.Type),
		log.RegularizationKey, s.cfg.C,
		log.ToleranceKey, s.cfg.Tol,
	)

	var scaler *preprocessing.MinMaxScaler
	if s.cfg.Whitening {
		scaler = preprocessing.NewMinMaxScaler()
		if err := scaler.Fit(mat.NewDense(nSamples, nFeatures, flatten(rows))); err != nil {
			s.logFitFailure(logger, err)
			return err
		}
		for _, row := range rows {
			if _, err := scaler.TransformRow(row, row); err != nil {
				s.logFitFailure(logger, err)
				return err
			}
		}
	}

	sol, err := solveSMO(&smoProblem{
		rows:    rows,
		labels:  labels,
		kernel:  s.kernel,
		cfg:     s.cfg,
		random:  s.random,
		onSweep: s.runCallbacks,
	})
	if err != nil {
		s.logFitFailure(logger, err)
		return err
	}

	support := pruneSupport(rows, labels, sol.alphas, s.cfg.AlphaTol)
	var decision Decision
	if s.cfg.Kernel.Type == kernel.Linear {
		decision = &LinearModel{W: primalWeights(rows, labels, sol.alphas)}
	} else {
		decision = &KernelModel{X: support.rows, Y: support.labels, Alphas: support.alphas}
	}

	// 成功した場合のみ状態を置き換える
	s.scaler = scaler
	s.decision = decision
	s.bias = sol.bias
	s.support = support
	s.nIter = sol.iter
	s.state.MarkTrained(nFeatures, nSamples)

	logger.Info("Training completed",
		log.OperationKey, log.OperationFit,
		log.IterationKey, sol.iter,
		log.SupportVectorsKey, len(support.indices),
		log.BiasKey, sol.bias,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

func (s *SVC) logFitFailure(logger log.Logger, err error) {
	logger.Error("Training failed", err,
		log.OperationKey, log.OperationFit,
		log.ErrorCodeKey, errors.Code(err),
	)
}

func (s *SVC) runCallbacks(env *CallbackEnv) error {
	env.Model = s
	for _, cb := range s.callbacks {
		if err := cb(env); err != nil {
			return err
		}
	}
	return nil
}

// validateTrainingData copies X and y into model-owned buffers.
func (s *SVC) validateTrainingData(X, y mat.Matrix) ([][]float64, []float64, error) {
	if X == nil || y == nil {
		return nil, nil, errors.NewValueError("SVC.Fit", "X and y must not be nil")
	}
	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()

	if nSamples != yRows {
		return nil, nil, errors.NewDimensionError("SVC.Fit", nSamples, yRows, 0)
	}
	if yCols != 1 {
		return nil, nil, errors.NewValueError("SVC.Fit", fmt.Sprintf("y must be a column vector, got %d columns", yCols))
	}
	if nSamples < 2 {
		return nil, nil, errors.NewValueError("SVC.Fit", fmt.Sprintf("cannot train with less than 2 observations, got %d", nSamples))
	}
	if nFeatures == 0 {
		return nil, nil, errors.NewValueError("SVC.Fit", "X has no features")
	}
	// 特徴量数は最初の学習（またはロード）で固定される
	if s.state.IsFitted() {
		if want := s.NFeatures(); nFeatures != want {
			return nil, nil, errors.NewDimensionError("SVC.Fit", want, nFeatures, 1)
		}
	}

	rows := kernel.Rows(X)
	for i, row := range rows {
		if err := errors.CheckNumericalStability("SVC.Fit input", row, i); err != nil {
			return nil, nil, errors.Mark(err, errors.ErrInvalidInput)
		}
	}

	labels := make([]float64, nSamples)
	invalid := 0
	for i := range labels {
		labels[i] = y.At(i, 0)
		if labels[i] != 1 && labels[i] != -1 {
			invalid++
		}
	}
	if invalid > 0 {
		errors.Warn(errors.NewDataConversionWarning("float64", "{-1,+1}",
			fmt.Sprintf("%d of %d labels are neither -1 nor +1; they are used as given", invalid, nSamples)))
	}
	return rows, labels, nil
}

func flatten(rows [][]float64) []float64 {
	out := make([]float64, 0, len(rows)*len(rows[0]))
	for _, r := range rows {
		out = append(out, r...)
	}
	return out
}

// prepare whitens a copy of x unless skipWhitening is set.
func (s *SVC) prepare(op string, x []float64, skipWhitening bool) ([]float64, error) {
	if err := s.state.RequireFitted(modelName, op); err != nil {
		return nil, err
	}
	if err := s.state.RequireFeatures("SVC."+op, len(x)); err != nil {
		return nil, err
	}
	if s.scaler == nil || skipWhitening {
		return x, nil
	}
	return s.scaler.TransformRow(nil, x)
}

// MarginOne returns the raw score b + f(x) for one vector. With skipWhitening
// the vector is assumed to be whitened already.
func (s *SVC) MarginOne(x []float64, skipWhitening bool) (float64, error) {
	xp, err := s.prepare("MarginOne", x, skipWhitening)
	if err != nil {
		return 0, err
	}
	return s.bias + s.decision.Score(s.kernel, xp), nil
}

// PredictOne classifies one vector: +1 if its margin is positive, otherwise -1.
func (s *SVC) PredictOne(x []float64) (float64, error) {
	m, err := s.MarginOne(x, false)
	if err != nil {
		return 0, err
	}
	return classify(m), nil
}

// Margin returns the raw score of every row of X.
func (s *SVC) Margin(X mat.Matrix) ([]float64, error) {
	if err := s.state.RequireFitted(modelName, "Margin"); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	if err := s.state.RequireFeatures("SVC.Margin", c); err != nil {
		return nil, err
	}

	out := make([]float64, r)
	parallel.ParallelizeWithThreshold(r, parallel.DefaultThreshold, func(start, end int) {
		row := make([]float64, c)
		for i := start; i < end; i++ {
			mat.Row(row, i, X)
			if s.scaler != nil {
				// 次元は検証済みのためエラーにならない
				_, _ = s.scaler.TransformRow(row, row)
			}
			out[i] = s.bias + s.decision.Score(s.kernel, row)
		}
	})
	return out, nil
}

// DecisionFunction returns the raw scores as an n_samples × 1 matrix.
func (s *SVC) DecisionFunction(X mat.Matrix) (mat.Matrix, error) {
	m, err := s.Margin(X)
	if err != nil {
		return nil, err
	}
	return mat.NewDense(len(m), 1, m), nil
}

// Predict classifies every row of X, returning an n_samples × 1 matrix of ±1.
func (s *SVC) Predict(X mat.Matrix) (mat.Matrix, error) {
	m, err := s.Margin(X)
	if err != nil {
		return nil, err
	}
	for i, v := range m {
		m[i] = classify(v)
	}

	s.logger().Debug("Prediction completed",
		log.OperationKey, log.OperationPredict,
		log.PhaseKey, log.PhaseInference,
		log.PredsKey, len(m),
	)
	return mat.NewDense(len(m), 1, m), nil
}

// Score returns the mean accuracy on X and y.
func (s *SVC) Score(X, y mat.Matrix) (float64, error) {
	pred, err := s.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyMatrix(y, pred)
}

// SupportVectors returns the training row indices of the support vectors.
//
// A model loaded from a linear snapshot does not carry them and returns an
// UnsupportedOperationError. Kernel snapshots written by Export include the
// indices, so models loaded from them can answer.
func (s *SVC) SupportVectors() ([]int, error) {
	if err := s.state.RequireFitted(modelName, "SupportVectors"); err != nil {
		return nil, err
	}
	if s.support == nil {
		reason := "the snapshot this model was loaded from does not record support vector indices"
		if _, linear := s.decision.(*LinearModel); linear {
			reason = "a model loaded from a linear snapshot does not retain support vectors; train the model to obtain them"
		}
		return nil, errors.NewUnsupportedOperationError("SVC.SupportVectors", reason)
	}
	return append([]int(nil), s.support.indices...), nil
}

// Weights returns the primal weight vector of a linear model.
func (s *SVC) Weights() ([]float64, error) {
	if err := s.state.RequireFitted(modelName, "Weights"); err != nil {
		return nil, err
	}
	lm, ok := s.decision.(*LinearModel)
	if !ok {
		return nil, errors.NewUnsupportedOperationError("SVC.Weights",
			fmt.Sprintf("weights exist only for the linear kernel, model uses %s", s.cfg.Kernel.Type))
	}
	return append([]float64(nil), lm.W...), nil
}

// Bias returns the bias term b.
func (s *SVC) Bias() float64 { return s.bias }

// NIter returns the number of sweeps performed by the last successful Fit
// (zero for a loaded model).
func (s *SVC) NIter() int { return s.nIter }

// Decision returns the learned decision function, nil before training.
func (s *SVC) Decision() Decision { return s.decision }

// ID returns the estimator identifier used in logs and snapshots.
func (s *SVC) ID() string { return s.id }

// Config returns the hyperparameters.
func (s *SVC) Config() Config { return s.cfg }

// State returns the lifecycle state.
func (s *SVC) State() model.EstimatorState { return s.state.State() }

// Lifecycle returns the state together with the dimensions fixed by Fit or Load.
func (s *SVC) Lifecycle() model.ModelState { return s.state.GetState() }

// NFeatures returns the input dimensionality fixed by Fit or Load.
func (s *SVC) NFeatures() int {
	n, _ := s.state.GetDimensions()
	return n
}

// WhiteningStats returns per-feature (min, max), or nil when whitening is off
// or the model is untrained.
func (s *SVC) WhiteningStats() (min, max []float64) {
	if s.scaler == nil {
		return nil, nil
	}
	return s.scaler.DataMin(), s.scaler.DataMax()
}

// GetParams returns the hyperparameters as a map.
func (s *SVC) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"C":              s.cfg.C,
		"tol":            s.cfg.Tol,
		"max_passes":     s.cfg.MaxPasses,
		"max_iterations": s.cfg.MaxIterations,
		"alpha_tol":      s.cfg.AlphaTol,
		"kernel":         s.cfg.Kernel.String(),
		"whitening":      s.cfg.Whitening,
	}
}

// String returns a short description.
func (s *SVC) String() string {
	if !s.state.IsFitted() {
		return fmt.Sprintf("SVC(C=%g, kernel=%s)", s.cfg.C, s.cfg.Kernel)
	}
	nSV := -1
	if s.support != nil {
		nSV = len(s.support.indices)
	}
	return fmt.Sprintf("SVC(C=%g, kernel=%s, state=%s, n_features=%d, n_support=%d)",
		s.cfg.C, s.cfg.Kernel, s.state.State(), s.NFeatures(), nSV)
}
