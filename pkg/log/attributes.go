// Package log defines standard attribute keys for machine learning operations.
//
// Keys follow a hierarchical naming convention (e.g. "model.name",
// "data.samples") so that log lines from different estimators can be filtered
// and aggregated the same way.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the type of machine learning model.
	// Examples: "SVC", "MinMaxScaler"
	ModelNameKey = "model.name"

	// EstimatorIDKey provides a unique identifier for a specific model instance.
	EstimatorIDKey = "estimator.id"

	// OperationKey specifies the machine learning operation being performed.
	OperationKey = "ml.operation"

	// ComponentKey identifies which component or package is performing the operation.
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of model lifecycle.
	PhaseKey = "ml.phase"
)

// Data Shape
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) in the dataset.
	FeaturesKey = "data.features"
)

// Performance and training progress
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// AccuracyKey records model accuracy for evaluation operations.
	AccuracyKey = "metrics.accuracy"

	// IterationKey records the current sweep number of an iterative optimizer.
	IterationKey = "training.iteration"

	// PassesKey records consecutive sweeps without a coordinate update.
	PassesKey = "training.passes"

	// UpdatesKey records the number of coordinate updates in a sweep.
	UpdatesKey = "training.updates"
)

// SVM specific attributes
const (
	// KernelKey records the kernel type of a support vector machine.
	KernelKey = "svm.kernel"

	// SupportVectorsKey records the number of retained support vectors.
	SupportVectorsKey = "svm.support_vectors"

	// BiasKey records the bias term of the decision function.
	BiasKey = "svm.bias"
)

// Prediction Context
const (
	// PredsKey indicates the number of predictions made.
	PredsKey = "preds.count"
)

// Error and Warning Context
const (
	// ErrorCodeKey provides a structured error code (see errors.Code).
	ErrorCodeKey = "error.code"

	// ErrorTypeKey categorizes the type of error encountered.
	ErrorTypeKey = "error.type"

	// StacktraceKey contains stack trace information for debugging.
	StacktraceKey = "error.stacktrace"

	// SuggestionKey provides helpful suggestions for resolving issues.
	SuggestionKey = "error.suggestion"
)

// Hyperparameters and Configuration
const (
	// RegularizationKey records the box constraint C.
	RegularizationKey = "hyperparams.regularization"

	// ToleranceKey records the KKT violation tolerance.
	ToleranceKey = "hyperparams.tol"

	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"
)

// Standard attribute values.
const (
	OperationFit              = "fit"
	OperationPredict          = "predict"
	OperationDecisionFunction = "decision_function"
	OperationTransform        = "transform"
	OperationFitTransform     = "fit_transform"
	OperationScore            = "score"
	OperationExport           = "export"
	OperationLoad             = "load"

	PhaseTraining      = "training"
	PhaseInference     = "inference"
	PhasePreprocessing = "preprocessing"
)
