package model

import (
	"gonum.org/v1/gonum/mat"
)

// Scorer is the interface for models that can compute a score.
type Scorer interface {
	// Score returns the mean accuracy on the given samples and labels.
	Score(X mat.Matrix, y mat.Matrix) (float64, error)
}

// ParameterGetter is the interface for models that expose their parameters.
type ParameterGetter interface {
	// GetParams returns the model's hyperparameters.
	GetParams() map[string]interface{}
}

// Exporter is implemented by estimators whose trained state can be captured
// as a snapshot value of type S.
type Exporter[S any] interface {
	// Export returns a snapshot of a trained or loaded model.
	Export() (S, error)
}
