package svm

import (
	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/gosvm/kernel"
)

// Decision is the learned decision function, chosen once when training ends:
// LinearModel for the linear kernel, KernelModel otherwise.
//
// Score excludes the bias; x must already be whitened when whitening is on.
type Decision interface {
	Score(k kernel.Kernel, x []float64) float64
	// NumFeatures returns the input dimensionality, or -1 when it cannot be
	// derived from the model alone (a kernel model with no support vectors).
	NumFeatures() int
	decision()
}

// LinearModel scores with the primal weight vector W.
type LinearModel struct {
	W []float64
}

// Score returns W·x.
func (m *LinearModel) Score(_ kernel.Kernel, x []float64) float64 {
	return floats.Dot(m.W, x)
}

func (m *LinearModel) NumFeatures() int { return len(m.W) }

func (*LinearModel) decision() {}

// KernelModel scores against the retained support vectors.
type KernelModel struct {
	X      [][]float64
	Y      []float64
	Alphas []float64
}

// Score returns Σ alpha_i·y_i·k(x, X_i).
func (m *KernelModel) Score(k kernel.Kernel, x []float64) float64 {
	var s float64
	for i, sv := range m.X {
		s += m.Alphas[i] * m.Y[i] * k.Compute(x, sv)
	}
	return s
}

func (m *KernelModel) NumFeatures() int {
	if len(m.X) == 0 {
		return -1
	}
	return len(m.X[0])
}

func (*KernelModel) decision() {}

// classify applies the score > 0 rule.
func classify(score float64) float64 {
	if score > 0 {
		return 1
	}
	return -1
}
