package svm

import (
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gosvm/kernel"
	"github.com/YuminosukeSato/gosvm/pkg/errors"
)

// smoProblem is the fit-scoped input of the optimizer. rows are already
// whitened when whitening is enabled.
type smoProblem struct {
	rows   [][]float64
	labels []float64
	kernel kernel.Kernel
	cfg    Config
	random RandomSource

	// onSweep is invoked after every sweep; a non-nil error aborts training.
	onSweep func(env *CallbackEnv) error
}

// smoSolution is the raw dual solution over all training rows.
type smoSolution struct {
	alphas []float64
	bias   float64
	iter   int
	passes int
}

// smoSolver holds the mutable optimizer state for one training call.
type smoSolver struct {
	p     *smoProblem
	gram  *mat.SymDense
	alpha []float64
	b     float64
}

// solveSMO runs simplified SMO: the full Gram matrix is computed once, then
// sweeps over all rows update (i, j) pairs, with j drawn uniformly from the
// other rows, until MaxPasses consecutive sweeps change nothing.
// Reaching MaxIterations first is reported as a ConvergenceError.
func solveSMO(p *smoProblem) (*smoSolution, error) {
	n := len(p.rows)
	s := &smoSolver{
		p:     p,
		gram:  kernel.GramRows(p.kernel, p.rows),
		alpha: make([]float64, n),
	}

	iter, passes := 0, 0
	for passes < p.cfg.MaxPasses && iter < p.cfg.MaxIterations {
		begin := time.Now()
		updates := s.sweep()
		iter++
		if updates == 0 {
			passes++
		} else {
			passes = 0
		}

		if p.onSweep != nil {
			env := &CallbackEnv{
				Iteration: iter,
				Updates:   updates,
				Passes:    passes,
				Bias:      s.b,
				NonZero:   s.countAbove(p.cfg.AlphaTol),
				BeginTime: begin,
				EndTime:   time.Now(),
			}
			if err := p.onSweep(env); err != nil {
				return nil, errors.Wrapf(err, "callback aborted training at sweep %d", iter)
			}
		}
	}

	if passes < p.cfg.MaxPasses {
		return nil, errors.NewConvergenceError("SMO", iter, passes)
	}
	if err := errors.CheckScalar("smo.bias", s.b, iter); err != nil {
		return nil, err
	}
	if err := errors.CheckNumericalStability("smo.alphas", s.alpha, iter); err != nil {
		return nil, err
	}

	return &smoSolution{alphas: s.alpha, bias: s.b, iter: iter, passes: passes}, nil
}

// margin is f(i) = b + Σ_k alpha_k·y_k·K[i][k] under the current solution.
func (s *smoSolver) margin(i int) float64 {
	f := s.b
	for k, a := range s.alpha {
		if a != 0 {
			f += a * s.p.labels[k] * s.gram.At(i, k)
		}
	}
	return f
}

// partner draws j != i by rejection sampling.
func (s *smoSolver) partner(i int) int {
	n := len(s.alpha)
	j := i
	for j == i {
		j = int(s.p.random.Float64() * float64(n))
		if j >= n {
			j = n - 1
		}
	}
	return j
}

// sweep visits every row once and returns the number of committed pair updates.
func (s *smoSolver) sweep() int {
	y := s.p.labels
	C, tol := s.p.cfg.C, s.p.cfg.Tol
	updates := 0

	for i := range s.alpha {
		Ei := s.margin(i) - y[i]
		violates := (y[i]*Ei < -tol && s.alpha[i] < C) || (y[i]*Ei > tol && s.alpha[i] > 0)
		if !violates {
			continue
		}

		j := s.partner(i)
		Ej := s.margin(j) - y[j]
		ai, aj := s.alpha[i], s.alpha[j]

		var L, H float64
		if y[i] == y[j] {
			L = math.Max(0, ai+aj-C)
			H = math.Min(C, ai+aj)
		} else {
			L = math.Max(0, aj-ai)
			H = math.Min(C, C+aj-ai)
		}
		if math.Abs(L-H) < boxEpsilon {
			continue
		}

		Kii, Kjj, Kij := s.gram.At(i, i), s.gram.At(j, j), s.gram.At(i, j)
		eta := 2*Kij - Kii - Kjj
		if eta >= 0 {
			continue
		}

		newAj := errors.ClipValue(aj-y[j]*(Ei-Ej)/eta, L, H)
		if math.Abs(aj-newAj) < stepEpsilon {
			continue
		}

		s.alpha[j] = newAj
		s.alpha[i] += y[i] * y[j] * (aj - newAj)

		b1 := s.b - Ei - y[i]*(s.alpha[i]-ai)*Kii - y[j]*(s.alpha[j]-aj)*Kij
		b2 := s.b - Ej - y[i]*(s.alpha[i]-ai)*Kij - y[j]*(s.alpha[j]-aj)*Kjj
		s.b = (b1 + b2) / 2
		if s.alpha[i] > 0 && s.alpha[i] < C {
			s.b = b1
		}
		// alpha_j の条件が後に評価されるため、両方が内点ならb2が優先される
		if s.alpha[j] > 0 && s.alpha[j] < C {
			s.b = b2
		}
		updates++
	}
	return updates
}

func (s *smoSolver) countAbove(tol float64) int {
	c := 0
	for _, a := range s.alpha {
		if a > tol {
			c++
		}
	}
	return c
}

// primalWeights computes W[r] = Σ_i y_i·alpha_i·X[i][r] over all training rows.
func primalWeights(rows [][]float64, labels, alphas []float64) []float64 {
	if len(rows) == 0 {
		return nil
	}
	w := make([]float64, len(rows[0]))
	for i, row := range rows {
		coef := labels[i] * alphas[i]
		if coef == 0 {
			continue
		}
		for r, v := range row {
			w[r] += coef * v
		}
	}
	return w
}

// supportSet is the pruned training data: rows whose alpha exceeds AlphaTol.
type supportSet struct {
	indices []int
	rows    [][]float64
	labels  []float64
	alphas  []float64
}

func pruneSupport(rows [][]float64, labels, alphas []float64, alphaTol float64) *supportSet {
	s := &supportSet{}
	for i, a := range alphas {
		if a > alphaTol {
			s.indices = append(s.indices, i)
			s.rows = append(s.rows, rows[i])
			s.labels = append(s.labels, labels[i])
			s.alphas = append(s.alphas, a)
		}
	}
	return s
}
