package kernel

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gosvm/core/parallel"
)

// Rows copies the rows of X into freshly allocated slices.
func Rows(X mat.Matrix) [][]float64 {
	r, _ := X.Dims()
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = mat.Row(nil, i, X)
	}
	return rows
}

// Gram returns the symmetric matrix K[i][j] = k(X_i, X_j).
//
// Rows are distributed across CPU cores once the dataset is larger than
// parallel.DefaultThreshold; every cell is computed exactly once, so the
// result does not depend on scheduling.
func Gram(k Kernel, X mat.Matrix) *mat.SymDense {
	return GramRows(k, Rows(X))
}

// GramRows is Gram over rows already extracted from a matrix.
func GramRows(k Kernel, rows [][]float64) *mat.SymDense {
	n := len(rows)
	if n == 0 {
		return &mat.SymDense{}
	}
	g := mat.NewSymDense(n, nil)
	parallel.ParallelizeWithThreshold(n, parallel.DefaultThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			for j := i; j < n; j++ {
				g.SetSym(i, j, k.Compute(rows[i], rows[j]))
			}
		}
	})
	return g
}

// Cross returns the len(A)×len(B) matrix K[i][j] = k(A_i, B_j).
func Cross(k Kernel, A, B mat.Matrix) *mat.Dense {
	return CrossRows(k, Rows(A), Rows(B))
}

// CrossRows is Cross over extracted rows.
func CrossRows(k Kernel, a, b [][]float64) *mat.Dense {
	if len(a) == 0 || len(b) == 0 {
		return &mat.Dense{}
	}
	out := mat.NewDense(len(a), len(b), nil)
	parallel.ParallelizeWithThreshold(len(a), parallel.DefaultThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			for j, y := range b {
				out.Set(i, j, k.Compute(a[i], y))
			}
		}
	})
	return out
}
