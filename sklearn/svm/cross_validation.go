package svm

import (
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/gosvm/pkg/errors"
)

// Splitter produces train/test index folds over n samples.
type Splitter interface {
	Split(n int) []Fold
}

// Fold is one train/test partition.
type Fold struct {
	TrainIndices []int
	TestIndices  []int
}

// KFold splits samples into NSplits contiguous folds, optionally shuffled.
type KFold struct {
	NSplits int
	Shuffle bool
	Seed    uint64
}

// NewKFold creates a k-fold splitter. nSplits below 2 falls back to 5.
func NewKFold(nSplits int, shuffle bool, seed uint64) *KFold {
	if nSplits < 2 {
		nSplits = 5
	}
	return &KFold{NSplits: nSplits, Shuffle: shuffle, Seed: seed}
}

// Split generates the folds. The first n%NSplits folds get one extra sample.
func (kf *KFold) Split(n int) []Fold {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	if kf.Shuffle {
		r := rand.New(rand.NewPCG(kf.Seed, kf.Seed))
		r.Shuffle(n, func(i, j int) { indices[i], indices[j] = indices[j], indices[i] })
	}

	if n == 0 {
		return nil
	}
	k := kf.NSplits
	if k > n {
		k = n
	}
	folds := make([]Fold, 0, k)
	foldSize, remainder := n/k, n%k
	current := 0
	for f := 0; f < k; f++ {
		size := foldSize
		if f < remainder {
			size++
		}
		test := append([]int(nil), indices[current:current+size]...)
		train := make([]int, 0, n-size)
		train = append(train, indices[:current]...)
		train = append(train, indices[current+size:]...)
		folds = append(folds, Fold{TrainIndices: train, TestIndices: test})
		current += size
	}
	return folds
}

// LeaveOneOut holds out each sample once.
type LeaveOneOut struct{}

// Split generates n folds with a single test sample each.
func (LeaveOneOut) Split(n int) []Fold {
	return (&KFold{NSplits: n}).Split(n)
}

// CVResult stores per-fold scores.
type CVResult struct {
	TestScores []float64
	FitTimes   []time.Duration
	// Failed counts folds whose training did not converge; they score 0.
	Failed int
}

// MeanScore returns the mean test accuracy.
func (r *CVResult) MeanScore() float64 {
	if len(r.TestScores) == 0 {
		return 0
	}
	return stat.Mean(r.TestScores, nil)
}

// StdScore returns the sample standard deviation of the test accuracy.
func (r *CVResult) StdScore() float64 {
	if len(r.TestScores) <= 1 {
		return 0
	}
	return math.Sqrt(stat.Variance(r.TestScores, nil))
}

// CrossValidate trains a fresh model from newModel on every fold and scores it
// by accuracy on the held-out samples. Training errors other than
// ErrNotConverged abort the run.
func CrossValidate(newModel func() (*SVC, error), X, y mat.Matrix, splitter Splitter) (*CVResult, error) {
	n, _ := X.Dims()
	yRows, _ := y.Dims()
	if n != yRows {
		return nil, errors.NewDimensionError("CrossValidate", n, yRows, 0)
	}
	if n < 3 {
		return nil, errors.NewValueError("CrossValidate", "need at least 3 samples")
	}

	folds := splitter.Split(n)
	result := &CVResult{
		TestScores: make([]float64, 0, len(folds)),
		FitTimes:   make([]time.Duration, 0, len(folds)),
	}
	for _, fold := range folds {
		clf, err := newModel()
		if err != nil {
			return nil, err
		}
		Xtr, ytr := subset(X, y, fold.TrainIndices)
		Xte, yte := subset(X, y, fold.TestIndices)

		start := time.Now()
		err = clf.Fit(Xtr, ytr)
		result.FitTimes = append(result.FitTimes, time.Since(start))
		if err != nil {
			if errors.Is(err, errors.ErrNotConverged) {
				result.Failed++
				result.TestScores = append(result.TestScores, 0)
				continue
			}
			return nil, err
		}

		score, err := clf.Score(Xte, yte)
		if err != nil {
			return nil, err
		}
		result.TestScores = append(result.TestScores, score)
	}
	return result, nil
}

func subset(X, y mat.Matrix, indices []int) (*mat.Dense, *mat.Dense) {
	_, c := X.Dims()
	xs := mat.NewDense(len(indices), c, nil)
	ys := mat.NewDense(len(indices), 1, nil)
	for i, idx := range indices {
		xs.SetRow(i, mat.Row(nil, idx, X))
		ys.Set(i, 0, y.At(idx, 0))
	}
	return xs, ys
}
