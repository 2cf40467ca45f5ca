package svm

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gosvm/kernel"
	"github.com/YuminosukeSato/gosvm/pkg/errors"
)

func TestKFoldSplit(t *testing.T) {
	for _, shuffle := range []bool{false, true} {
		kf := NewKFold(3, shuffle, 5)
		folds := kf.Split(10)
		require.Len(t, folds, 3)

		var seen []int
		sizes := make([]int, 0, 3)
		for _, f := range folds {
			assert.Len(t, f.TrainIndices, 10-len(f.TestIndices))
			sizes = append(sizes, len(f.TestIndices))
			seen = append(seen, f.TestIndices...)

			inTest := make(map[int]bool)
			for _, i := range f.TestIndices {
				inTest[i] = true
			}
			for _, i := range f.TrainIndices {
				assert.False(t, inTest[i])
			}
		}
		assert.Equal(t, []int{4, 3, 3}, sizes)
		sort.Ints(seen)
		assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, seen)
	}

	assert.Equal(t, NewKFold(3, true, 5).Split(10), NewKFold(3, true, 5).Split(10))
	assert.Equal(t, 5, NewKFold(1, false, 0).NSplits)
	assert.Nil(t, NewKFold(3, false, 0).Split(0))
	assert.Len(t, NewKFold(5, false, 0).Split(3), 3)
}

func TestLeaveOneOut(t *testing.T) {
	folds := LeaveOneOut{}.Split(4)
	require.Len(t, folds, 4)
	for i, f := range folds {
		assert.Equal(t, []int{i}, f.TestIndices)
		assert.Len(t, f.TrainIndices, 3)
	}
}

func TestCrossValidateCircle(t *testing.T) {
	X, y := circleData()
	newModel := func() (*SVC, error) {
		return NewSVC(rbfOptions(1)...)
	}

	res, err := CrossValidate(newModel, X, y, NewKFold(5, true, 3))
	require.NoError(t, err)
	assert.Len(t, res.TestScores, 5)
	assert.Len(t, res.FitTimes, 5)
	assert.Equal(t, 0, res.Failed)
	for _, s := range res.TestScores {
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
	assert.Greater(t, res.MeanScore(), 0.5)
	assert.GreaterOrEqual(t, res.StdScore(), 0.0)
}

func TestCrossValidateCountsNonConvergence(t *testing.T) {
	X, y := toyData()
	newModel := func() (*SVC, error) {
		return NewSVC(WithSeed(1), WithMaxIterations(1))
	}
	res, err := CrossValidate(newModel, X, y, LeaveOneOut{})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Failed)
	assert.Equal(t, 0.0, res.MeanScore())
}

func TestCrossValidateErrors(t *testing.T) {
	X, y := toyData()
	ok := func() (*SVC, error) { return NewSVC(WithSeed(1)) }

	_, err := CrossValidate(ok, X, mat.NewDense(3, 1, nil), LeaveOneOut{})
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))

	_, err = CrossValidate(ok, mat.NewDense(2, 2, []float64{0, 0, 1, 1}), mat.NewDense(2, 1, []float64{-1, 1}), LeaveOneOut{})
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))

	bad := func() (*SVC, error) { return NewSVC(WithKernel(kernel.Config{Type: "cosine"})) }
	_, err = CrossValidate(bad, X, y, LeaveOneOut{})
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestCVResultEmpty(t *testing.T) {
	var r CVResult
	assert.Equal(t, 0.0, r.MeanScore())
	assert.Equal(t, 0.0, r.StdScore())
}
