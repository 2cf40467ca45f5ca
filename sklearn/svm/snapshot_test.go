package svm

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gosvm/core/model"
	"github.com/YuminosukeSato/gosvm/kernel"
	"github.com/YuminosukeSato/gosvm/pkg/errors"
)

// probeGrid covers the training range and some points outside it.
func probeGrid() *mat.Dense {
	var data []float64
	for x := -2.0; x <= 7; x += 0.75 {
		for y := -2.0; y <= 7; y += 0.75 {
			data = append(data, x, y)
		}
	}
	return mat.NewDense(len(data)/2, 2, data)
}

func trainedToy(t *testing.T, opts ...Option) *SVC {
	t.Helper()
	X, y := toyData()
	clf := newSVC(t, append([]Option{WithSeed(11)}, opts...)...)
	require.NoError(t, clf.Fit(X, y))
	return clf
}

func TestSnapshotRoundTrip(t *testing.T) {
	kernels := map[string]kernel.Config{
		"linear":     kernel.DefaultConfig(),
		"rbf":        {Type: kernel.RBF, Sigma: 0.5},
		"polynomial": {Type: kernel.Polynomial, Degree: 2, Scale: 1},
		"laplacian":  {Type: kernel.Laplacian, Sigma: 1},
	}
	formats := []model.Format{model.FormatJSON, model.FormatGob}
	probe := probeGrid()

	for name, kc := range kernels {
		for _, format := range formats {
			t.Run(name+"/"+string(format), func(t *testing.T) {
				clf := trainedToy(t, WithKernel(kc))
				snap, err := clf.Export()
				require.NoError(t, err)

				var buf bytes.Buffer
				require.NoError(t, WriteSnapshot(&buf, snap, format))
				decoded, err := ReadSnapshot(&buf, format)
				require.NoError(t, err)

				loaded, err := Load(decoded)
				require.NoError(t, err)
				assert.Equal(t, model.Loaded, loaded.State())
				assert.Equal(t, clf.ID(), loaded.ID())
				assert.Equal(t, clf.NFeatures(), loaded.NFeatures())
				assert.Equal(t, 0, loaded.NIter())

				want, err := clf.DecisionFunction(probe)
				require.NoError(t, err)
				got, err := loaded.DecisionFunction(probe)
				require.NoError(t, err)
				assert.True(t, mat.Equal(want, got))

				wantPred, err := clf.Predict(probe)
				require.NoError(t, err)
				gotPred, err := loaded.Predict(probe)
				require.NoError(t, err)
				assert.True(t, mat.Equal(wantPred, gotPred))
			})
		}
	}
}

func TestExportLinearVariant(t *testing.T) {
	clf := trainedToy(t)
	snap, err := clf.Export()
	require.NoError(t, err)

	assert.Equal(t, SnapshotVersion, snap.Version)
	assert.True(t, snap.Linear())
	assert.Len(t, snap.W, 2)
	assert.Empty(t, snap.X)
	assert.Empty(t, snap.Alphas)
	assert.Equal(t, uint64(0), snap.Config.Seed)
	require.Len(t, snap.MinMax, 2)
	assert.Equal(t, MinMax{Min: 0, Max: 5}, snap.MinMax[0])
	assert.Equal(t, MinMax{Min: 0, Max: 6}, snap.MinMax[1])

	var buf bytes.Buffer
	require.NoError(t, WriteSnapshot(&buf, snap, model.FormatJSON))
	out := buf.String()
	for _, key := range []string{`"version"`, `"model_id"`, `"b"`, `"w"`, `"min_max"`, `"n_features"`} {
		assert.Contains(t, out, key)
	}
	assert.NotContains(t, out, `"alphas"`)
	assert.NotContains(t, out, `"seed"`)
}

func TestExportKernelVariant(t *testing.T) {
	X, y := circleData()
	clf := newSVC(t, rbfOptions(8)...)
	require.NoError(t, clf.Fit(X, y))

	snap, err := clf.Export()
	require.NoError(t, err)
	assert.False(t, snap.Linear())
	assert.Empty(t, snap.W)
	require.NotEmpty(t, snap.X)
	assert.Len(t, snap.Y, len(snap.X))
	assert.Len(t, snap.Alphas, len(snap.X))

	idx, err := clf.SupportVectors()
	require.NoError(t, err)
	assert.Equal(t, idx, snap.SupportIndices)

	for k, row := range snap.X {
		// 保存されるサポートベクトルはホワイトニング済み
		for _, v := range row {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
		assert.Greater(t, snap.Alphas[k], clf.Config().AlphaTol)
		assert.LessOrEqual(t, snap.Alphas[k], clf.Config().C+1e-9)
		assert.Equal(t, y.At(snap.SupportIndices[k], 0), snap.Y[k])
	}
}

func TestLoadedSupportVectors(t *testing.T) {
	t.Run("linear snapshot", func(t *testing.T) {
		snap, err := trainedToy(t).Export()
		require.NoError(t, err)
		loaded, err := Load(snap)
		require.NoError(t, err)

		_, err = loaded.SupportVectors()
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrUnsupportedOperation))
		assert.Contains(t, err.Error(), "linear snapshot")

		w, err := loaded.Weights()
		require.NoError(t, err)
		assert.Equal(t, snap.W, w)
	})

	t.Run("kernel snapshot with indices", func(t *testing.T) {
		clf := trainedToy(t, WithKernel(kernel.Config{Type: kernel.RBF, Sigma: 0.5}))
		snap, err := clf.Export()
		require.NoError(t, err)
		loaded, err := Load(snap)
		require.NoError(t, err)

		want, err := clf.SupportVectors()
		require.NoError(t, err)
		got, err := loaded.SupportVectors()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("kernel snapshot without indices", func(t *testing.T) {
		clf := trainedToy(t, WithKernel(kernel.Config{Type: kernel.RBF, Sigma: 0.5}))
		snap, err := clf.Export()
		require.NoError(t, err)
		snap.SupportIndices = nil
		loaded, err := Load(snap)
		require.NoError(t, err)

		_, err = loaded.SupportVectors()
		assert.True(t, errors.Is(err, errors.ErrUnsupportedOperation))
	})
}

func TestLoadCopiesSnapshot(t *testing.T) {
	clf := trainedToy(t, WithKernel(kernel.Config{Type: kernel.RBF, Sigma: 0.5}))
	snap, err := clf.Export()
	require.NoError(t, err)

	loaded, err := Load(snap)
	require.NoError(t, err)
	probe := probeGrid()
	before, err := loaded.DecisionFunction(probe)
	require.NoError(t, err)

	for i := range snap.Alphas {
		snap.Alphas[i] = 0
		snap.X[i][0] = 42
	}
	snap.MinMax[0].Max = 1000

	after, err := loaded.DecisionFunction(probe)
	require.NoError(t, err)
	assert.True(t, mat.Equal(before, after))
}

func TestLoadWithoutWhitening(t *testing.T) {
	clf := trainedToy(t, WithWhitening(false))
	snap, err := clf.Export()
	require.NoError(t, err)
	assert.Empty(t, snap.MinMax)

	loaded, err := Load(snap)
	require.NoError(t, err)
	mins, maxs := loaded.WhiteningStats()
	assert.Nil(t, mins)
	assert.Nil(t, maxs)

	v, err := loaded.PredictOne([]float64{5, 5.5})
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
}

func TestSnapshotValidate(t *testing.T) {
	base := func(t *testing.T) Snapshot {
		snap, err := trainedToy(t).Export()
		require.NoError(t, err)
		return snap
	}
	kernelBase := func(t *testing.T) Snapshot {
		snap, err := trainedToy(t, WithKernel(kernel.Config{Type: kernel.RBF, Sigma: 0.5})).Export()
		require.NoError(t, err)
		return snap
	}

	tests := []struct {
		name   string
		build  func(t *testing.T) Snapshot
		mutate func(s *Snapshot)
	}{
		{"unknown version", base, func(s *Snapshot) { s.Version = 99 }},
		{"no features", base, func(s *Snapshot) { s.NFeatures = 0 }},
		{"nan bias", base, func(s *Snapshot) { s.Bias = math.NaN() }},
		{"invalid config", base, func(s *Snapshot) { s.Config.C = -1 }},
		{"min_max length", base, func(s *Snapshot) { s.MinMax = s.MinMax[:1] }},
		{"min_max without whitening", base, func(s *Snapshot) { s.Config.Whitening = false }},
		{"weight length", base, func(s *Snapshot) { s.W = append(s.W, 1) }},
		{"linear with support vectors", base, func(s *Snapshot) {
			s.X = [][]float64{{0, 0}}
			s.Y = []float64{1}
			s.Alphas = []float64{0.5}
		}},
		{"kernel with weights", kernelBase, func(s *Snapshot) { s.W = []float64{1, 1} }},
		{"support length mismatch", kernelBase, func(s *Snapshot) { s.Y = s.Y[:len(s.Y)-1] }},
		{"support row width", kernelBase, func(s *Snapshot) { s.X[0] = []float64{1} }},
		{"non-positive alpha", kernelBase, func(s *Snapshot) { s.Alphas[0] = 0 }},
		{"support indices length", kernelBase, func(s *Snapshot) { s.SupportIndices = append(s.SupportIndices, 99) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := tt.build(t)
			require.NoError(t, snap.Validate())
			tt.mutate(&snap)

			err := snap.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidInput), "got %v", err)

			_, err = Load(snap)
			assert.Error(t, err)
		})
	}
}

func TestReadSnapshotRejectsMalformedJSON(t *testing.T) {
	tests := map[string]string{
		"not json":      `{"version": 1,`,
		"unknown field": `{"version": 1, "weights": [1, 2]}`,
		"empty object":  `{}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadSnapshot(strings.NewReader(body), model.FormatJSON)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidInput))
		})
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	clf := trainedToy(t, WithKernel(kernel.Config{Type: kernel.RBF, Sigma: 0.5}))
	probe := probeGrid()
	want, err := clf.Predict(probe)
	require.NoError(t, err)

	for _, name := range []string{"model.json", "model.gob", "model.bin"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, clf.SaveFile(path))

			loaded, err := LoadFile(path)
			require.NoError(t, err)
			got, err := loaded.Predict(probe)
			require.NoError(t, err)
			assert.True(t, mat.Equal(want, got))
		})
	}

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	untrained := newSVC(t)
	err = untrained.SaveFile(filepath.Join(t.TempDir(), "x.json"))
	assert.True(t, errors.Is(err, errors.ErrNotReady))
}

func TestDegenerateKernelSnapshot(t *testing.T) {
	X, y := toyData()
	clf := newSVC(t, WithKernel(kernel.Config{Type: kernel.Polynomial, Degree: 0, Scale: 1}), WithSeed(1))
	require.NoError(t, clf.Fit(X, y))

	snap, err := clf.Export()
	require.NoError(t, err)
	assert.Empty(t, snap.X)

	var buf bytes.Buffer
	require.NoError(t, WriteSnapshot(&buf, snap, model.FormatJSON))
	decoded, err := ReadSnapshot(&buf, model.FormatJSON)
	require.NoError(t, err)
	loaded, err := Load(decoded)
	require.NoError(t, err)

	pred, err := loaded.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, -1, -1, -1}, mat.Col(nil, 0, pred))

	// サポートベクトルが0個のカーネルモデルは空集合を返す
	trainedIdx, err := clf.SupportVectors()
	require.NoError(t, err)
	assert.Empty(t, trainedIdx)
	loadedIdx, err := loaded.SupportVectors()
	require.NoError(t, err)
	assert.Empty(t, loadedIdx)
}
