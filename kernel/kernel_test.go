package kernel

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gosvm/pkg/errors"
)

func ptr(v float64) *float64 { return &v }

func TestKernelCompute(t *testing.T) {
	x := []float64{1, 2}
	y := []float64{3, -1}

	tests := []struct {
		name string
		cfg  Config
		want float64
	}{
		{"linear", Config{Type: Linear}, 1},
		{"rbf", Config{Type: RBF, Sigma: 2}, math.Exp(-13.0 / 8.0)},
		{"gaussian alias", Config{Type: "gaussian", Sigma: 1}, math.Exp(-13.0 / 2.0)},
		{"polynomial default constant", Config{Type: Polynomial, Degree: 2, Scale: 1}, 4},
		{"polynomial explicit constant", Config{Type: "poly", Degree: 3, Scale: 2, Constant: ptr(0)}, 8},
		{"polynomial degree zero", Config{Type: Polynomial, Degree: 0, Scale: 1}, 1},
		{"sigmoid", Config{Type: Sigmoid, Alpha: 0.5, Constant: ptr(0)}, math.Tanh(0.5)},
		{"sigmoid default constant", Config{Type: Sigmoid, Alpha: 0.01}, math.Tanh(0.01 - math.E)},
		{"laplacian", Config{Type: Laplacian, Sigma: 1}, math.Exp(-math.Sqrt(13))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, err := New(tt.cfg)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, k.Compute(x, y), 1e-12)
			assert.InDelta(t, k.Compute(x, y), k.Compute(y, x), 1e-15)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"unknown type", Config{Type: "cosine"}},
		{"rbf zero sigma", Config{Type: RBF}},
		{"laplacian negative sigma", Config{Type: Laplacian, Sigma: -1}},
		{"negative degree", Config{Type: Polynomial, Degree: -1, Scale: 1}},
		{"nan scale", Config{Type: Polynomial, Degree: 2, Scale: math.NaN()}},
		{"inf alpha", Config{Type: Sigmoid, Alpha: math.Inf(1)}},
		{"nan constant", Config{Type: Polynomial, Degree: 1, Scale: 1, Constant: ptr(math.NaN())}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidInput))
		})
	}
}

func TestDefaultConfigSwitchesFamily(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Type = RBF
	k, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, RBFKernel{Sigma: DefaultSigma}, k)

	cfg.Type = Sigmoid
	k, err = New(cfg)
	require.NoError(t, err)
	assert.Equal(t, SigmoidKernel{Alpha: DefaultAlpha, Constant: DefaultSigmoidConstant}, k)
}

func TestConfigRoundTrip(t *testing.T) {
	for _, cfg := range []Config{
		{Type: Linear},
		{Type: RBF, Sigma: 0.3},
		{Type: Polynomial, Degree: 3, Scale: 0.5, Constant: ptr(2)},
		{Type: Sigmoid, Alpha: 0.1, Constant: ptr(-1)},
		{Type: Laplacian, Sigma: 4},
	} {
		k, err := New(cfg)
		require.NoError(t, err)
		k2, err := New(k.Config())
		require.NoError(t, err)
		assert.Equal(t, k, k2)
	}
}

func TestConfigString(t *testing.T) {
	assert.Equal(t, "linear", Config{Type: Linear}.String())
	assert.Equal(t, "rbf(sigma=0.5)", Config{Type: "gaussian", Sigma: 0.5}.String())
	assert.Equal(t, "polynomial(degree=2, scale=1, constant=1)", Config{Type: Polynomial, Degree: 2, Scale: 1}.String())
}

func TestParseType(t *testing.T) {
	got, err := ParseType(" Gaussian ")
	require.NoError(t, err)
	assert.Equal(t, RBF, got)

	got, err = ParseType("")
	require.NoError(t, err)
	assert.Equal(t, Linear, got)
}

func randomMatrix(rng *rand.Rand, r, c int) *mat.Dense {
	data := make([]float64, r*c)
	for i := range data {
		data[i] = rng.Float64()
	}
	return mat.NewDense(r, c, data)
}

func TestGramMatchesCompute(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	// 閾値を超えるサイズで並列経路も通す
	X := randomMatrix(rng, 150, 3)
	k := RBFKernel{Sigma: 0.7}

	g := Gram(k, X)
	require.Equal(t, 150, g.SymmetricDim())

	rows := Rows(X)
	for i := 0; i < 150; i += 7 {
		for j := 0; j < 150; j += 11 {
			assert.Equal(t, k.Compute(rows[i], rows[j]), g.At(i, j))
			assert.Equal(t, g.At(i, j), g.At(j, i))
		}
	}
}

func TestGramDeterministic(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	X := randomMatrix(rng, 100, 4)
	k := PolynomialKernel{Degree: 2, Scale: 1, Constant: 1}

	assert.True(t, mat.Equal(Gram(k, X), Gram(k, X)))
}

func TestCross(t *testing.T) {
	A := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	B := mat.NewDense(3, 2, []float64{1, 1, 2, 0, 0, 3})

	got := Cross(LinearKernel{}, A, B)
	want := mat.NewDense(2, 3, []float64{
		1, 2, 0,
		1, 0, 3,
	})
	assert.True(t, mat.Equal(got, want))
}

func TestGramEmpty(t *testing.T) {
	g := GramRows(LinearKernel{}, nil)
	assert.True(t, g.IsEmpty())
}

func TestLengthMismatchPanics(t *testing.T) {
	assert.Panics(t, func() { RBFKernel{Sigma: 1}.Compute([]float64{1}, []float64{1, 2}) })
}
