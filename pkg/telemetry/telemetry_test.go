package telemetry

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gosvm/pkg/errors"
	"github.com/YuminosukeSato/gosvm/sklearn/svm"
)

func toy() (*mat.Dense, *mat.Dense) {
	return mat.NewDense(4, 2, []float64{0, 0, 0, 1, 5, 5, 5, 6}),
		mat.NewDense(4, 1, []float64{-1, -1, 1, 1})
}

func fit(t *testing.T, m *Metrics, opts ...svm.Option) (*svm.SVC, error) {
	t.Helper()
	opts = append(opts, svm.WithSeed(1), svm.WithCallbacks(m.Callback()))
	clf, err := svm.NewSVC(opts...)
	require.NoError(t, err)

	X, y := toy()
	start := time.Now()
	err = clf.Fit(X, y)
	m.ObserveFit(clf, time.Since(start), err)
	return clf, err
}

func TestObserveFitSuccess(t *testing.T) {
	m := New("")
	clf, err := fit(t, m)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.fits.WithLabelValues("linear", "success")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.fits.WithLabelValues("linear", "failure")))
	assert.Greater(t, testutil.ToFloat64(m.pairUpdates), 0.0)

	idx, err := clf.SupportVectors()
	require.NoError(t, err)
	assert.Equal(t, float64(len(idx)), testutil.ToFloat64(m.supportVectors.WithLabelValues("linear")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.sweeps))
}

func TestObserveFitFailure(t *testing.T) {
	m := New("test")
	_, err := fit(t, m, svm.WithMaxIterations(1))
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.fits.WithLabelValues("linear", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues(errors.CodeConvergence)))
}

func TestSeparateRegistries(t *testing.T) {
	a, b := New(""), New("")
	_, err := fit(t, a)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.fits.WithLabelValues("linear", "success")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.fits.WithLabelValues("linear", "success")))
}

func TestHandler(t *testing.T) {
	m := New("")
	m.ObservePredictions(3)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "gosvm_svm_predictions_total 3")
}

func TestWriteTextfile(t *testing.T) {
	m := New("")
	_, err := fit(t, m)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "svm.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.Contains(text, `gosvm_svm_fits_total{kernel="linear",outcome="success"} 1`))
	assert.Contains(t, text, "gosvm_svm_fit_duration_seconds_count 1")

	assert.Error(t, m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "svm.prom")))
}
