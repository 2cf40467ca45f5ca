// Package telemetry exports SVM training metrics in the Prometheus format.
//
// Metrics owns its registry, so several instances (one per test, one per CLI
// run) never collide on the global default registerer.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/YuminosukeSato/gosvm/pkg/errors"
	"github.com/YuminosukeSato/gosvm/sklearn/svm"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "gosvm"

// Metrics groups the collectors for training and inference.
type Metrics struct {
	registry *prometheus.Registry

	fits           *prometheus.CounterVec
	failures       *prometheus.CounterVec
	sweeps         prometheus.Histogram
	pairUpdates    prometheus.Counter
	supportVectors *prometheus.GaugeVec
	fitDuration    prometheus.Histogram
	predictions    prometheus.Counter
}

// New creates the collectors under namespace and registers them on a fresh registry.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "svm",
			Name:      "fits_total",
			Help:      "Completed Fit calls by kernel and outcome.",
		}, []string{"kernel", "outcome"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "svm",
			Name:      "fit_failures_total",
			Help:      "Failed Fit calls by error code.",
		}, []string{"code"}),
		sweeps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "svm",
			Name:      "sweeps",
			Help:      "SMO sweeps performed by successful Fit calls.",
			Buckets:   prometheus.ExponentialBuckets(10, 2, 11),
		}),
		pairUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "svm",
			Name:      "pair_updates_total",
			Help:      "Alpha pairs changed by the SMO optimizer.",
		}),
		supportVectors: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "svm",
			Name:      "support_vectors",
			Help:      "Support vectors of the most recently trained model per kernel.",
		}, []string{"kernel"}),
		fitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "svm",
			Name:      "fit_duration_seconds",
			Help:      "Wall time of Fit calls.",
			Buckets:   prometheus.DefBuckets,
		}),
		predictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "svm",
			Name:      "predictions_total",
			Help:      "Rows classified by Predict.",
		}),
	}
	m.registry.MustRegister(
		m.fits,
		m.failures,
		m.sweeps,
		m.pairUpdates,
		m.supportVectors,
		m.fitDuration,
		m.predictions,
	)
	return m
}

// Registry exposes the underlying registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Callback counts pair updates sweep by sweep. Register it with svm.WithCallbacks.
func (m *Metrics) Callback() svm.Callback {
	return func(env *svm.CallbackEnv) error {
		m.pairUpdates.Add(float64(env.Updates))
		return nil
	}
}

// ObserveFit records the outcome of one Fit call on clf.
func (m *Metrics) ObserveFit(clf *svm.SVC, elapsed time.Duration, err error) {
	kernelName := string(clf.Config().Kernel.Type)
	m.fitDuration.Observe(elapsed.Seconds())

	if err != nil {
		m.fits.WithLabelValues(kernelName, "failure").Inc()
		m.failures.WithLabelValues(errors.Code(err)).Inc()
		return
	}
	m.fits.WithLabelValues(kernelName, "success").Inc()
	m.sweeps.Observe(float64(clf.NIter()))
	if idx, svErr := clf.SupportVectors(); svErr == nil {
		m.supportVectors.WithLabelValues(kernelName).Set(float64(len(idx)))
	}
}

// ObservePredictions adds n classified rows.
func (m *Metrics) ObservePredictions(n int) {
	m.predictions.Add(float64(n))
}

// Handler serves the registry over HTTP.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// WriteTextfile writes the current values in the text exposition format, for
// node_exporter's textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.Wrapf(err, "failed to write metrics to %s", path)
	}
	return nil
}
