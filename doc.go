// Package gosvm is a binary support vector machine library for Go, built for
// backend services that train small models and serve predictions in process.
//
// Training uses simplified Sequential Minimal Optimization over a precomputed
// Gram matrix. Inputs are whitened to [0,1] per feature by default, the kernel
// is pluggable, and a trained model can be exported to a snapshot (JSON or gob)
// and loaded back without retraining.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/gosvm/kernel"
//	    "github.com/YuminosukeSato/gosvm/sklearn/svm"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    X := mat.NewDense(4, 2, []float64{0, 0, 0, 1, 5, 5, 5, 6})
//	    y := mat.NewDense(4, 1, []float64{-1, -1, 1, 1})
//
//	    clf, err := svm.NewSVC(svm.WithKernel(kernel.DefaultConfig()), svm.WithSeed(42))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if err := clf.Fit(X, y); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    label, _ := clf.PredictOne([]float64{5, 5.5})
//	    fmt.Println(label) // 1
//	}
//
// # Packages
//
//   - sklearn/svm: SVC estimator, SMO optimizer, snapshots, cross validation
//   - kernel: linear, rbf, polynomial, sigmoid and laplacian kernels, Gram matrices
//   - preprocessing: MinMaxScaler used for whitening
//   - metrics: accuracy, AUC and confusion counts
//   - core/model: estimator interfaces, lifecycle state and snapshot persistence
//   - core/parallel: row-parallel helpers
//   - pkg/errors: error kinds built on cockroachdb/errors
//   - pkg/log: structured logging backed by zerolog
//   - pkg/telemetry: Prometheus metrics for training
//   - pkg/store: on-disk model registry with an LRU of loaded models
//
// The gosvm command (cmd/gosvm) wraps these packages for CSV data.
package gosvm
