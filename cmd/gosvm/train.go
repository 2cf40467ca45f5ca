package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/gosvm/pkg/log"
	"github.com/YuminosukeSato/gosvm/pkg/store"
	"github.com/YuminosukeSato/gosvm/pkg/telemetry"
	"github.com/YuminosukeSato/gosvm/sklearn/svm"
)

type trainOptions struct {
	data  dataFlags
	hyper hyperFlags

	out         string
	storeDir    string
	metricsFile string
	progress    int
}

func newTrainCmd() *cobra.Command {
	o := &trainOptions{}
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a classifier on a labelled CSV file",
		Long: `Train a classifier on a labelled CSV file and save the snapshot.

Examples:
  gosvm train --data train.csv --out model.json
  gosvm train --data train.csv --config svm.yaml --c 10 --store ./models
  gosvm train --data train.csv --kernel rbf --sigma 0.3 --metrics-textfile svm.prom`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd)
		},
	}
	o.data.register(cmd.Flags())
	o.hyper.register(cmd.Flags())
	cmd.Flags().StringVar(&o.out, "out", "", "Write the snapshot to this file (.json or .gob)")
	cmd.Flags().StringVar(&o.storeDir, "store", "", "Also put the snapshot into this model store")
	cmd.Flags().StringVar(&o.metricsFile, "metrics-textfile", "", "Write Prometheus metrics to this file")
	cmd.Flags().IntVar(&o.progress, "progress", 0, "Log optimizer progress every N sweeps at debug level")
	return cmd
}

func (o *trainOptions) run(cmd *cobra.Command) error {
	cfg, err := o.hyper.config(cmd.Flags())
	if err != nil {
		return err
	}
	ds, err := o.data.load(false)
	if err != nil {
		return err
	}

	metrics := telemetry.New(telemetry.DefaultNamespace)
	opts := []svm.Option{svm.WithConfig(cfg), svm.WithCallbacks(metrics.Callback())}
	if o.progress > 0 {
		opts = append(opts, svm.WithCallbacks(svm.LogProgress(log.GetLoggerWithName("gosvm.train"), o.progress)))
	}
	clf, err := svm.NewSVC(opts...)
	if err != nil {
		return err
	}

	start := time.Now()
	fitErr := clf.Fit(ds.X, ds.Y)
	metrics.ObserveFit(clf, time.Since(start), fitErr)
	if o.metricsFile != "" {
		if err := metrics.WriteTextfile(o.metricsFile); err != nil {
			return err
		}
	}
	if fitErr != nil {
		return fitErr
	}

	acc, err := clf.Score(ds.X, ds.Y)
	if err != nil {
		return err
	}
	nSV := "unknown"
	if idx, err := clf.SupportVectors(); err == nil {
		nSV = fmt.Sprint(len(idx))
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "model %s trained: kernel=%s sweeps=%d support_vectors=%s bias=%.6g training_accuracy=%.4f\n",
		clf.ID(), clf.Config().Kernel, clf.NIter(), nSV, clf.Bias(), acc)

	if o.out != "" {
		if err := clf.SaveFile(o.out); err != nil {
			return err
		}
		fmt.Fprintf(out, "saved %s\n", o.out)
	}
	if o.storeDir != "" {
		s, err := store.Open(store.Options{BasePath: o.storeDir})
		if err != nil {
			return err
		}
		snap, err := clf.Export()
		if err != nil {
			return err
		}
		id, err := s.Put(snap)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "stored %s in %s\n", id, o.storeDir)
	}
	return nil
}
