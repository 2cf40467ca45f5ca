package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gosvm/metrics"
)

type evaluateOptions struct {
	model modelFlags
	data  dataFlags
}

func newEvaluateCmd() *cobra.Command {
	o := &evaluateOptions{}
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Report accuracy, AUC and the confusion matrix on labelled data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd)
		},
	}
	o.model.register(cmd.Flags())
	o.data.register(cmd.Flags())
	return cmd
}

func (o *evaluateOptions) run(cmd *cobra.Command) error {
	clf, err := o.model.load()
	if err != nil {
		return err
	}
	ds, err := o.data.load(false)
	if err != nil {
		return err
	}

	margins, err := clf.Margin(ds.X)
	if err != nil {
		return err
	}
	pred := make([]float64, len(margins))
	for i, m := range margins {
		pred[i] = 1
		if m <= 0 {
			pred[i] = -1
		}
	}

	yTrue := mat.VecDenseCopyOf(ds.Y.ColView(0))
	yPred := mat.NewVecDense(len(pred), pred)
	acc, err := metrics.Accuracy(yTrue, yPred)
	if err != nil {
		return err
	}
	auc, err := metrics.AUC(yTrue, mat.NewVecDense(len(margins), margins))
	if err != nil {
		return err
	}
	cm, err := metrics.Confusion(yTrue, yPred)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "samples:  %d\n", len(pred))
	fmt.Fprintf(out, "accuracy: %.4f\n", acc)
	fmt.Fprintf(out, "error:    %.4f\n", 1-acc)
	fmt.Fprintf(out, "auc:      %.4f\n", auc)
	fmt.Fprintf(out, "confusion:\n")
	fmt.Fprintf(out, "            pred +1  pred -1\n")
	fmt.Fprintf(out, "  true +1  %8d %8d\n", cm.TP, cm.FN)
	fmt.Fprintf(out, "  true -1  %8d %8d\n", cm.FP, cm.TN)
	return nil
}
