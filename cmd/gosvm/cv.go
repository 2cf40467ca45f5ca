package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/gosvm/sklearn/svm"
)

type cvOptions struct {
	data  dataFlags
	hyper hyperFlags

	folds       int
	shuffleSeed uint64
}

func newCVCmd() *cobra.Command {
	o := &cvOptions{}
	cmd := &cobra.Command{
		Use:   "cv",
		Short: "Cross-validate hyperparameters on a labelled CSV file",
		Long: `Cross-validate hyperparameters on a labelled CSV file.

--folds 0 runs leave-one-out. Folds that do not converge score 0.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd)
		},
	}
	o.data.register(cmd.Flags())
	o.hyper.register(cmd.Flags())
	cmd.Flags().IntVar(&o.folds, "folds", 5, "Number of folds (0 for leave-one-out)")
	cmd.Flags().Uint64Var(&o.shuffleSeed, "shuffle-seed", 0, "Shuffle samples with this seed before splitting (0 keeps file order)")
	return cmd
}

func (o *cvOptions) run(cmd *cobra.Command) error {
	cfg, err := o.hyper.config(cmd.Flags())
	if err != nil {
		return err
	}
	ds, err := o.data.load(false)
	if err != nil {
		return err
	}

	var splitter svm.Splitter = svm.LeaveOneOut{}
	if o.folds > 0 {
		splitter = svm.NewKFold(o.folds, o.shuffleSeed != 0, o.shuffleSeed)
	}
	res, err := svm.CrossValidate(func() (*svm.SVC, error) {
		return svm.NewSVC(svm.WithConfig(cfg))
	}, ds.X, ds.Y, splitter)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, s := range res.TestScores {
		fmt.Fprintf(out, "fold %d: accuracy=%.4f fit=%s\n", i+1, s, res.FitTimes[i])
	}
	fmt.Fprintf(out, "mean accuracy: %.4f (std %.4f, %d folds, %d not converged)\n",
		res.MeanScore(), res.StdScore(), len(res.TestScores), res.Failed)
	return nil
}
