package main

import (
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/gosvm/internal/dataset"
)

type predictOptions struct {
	model    modelFlags
	data     dataFlags
	labelled bool
	margins  bool
}

func newPredictCmd() *cobra.Command {
	o := &predictOptions{}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Classify the rows of a CSV file",
		Long: `Classify the rows of a CSV file and print one value per row as CSV.

Examples:
  gosvm predict --model model.json --data test.csv
  gosvm predict --store ./models --id 3f0c... --data test.csv --margins`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd)
		},
	}
	o.model.register(cmd.Flags())
	o.data.register(cmd.Flags())
	cmd.Flags().BoolVar(&o.labelled, "labelled", false, "The last column is a label and is ignored")
	cmd.Flags().BoolVar(&o.margins, "margins", false, "Print raw margins instead of ±1")
	return cmd
}

func (o *predictOptions) run(cmd *cobra.Command) error {
	clf, err := o.model.load()
	if err != nil {
		return err
	}
	ds, err := o.data.load(!o.labelled)
	if err != nil {
		return err
	}

	if o.margins {
		m, err := clf.Margin(ds.X)
		if err != nil {
			return err
		}
		return dataset.WriteColumn(cmd.OutOrStdout(), "margin", m)
	}

	pred, err := clf.Predict(ds.X)
	if err != nil {
		return err
	}
	r, _ := pred.Dims()
	values := make([]float64, r)
	for i := range values {
		values[i] = pred.At(i, 0)
	}
	return dataset.WriteColumn(cmd.OutOrStdout(), "prediction", values)
}
