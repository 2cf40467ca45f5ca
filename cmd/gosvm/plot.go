package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/gosvm/internal/viz"
	"github.com/YuminosukeSato/gosvm/pkg/errors"
)

type plotOptions struct {
	model modelFlags
	data  dataFlags

	out        string
	title      string
	resolution int
}

func newPlotCmd() *cobra.Command {
	o := &plotOptions{}
	def := viz.DefaultOptions()
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Render the decision surface of a two-feature model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd)
		},
	}
	o.model.register(cmd.Flags())
	o.data.register(cmd.Flags())
	cmd.Flags().StringVar(&o.out, "out", "decision.png", "Output image (png, svg, pdf)")
	cmd.Flags().StringVar(&o.title, "title", def.Title, "Plot title")
	cmd.Flags().IntVar(&o.resolution, "resolution", def.Resolution, "Grid cells per axis")
	return cmd
}

func (o *plotOptions) run(cmd *cobra.Command) error {
	if o.out == "" {
		return errors.NewValidationError("out", "is required", o.out)
	}
	clf, err := o.model.load()
	if err != nil {
		return err
	}
	ds, err := o.data.load(false)
	if err != nil {
		return err
	}

	opts := viz.DefaultOptions()
	opts.Title = o.title
	opts.Resolution = o.resolution
	p, err := viz.DecisionPlot(clf, ds.X, ds.Y, opts)
	if err != nil {
		return err
	}
	if err := viz.Save(p, o.out); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", o.out)
	return nil
}
