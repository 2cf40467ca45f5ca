package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/gosvm/core/model"
	"github.com/YuminosukeSato/gosvm/sklearn/svm"
)

type modelSummary struct {
	ID             string           `yaml:"id"`
	Lifecycle      model.ModelState `yaml:",inline"`
	Config         svm.Config       `yaml:"config"`
	Bias           float64          `yaml:"bias"`
	Weights        []float64        `yaml:"weights,omitempty,flow"`
	SupportVectors *int             `yaml:"support_vectors,omitempty"`
	Whitening      []svm.MinMax     `yaml:"whitening,omitempty,flow"`
}

func newInspectCmd() *cobra.Command {
	var model modelFlags
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print a YAML summary of a saved model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			clf, err := model.load()
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(summarize(clf))
		},
	}
	model.register(cmd.Flags())
	return cmd
}

func summarize(clf *svm.SVC) modelSummary {
	s := modelSummary{
		ID:        clf.ID(),
		Lifecycle: clf.Lifecycle(),
		Config:    clf.Config(),
		Bias:      clf.Bias(),
	}
	if w, err := clf.Weights(); err == nil {
		s.Weights = w
	}
	if idx, err := clf.SupportVectors(); err == nil {
		n := len(idx)
		s.SupportVectors = &n
	}
	mins, maxs := clf.WhiteningStats()
	for j := range mins {
		s.Whitening = append(s.Whitening, svm.MinMax{Min: mins[j], Max: maxs[j]})
	}
	return s
}
