package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/gosvm/pkg/log"
)

const version = "v0.1.0"

type rootOptions struct {
	logLevel string
	logJSON  bool
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "gosvm",
		Short:         "Binary support vector classification with SMO",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ToLogLevel(opts.logLevel)
			if err != nil {
				return err
			}
			if opts.logJSON {
				log.SetProvider(log.NewZerologProvider(errOut, level))
				return nil
			}
			return log.SetupConsoleLogger(errOut, opts.logLevel)
		},
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().BoolVar(&opts.logJSON, "log-json", false, "Emit JSON log lines instead of console output")

	cmd.AddCommand(
		newTrainCmd(),
		newPredictCmd(),
		newEvaluateCmd(),
		newCVCmd(),
		newPlotCmd(),
		newInspectCmd(),
		newModelsCmd(),
	)
	return cmd
}
