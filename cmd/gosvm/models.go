package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/gosvm/pkg/errors"
	"github.com/YuminosukeSato/gosvm/pkg/store"
)

func newModelsCmd() *cobra.Command {
	var storeDir string
	open := func() (*store.Store, error) {
		if storeDir == "" {
			return nil, errors.NewValidationError("store", "is required", storeDir)
		}
		return store.Open(store.Options{BasePath: storeDir})
	}

	cmd := &cobra.Command{
		Use:   "models",
		Short: "Manage the model store",
	}
	cmd.PersistentFlags().StringVar(&storeDir, "store", "", "Model store directory")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored model IDs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open()
			if err != nil {
				return err
			}
			for _, id := range s.List() {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "rm ID...",
		Short: "Delete stored models",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open()
			if err != nil {
				return err
			}
			for _, id := range args {
				if err := s.Delete(id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
			}
			return nil
		},
	})
	return cmd
}
