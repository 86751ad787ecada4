package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"internhunt-engine/internal/poll"
)

func resetCmd(root *rootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the dataset, the seen-set, the run history and the run log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear %s without --yes", root.dataDir)
			}
			a, err := bootstrap(root)
			if err != nil {
				return err
			}
			defer a.close()

			ctrl := poll.New(cmd.Context(), a.runner, nil, a.store, nil, a.log)
			ctrl.LogPath = a.logPath
			if err := ctrl.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "all data cleared")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the reset")
	return cmd
}
