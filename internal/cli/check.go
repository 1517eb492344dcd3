package cli

import (
	"github.com/spf13/cobra"
)

func newCheckCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run a single availability check",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			a, err := newApp(cfg, cmd.OutOrStdout(), false)
			if err != nil {
				return err
			}

			_, err = a.checker.Run(cmd.Context(), a.selection)
			return err
		},
	}
}
