package commands

import "github.com/spf13/cobra"

func (c *CLI) newDevCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dev",
		Short: "Build, serve and rebuild on change until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Dev(cmd.Context(), c.options(cmd))
		},
	}
}
