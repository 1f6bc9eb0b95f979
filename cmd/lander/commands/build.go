package commands

import "github.com/spf13/cobra"

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the minified production output",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := c.options(cmd)
			opts.Strict, _ = cmd.Flags().GetBool("strict")
			return c.app.Build(cmd.Context(), opts)
		},
	}
	cmd.Flags().Bool("strict", false, "Fail the build when an asset cannot be transformed")
	return cmd
}
