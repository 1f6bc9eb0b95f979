// Package commands implements the CLI commands for lander.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/lander/internal/app"
	"go.trai.ch/lander/internal/build"
	"go.trai.ch/lander/internal/core/domain"
)

// CLI represents the command line interface for lander.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Dev(ctx context.Context, opts app.Options) error
	Build(ctx context.Context, opts app.Options) error
	Clean(ctx context.Context, opts app.Options) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	c := &CLI{app: a}

	rootCmd := &cobra.Command{
		Use:           "lander",
		Short:         "Build and serve a static landing page",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Dev(cmd.Context(), c.options(cmd))
		},
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", domain.DefaultConfigFile, "Path to the configuration file")
	flags.Bool("json", false, "Emit logs as JSON")
	flags.IntP("parallelism", "p", 0, "Maximum number of concurrent tasks (default: number of CPUs)")

	c.rootCmd = rootCmd
	rootCmd.AddCommand(c.newDevCmd())
	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// options reads the persistent flags.
func (c *CLI) options(cmd *cobra.Command) app.Options {
	configPath, _ := cmd.Flags().GetString("config")
	jsonLogs, _ := cmd.Flags().GetBool("json")
	parallelism, _ := cmd.Flags().GetInt("parallelism")
	return app.Options{
		ConfigPath:  configPath,
		Parallelism: parallelism,
		JSON:        jsonLogs,
	}
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
