// Package cli implements the finpulse command line.
package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	out     io.Writer
	rootCmd *cobra.Command

	cfgPath  string
	logLevel string
}

// Options contain configuration for the CLI
type Options struct {
	Output io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{out: opts.Output}
	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

// SetArgs overrides os.Args for the next Execute.
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "finpulse",
		Short:         "Financial health reports for uploaded transactions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(cli.out)

	cmd.PersistentFlags().StringVarP(&cli.cfgPath, "config", "c", "", "Path to a config file (yaml, json or toml)")
	cmd.PersistentFlags().StringVar(&cli.logLevel, "log-level", "", "Override the configured log level")

	cmd.AddCommand(cli.newAnalyzeCmd())
	cmd.AddCommand(cli.newExportCmd())
	cmd.AddCommand(cli.newServeCmd())

	return cmd
}
