package terminal

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/az-tools/protection-atlas/pkg/runtime/terminal/commands"
	"github.com/az-tools/protection-atlas/pkg/runtime/terminal/export"
	"github.com/az-tools/protection-atlas/pkg/services/audit"
)

// CLI represents the command-line interface
type CLI struct {
	registry audit.Registry
	reporter *export.Reporter
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Registry audit.Registry
	Output   io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		registry: opts.Registry,
		reporter: export.NewReporter(opts.Output),
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "protection-atlas",
		Short: "Backup and replication coverage audit tool",
	}

	cmd.AddCommand(commands.NewAuditCmd(cli.registry, cli.reporter))
	cmd.AddCommand(commands.NewPlatformsCmd(cli.registry))

	return cmd
}
