package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/az-tools/protection-atlas/pkg/services/audit"
)

type PlatformsCmd struct {
	registry audit.Registry
}

func NewPlatformsCmd(registry audit.Registry) *cobra.Command {
	pc := &PlatformsCmd{registry: registry}
	cmd := &cobra.Command{
		Use:   "platforms",
		Short: "List platforms with a registered provider set",
		RunE:  pc.run,
	}
	return cmd
}

func (pc *PlatformsCmd) run(cmd *cobra.Command, args []string) error {
	platforms := pc.registry.ListPlatforms()
	if len(platforms) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No platforms registered")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Registered platforms:\n%s\n",
		strings.Join(platforms, "\n"))

	return nil
}
