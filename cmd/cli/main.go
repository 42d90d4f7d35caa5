package main

import (
	"fmt"
	"os"

	"github.com/az-tools/protection-atlas/pkg/runtime/terminal"
	"github.com/az-tools/protection-atlas/pkg/services/audit"
	"github.com/az-tools/protection-atlas/pkg/services/audit/azure"
)

func main() {
	cli := terminal.NewCLI(terminal.Options{
		Registry: audit.NewRegistry(map[string]audit.ProviderFactory{
			"azure": azure.ProviderFactory,
		}),
		Output: os.Stdout,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
