package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/az-tools/protection-atlas/pkg/runtime/terminal/export"
	"github.com/az-tools/protection-atlas/pkg/services/audit"
	"github.com/az-tools/protection-atlas/pkg/services/health"
)

type AuditCmd struct {
	profile       string
	platform      string
	resourceGroup string
	stalenessDays int
	settingsPath  string
	registry      audit.Registry
	reporter      *export.Reporter
}

func NewAuditCmd(registry audit.Registry, reporter *export.Reporter) *cobra.Command {
	ac := &AuditCmd{registry: registry, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit backup and replication coverage of a resource group",
		RunE:  ac.run,
	}

	// Define flags
	cmd.Flags().StringVar(&ac.profile, "profile", "", "Name of the credentials profile")
	cmd.Flags().StringVar(&ac.platform, "platform", "azure", "Platform to audit")
	cmd.Flags().StringVar(&ac.resourceGroup, "resource-group", "", "Resource group whose VMs and disks are audited")
	cmd.Flags().IntVar(&ac.stalenessDays, "staleness-days", 0, "Maximum backup age in days before an item is flagged stale (default 90)")
	cmd.Flags().StringVar(&ac.settingsPath, "settings", "", "Path to an audit settings file")

	// Mark required flags
	_ = cmd.MarkFlagRequired("resource-group")

	return cmd
}

func (ac *AuditCmd) run(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()

	// Findings go to stdout through the reporter; warnings go to stderr.
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	ctx = logger.WithContext(ctx)

	settings := audit.DefaultSettings()
	if ac.settingsPath != "" {
		loaded, err := audit.LoadSettings(ac.settingsPath)
		if err != nil {
			return fmt.Errorf("failed to load audit settings: %w", err)
		}
		settings = loaded
	}
	if ac.stalenessDays > 0 {
		settings.StalenessDays = ac.stalenessDays
	}

	providers, err := ac.registry.Create(ctx, ac.platform, ac.profile)
	if err != nil {
		return fmt.Errorf("failed to create providers for platform %s: %w", ac.platform, err)
	}

	auditor := audit.NewAuditor(providers)
	report, err := auditor.Audit(ctx, ac.resourceGroup, settings)
	if err != nil {
		return fmt.Errorf("failed to audit resource group %s: %w", ac.resourceGroup, err)
	}

	return ac.reporter.Handle(&report, health.Evaluate(report))
}
