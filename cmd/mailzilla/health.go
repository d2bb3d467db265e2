package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/FJ-cyberzilla/mailzilla/internal/config"
	"github.com/FJ-cyberzilla/mailzilla/internal/connector"
	"github.com/FJ-cyberzilla/mailzilla/internal/health"
	"github.com/FJ-cyberzilla/mailzilla/internal/log"
	"github.com/FJ-cyberzilla/mailzilla/internal/resource"
	"github.com/FJ-cyberzilla/mailzilla/internal/source"
)

// NewHealthCmd creates the health command.
func NewHealthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Show the source fleet and host resource status",
		Long: `Health builds the configured source fleet, samples the host, and
prints the fleet status together with the resource strategy the engine
would run under right now.

Examples:
  # Human-readable status
  mailzilla health

  # Markdown status for sharing
  mailzilla health --markdown`,
		Args: cobra.NoArgs,
		RunE: runHealthCmd,
	}

	cmd.Flags().StringP("config", "c", "",
		"Inventory file path (default: .mailzilla.yml in current or config directory)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown (mutually exclusive with --json)")

	return cmd
}

// runHealthCmd executes the health command.
func runHealthCmd(cmd *cobra.Command, _ []string) error {
	cfg := config.NewConfig()

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	if configPath := config.FindConfigFile(cfg.ConfigFilePath); configPath != "" {
		cfg.Inventory, err = config.LoadFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to load inventory file %s: %w", configPath, err)
		}
	} else if cfg.ConfigFilePath != "" {
		return fmt.Errorf("inventory file not found: %s", cfg.ConfigFilePath)
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if cfg.JSONReport && cfg.MarkdownReport {
		return config.ErrConflictingReportFormats
	}

	logger := log.NewLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	factory := source.NewFactory()
	connector.RegisterDefaults(factory)
	registry, err := source.NewRegistry(cfg.Inventory.Sources, factory)
	if err != nil {
		return fmt.Errorf("failed to build source registry: %w", err)
	}

	controller := resource.NewController(resource.NewSystemSampler(), logger, cfg.ResourceInterval)
	controller.Refresh(cmd.Context())

	monitor := health.NewMonitor(registry, controller, logger, cfg.MonitorInterval)

	writer := selectWriter(cfg, os.Stdout)
	if _, err := writer.WriteHealth(monitor.Report()); err != nil {
		return fmt.Errorf("failed to write health report: %w", err)
	}

	printResourceReport(controller.Report())
	return nil
}

// printResourceReport prints the host resource summary after the fleet
// status. Plain text is fine here: the structured formats already carry
// the fleet report, and the resource numbers are point-in-time.
func printResourceReport(r resource.Report) {
	fmt.Printf("Host resources (score %.1f, tier %s, trend %s):\n",
		r.Score, r.Strategy.Tier, r.Trend)
	fmt.Printf("  Memory used: %.1f%%\n", r.Current.MemoryUsedPercent)
	fmt.Printf("  CPU:         %.1f%%\n", r.Current.CPUPercent)
	fmt.Printf("  Network:     %.1f Mbps\n", r.Current.NetworkMbps)
	fmt.Printf("  Battery:     %.0f%%\n", r.Current.BatteryPercent)
	fmt.Printf("  Strategy:    %d concurrent calls, %s per call, %s quality\n",
		r.Strategy.MaxConcurrentTasks, r.Strategy.CallTimeout, r.Strategy.Quality)
	for _, rec := range r.Recommendations {
		fmt.Printf("  => %s\n", rec)
	}
}
