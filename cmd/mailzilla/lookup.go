package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/FJ-cyberzilla/mailzilla/internal/config"
	"github.com/FJ-cyberzilla/mailzilla/internal/connector"
	"github.com/FJ-cyberzilla/mailzilla/internal/correlate"
	"github.com/FJ-cyberzilla/mailzilla/internal/database"
	"github.com/FJ-cyberzilla/mailzilla/internal/health"
	"github.com/FJ-cyberzilla/mailzilla/internal/log"
	"github.com/FJ-cyberzilla/mailzilla/internal/model"
	"github.com/FJ-cyberzilla/mailzilla/internal/orchestrator"
	"github.com/FJ-cyberzilla/mailzilla/internal/report"
	"github.com/FJ-cyberzilla/mailzilla/internal/resource"
	"github.com/FJ-cyberzilla/mailzilla/internal/risk"
	"github.com/FJ-cyberzilla/mailzilla/internal/source"
)

// NewLookupCmd creates the lookup command.
func NewLookupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup <email-or-phone>",
		Short: "Correlate identity signals for an email address or phone number",
		Long: `Lookup dispatches the identifier to every eligible platform source,
merges the observations into a confidence-scored identity, and assesses
deception risk (shared accounts, timezone manipulation, identity
fragmentation, spoofing).

Identifiers containing "@" are treated as email addresses; everything
else must be a phone number in international format (+1234567890).

Examples:
  # Look up an email address
  mailzilla lookup john@example.com

  # Look up a phone number
  mailzilla lookup +12025550101

  # JSON output to a file
  mailzilla lookup --json -o report.json john@example.com

  # Use a custom source inventory
  mailzilla lookup -c inventory.yml john@example.com

Inventory file (.mailzilla.yml) example:
  sources:
    - platform: github
      category: code
      reliability: 0.8
      email_search: true
      options:
        token: "ghp_..."
  weights:
    reliability: 0.4
    completeness: 0.3`,
		Args: cobra.ExactArgs(1),
		RunE: runLookupCmd,
	}

	// Lookup behavior flags
	cmd.Flags().DurationP("deadline", "t", config.DefaultQueryDeadline,
		"Deadline for the whole lookup (partial results past it)")
	cmd.Flags().IntP("retries", "r", config.DefaultMaxRetries,
		"Retry ceiling per source call")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Inventory file path (default: .mailzilla.yml in current or config directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("no-db", false,
		"Do not save the result to the lookup history database")

	return cmd
}

// runLookupCmd executes the lookup command.
func runLookupCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildLookupConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with PII masking
	logger := log.NewLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runLookup(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildLookupConfig creates a Config from cobra command flags.
func buildLookupConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Identifier = strings.TrimSpace(args[0])

	var err error

	cfg.QueryDeadline, err = cmd.Flags().GetDuration("deadline")
	if err != nil {
		return nil, err
	}

	cfg.MaxRetries, err = cmd.Flags().GetInt("retries")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load the source inventory.
	// If user explicitly specified a path, error when it is missing.
	// Otherwise fall back to the built-in inventory.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.Inventory, err = config.LoadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load inventory file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("inventory file not found: %s", cfg.ConfigFilePath)
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return nil, err
	}
	if !noDB {
		cfg.SaveToDB = true
		cfg.DBDir = config.XDGDataDir()
	}

	return cfg, nil
}

// buildQuery turns the identifier into a typed query.
// Anything with an "@" is an email address; the rest must be a phone
// number in international format.
func buildQuery(identifier string) model.Query {
	if strings.Contains(identifier, "@") {
		return model.NewEmailQuery(identifier)
	}
	return model.NewPhoneQuery(identifier)
}

// runLookup wires the engine and executes one lookup.
func runLookup(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting lookup",
		"sources", len(cfg.Inventory.Sources),
		"deadline", cfg.QueryDeadline,
		"saveToDB", cfg.SaveToDB,
	)

	// Open database connection if saving is enabled
	var db *database.LookupDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	// Source fleet: built-in connectors plus the configured inventory.
	factory := source.NewFactory()
	connector.RegisterDefaults(factory)
	registry, err := source.NewRegistry(cfg.Inventory.Sources, factory)
	if err != nil {
		return fmt.Errorf("failed to build source registry: %w", err)
	}

	// Resource controller: sample once up front so the first lookup runs
	// under a measured strategy, then keep re-evaluating in the background.
	controller := resource.NewController(resource.NewSystemSampler(), logger, cfg.ResourceInterval)
	strategy := controller.Refresh(ctx)
	logger.Info("resource strategy selected",
		"tier", strategy.Tier.String(),
		"max_concurrent", strategy.MaxConcurrentTasks,
		"call_timeout", strategy.CallTimeout,
	)
	go controller.Run(ctx)

	// Health monitor replaces failing sources while the lookup runs.
	monitor := health.NewMonitor(registry, controller, logger, cfg.MonitorInterval)
	go monitor.Run(ctx)

	reliability := func(sourceID string) float64 {
		snap, err := registry.Get(sourceID)
		if err != nil {
			return 0.5
		}
		return snap.Reliability
	}
	correlator := correlate.New(cfg.Inventory.Weights, reliability)
	scorer := risk.NewScorer(cfg.Inventory.Thresholds, logger)
	engine := orchestrator.New(cfg, registry, controller, correlator, scorer, logger)

	query := buildQuery(cfg.Identifier)
	fmt.Printf("Looking up %s...\n", cfg.Identifier)
	startTime := time.Now()

	identity, assessment, err := engine.Correlate(ctx, query)
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}

	elapsed := time.Since(startTime)
	fmt.Printf("Lookup completed in %s\n\n", elapsed.Round(time.Millisecond))

	result := &report.Result{
		Identity: identity,
		Risk:     assessment,
		Version:  getVersion(),
	}
	if err := outputResult(cfg, result); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if db != nil {
		if err := db.SaveLookup(ctx, &identity, &assessment); err != nil {
			logger.Error("failed to save lookup", "error", err)
		} else {
			logger.Info("lookup saved to database")
		}
	}

	return nil
}

// outputResult writes the lookup result in the requested format.
func outputResult(cfg *config.Config, result *report.Result) error {
	output, closeOutput, err := openReportOutput(cfg)
	if err != nil {
		return err
	}
	defer closeOutput()

	writer := selectWriter(cfg, output)
	_, err = writer.Write(result)
	return err
}

// selectWriter picks the report writer for the configured format.
func selectWriter(cfg *config.Config, output *os.File) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output)
	}
}

// openReportOutput resolves the report destination: the configured file
// or stdout. The returned close function is a no-op for stdout.
func openReportOutput(cfg *config.Config) (*os.File, func(), error) {
	if cfg.ReportFile == "" {
		return os.Stdout, func() {}, nil
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports may contain personal data; keep them owner-readable only.
	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
