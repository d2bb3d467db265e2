// Package main provides the entry point for the mailzilla CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for mailzilla.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mailzilla",
		Short: "Multi-source identity intelligence engine",
		Long: `Mailzilla correlates identity signals for an email address or phone
number across many platform sources, merges them into a single
confidence-scored identity, and flags deception risk.

Source dispatch adapts to the host: concurrency and per-call timeouts
follow the current resource strategy, and unhealthy sources are replaced
automatically.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewLookupCmd())
	cmd.AddCommand(NewHealthCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
