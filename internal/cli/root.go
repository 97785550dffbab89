// Package cli implements splitctl, an offline front end to the settlement
// engine. Every command reads a YAML ledger and prints its result as text or JSON.
package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitgroup/pkg/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for splitctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "splitctl",
		Short: "Split expenses and settle group debts offline",
		Long: `splitctl runs the group settlement engine over a YAML ledger of members,
expenses and payments, without a server or database.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if opts.Verbose {
				// Engine diagnostics go to stderr so JSON output stays clean.
				slog.SetDefault(logging.New(cmd.ErrOrStderr(), slog.LevelDebug, false))
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewSplitCommand(opts))
	cmd.AddCommand(NewBalancesCommand(opts))
	cmd.AddCommand(NewSimplifyCommand(opts))
	cmd.AddCommand(NewSettleCommand(opts))

	return cmd
}

// ledgerCommand builds a command that loads the ledger named by its only
// argument and hands it to run.
func ledgerCommand(opts *RootOptions, use, short, long string, run func(*OutputFormatter, *Ledger) error) *cobra.Command {
	return &cobra.Command{
		Use:           use + " <ledger.yaml>",
		Short:         short,
		Long:          long,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, err := LoadLedger(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load ledger", err)
			}
			return run(&OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}, ledger)
		},
	}
}
