// Package commands wires the levmatch CLI: workspace init, reconciliation
// runs, voucher inspection and run history.
package commands

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/levmatch/levmatch/internal/buildinfo"
	"github.com/levmatch/levmatch/internal/logger"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:     "levmatch",
		Short:   "Supplier invoice reconciliation for SIE bookkeeping exports",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log decode and match diagnostics")

	newLogger := func() zerolog.Logger {
		level := zerolog.WarnLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		return logger.New(level)
	}

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newRunCommand(newLogger))
	rootCmd.AddCommand(newVouchersCommand(newLogger))
	rootCmd.AddCommand(newRunsCommand())

	return rootCmd
}
