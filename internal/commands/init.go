package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/levmatch/levmatch/internal/config"
	"github.com/levmatch/levmatch/internal/gitops"
)

func newInitCommand() *cobra.Command {
	var name string
	var orgNumber string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a reconciliation workspace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(absDir, name, orgNumber)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "company name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&orgNumber, "org", "", "organisation number")

	return cmd
}

func runInit(dir, name, orgNumber string) error {
	// Create directory structure.
	for _, d := range []string{"sie", "reports", "logs"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	// Write levmatch.yaml.
	cfg := config.Default(name)
	cfg.Company.OrgNumber = orgNumber
	if err := config.Save(filepath.Join(dir, "levmatch.yaml"), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// The run log is machine-local history; only config and reports are
	// part of the audit trail.
	gitignore := "logs/\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	for _, d := range []string{"sie", "reports"} {
		if err := os.WriteFile(filepath.Join(dir, d, ".gitkeep"), []byte{}, 0o644); err != nil {
			return fmt.Errorf("writing .gitkeep: %w", err)
		}
	}

	// Initialize git and create the initial commit.
	if err := gitops.Init(dir, cfg.Git.AuthorName, cfg.Git.AuthorEmail); err != nil {
		return fmt.Errorf("git init: %w", err)
	}

	hash, err := gitops.CommitAll(dir, "init: "+name)
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	pterm.Success.Printf("Initialized workspace for %s at %s (%s)\n", name, dir, hash)
	return nil
}
