package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/levmatch/levmatch/internal/accounts"
	"github.com/levmatch/levmatch/internal/classify"
	"github.com/levmatch/levmatch/internal/config"
	"github.com/levmatch/levmatch/internal/gitops"
	"github.com/levmatch/levmatch/internal/match"
	"github.com/levmatch/levmatch/internal/model"
	"github.com/levmatch/levmatch/internal/report"
	"github.com/levmatch/levmatch/internal/runlog"
	"github.com/levmatch/levmatch/internal/sie"
)

func newRunCommand(newLogger func() zerolog.Logger) *cobra.Command {
	var (
		year       int
		carryFile  string
		configPath string
		opening    string
		commit     bool
	)

	cmd := &cobra.Command{
		Use:   "run <sie-file>",
		Short: "Reconcile supplier invoices for one fiscal year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			openingBalance := decimal.Zero
			if opening != "" {
				var err error
				openingBalance, err = decimal.NewFromString(opening)
				if err != nil {
					return fmt.Errorf("parsing opening balance: %w", err)
				}
			}
			return runRun(newLogger(), args[0], year, carryFile, configPath, openingBalance, commit)
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "fiscal year to reconcile (required)")
	_ = cmd.MarkFlagRequired("year")
	cmd.Flags().StringVar(&carryFile, "carry", "", "following year's SIE file, for payments and corrections landing there")
	cmd.Flags().StringVar(&configPath, "config", "levmatch.yaml", "workspace config file")
	cmd.Flags().StringVar(&opening, "opening", "", "opening balance of the payable account")
	cmd.Flags().BoolVar(&commit, "commit", false, "commit generated reports even when auto_commit is off")

	return cmd
}

func runRun(log zerolog.Logger, input string, year int, carryFile, configPath string, opening decimal.Decimal, commit bool) error {
	cfg, workspace, err := loadWorkspace(log, configPath)
	if err != nil {
		return err
	}
	rules := cfg.Rules(year)
	if err := rules.Validate(); err != nil {
		return err
	}

	decoder := sie.NewDecoder(rules, log)
	f, err := decoder.DecodeFile(input)
	if err != nil {
		return err
	}
	vouchers := f.Vouchers
	if carryFile != "" {
		carry, err := decoder.DecodeFile(carryFile)
		if err != nil {
			return fmt.Errorf("decoding carry file: %w", err)
		}
		vouchers = append(vouchers, carry.Vouchers...)
	}

	classifier := classify.NewClassifier(rules, log)
	events := classifier.Events(vouchers)
	excluded := classifier.CorrectionExclusions(vouchers, year)

	result, err := match.NewMatcher(rules, log).Match(vouchers, events, excluded, opening)
	if err != nil {
		return err
	}

	currency := f.Meta.Currency
	if currency == "" {
		currency = cfg.Report.Currency
	}
	writer := report.NewWriter(rules, currency)
	outDir := filepath.Join(workspace, cfg.Report.OutputDir)
	paths, err := writer.WriteAll(outDir, vouchers, result.Cases, result.Summary, time.Now())
	if err != nil {
		return err
	}

	if err := runlog.Append(workspace, runlog.NewEntry(input, year, result.Summary, paths[0])); err != nil {
		log.Warn().Err(err).Msg("failed to append run log")
	}

	chart := accounts.NewChart(f.Meta.Accounts)
	printRun(f.Meta, chart, rules, result, currency, paths)

	if commit || cfg.Git.AutoCommit {
		if !gitops.IsRepo(workspace) {
			log.Warn().Str("dir", workspace).Msg("not a git repository, skipping report commit")
			return nil
		}
		hash, err := gitops.CommitPaths(workspace, fmt.Sprintf("report: reconcile %d", year), cfg.Report.OutputDir)
		if err != nil {
			return fmt.Errorf("committing reports: %w", err)
		}
		pterm.Info.Printf("Committed reports (%s)\n", hash)
	}
	return nil
}

// loadWorkspace reads the config at path. The workspace root is the
// config's directory. A missing default config is not an error: run works
// on bare SIE files outside an initialized workspace.
func loadWorkspace(log zerolog.Logger, path string) (*config.Config, string, error) {
	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug().Str("path", path).Msg("no config file, using defaults")
			return config.Default(""), ".", nil
		}
		return nil, "", err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("resolving config path: %w", err)
	}
	return cfg, filepath.Dir(abs), nil
}

func printRun(meta sie.Meta, chart *accounts.Chart, rules model.Config, result *match.Result, currency string, paths []string) {
	s := result.Summary
	if meta.Company != "" {
		pterm.DefaultSection.Printf("%s %d", meta.Company, s.Year)
	} else {
		pterm.DefaultSection.Printf("Reconciliation %d", s.Year)
	}

	counts := s.StatusCounts
	statusData := pterm.TableData{
		{"Status", "Cases"},
		{string(model.StatusOK), strconv.Itoa(counts[model.StatusOK])},
		{string(model.StatusMissingClearing), strconv.Itoa(counts[model.StatusMissingClearing])},
		{string(model.StatusMissingReceipt), strconv.Itoa(counts[model.StatusMissingReceipt])},
		{string(model.StatusNeedsReview), strconv.Itoa(counts[model.StatusNeedsReview])},
		{string(model.StatusAmbiguous), strconv.Itoa(counts[model.StatusAmbiguous])},
		{"Total", strconv.Itoa(s.TotalCases)},
	}
	pterm.DefaultTable.WithHasHeader().WithData(statusData).Render()

	balanceData := pterm.TableData{
		{chart.Label(rules.APAccount), fmt.Sprintf("Amount (%s)", currency)},
		{"Opening balance", report.Amount(s.OpeningBalance)},
		{"Kredit (receipts)", report.Amount(s.KreditSum)},
		{"Debet (clearings)", report.Amount(s.DebetSum)},
		{"Closing balance", report.Amount(s.ClosingBalance)},
	}
	pterm.DefaultTable.WithHasHeader().WithData(balanceData).Render()

	for _, p := range paths {
		pterm.Info.Println(p)
	}

	review := s.TotalCases - counts[model.StatusOK]
	if review == 0 {
		pterm.Success.Printf("All %d cases reconciled\n", s.TotalCases)
	} else {
		pterm.Warning.Printf("%d of %d cases need review\n", review, s.TotalCases)
	}
}
