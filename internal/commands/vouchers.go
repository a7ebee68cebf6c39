package commands

import (
	"strconv"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/levmatch/levmatch/internal/accounts"
	"github.com/levmatch/levmatch/internal/model"
	"github.com/levmatch/levmatch/internal/report"
	"github.com/levmatch/levmatch/internal/sie"
)

func newVouchersCommand(newLogger func() zerolog.Logger) *cobra.Command {
	var year int
	var account string

	cmd := &cobra.Command{
		Use:   "vouchers <sie-file>",
		Short: "List decoded vouchers from a SIE file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVouchers(newLogger(), args[0], year, account)
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "only vouchers dated in this year")
	cmd.Flags().StringVar(&account, "account", "", "only vouchers touching this account")

	return cmd
}

func runVouchers(log zerolog.Logger, input string, year int, account string) error {
	cfg := model.DefaultConfig()
	f, err := sie.NewDecoder(cfg, log).DecodeFile(input)
	if err != nil {
		return err
	}
	chart := accounts.NewChart(f.Meta.Accounts)

	switch {
	case account != "":
		pterm.DefaultSection.Printf("Vouchers on %s", chart.Label(account))
	case f.Meta.Company != "":
		pterm.DefaultSection.Printf("Vouchers for %s", f.Meta.Company)
	default:
		pterm.DefaultSection.Println("Vouchers")
	}

	tableData := pterm.TableData{
		{"Voucher", "Date", "Description", "Lines", "Balance"},
	}
	shown := 0
	for _, v := range f.Vouchers {
		if year != 0 && v.Date.Year() != year {
			continue
		}
		if account != "" && !v.HasAccount(account) {
			continue
		}
		balance := report.Amount(v.Balance())
		if !v.Balanced(cfg.AmountTolerance) {
			balance = pterm.Red(balance)
		}
		tableData = append(tableData, []string{
			v.ID(),
			v.Date.Format("2006-01-02"),
			truncate(v.Description, 48),
			strconv.Itoa(len(v.Transactions)),
			balance,
		})
		shown++
	}

	if shown == 0 {
		pterm.Warning.Println("No vouchers matched")
		return nil
	}

	pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()
	pterm.Info.Printf("%d of %d vouchers shown\n", shown, len(f.Vouchers))
	return nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
