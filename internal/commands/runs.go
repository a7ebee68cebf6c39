package commands

import (
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/levmatch/levmatch/internal/runlog"
)

func newRunsCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show the reconciliation run history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(dir)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "workspace directory")

	return cmd
}

func runRuns(dir string) error {
	entries, err := runlog.Read(dir)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		pterm.Warning.Println("No runs recorded")
		return nil
	}

	tableData := pterm.TableData{
		{"Run", "Time", "Input", "Year", "Cases", "OK", "Review"},
	}
	for _, e := range entries {
		id := e.ID
		if len(id) > 8 {
			id = id[:8]
		}
		tableData = append(tableData, []string{
			id,
			e.Timestamp.Format("2006-01-02 15:04"),
			e.InputFile,
			strconv.Itoa(e.Year),
			strconv.Itoa(e.Cases),
			strconv.Itoa(e.OK),
			strconv.Itoa(e.Review),
		})
	}

	pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()
	pterm.Info.Printf("%d runs\n", len(entries))
	return nil
}
