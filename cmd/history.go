package cmd

import (
	"fmt"

	prettytable "github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tidyloom-cli/internal/history"
	"github.com/KaramelBytes/tidyloom-cli/internal/table"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded analyze runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		store, err := history.Open(c.HistoryDB)
		if err != nil {
			return err
		}
		defer store.Close()
		runs, err := store.List(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(out, "(no runs)")
			return nil
		}
		t := prettytable.NewWriter()
		t.SetOutputMirror(out)
		t.AppendHeader(prettytable.Row{"When", "File", "Rows in", "Rows out", "Removed", "Issues", "Report"})
		for _, r := range runs {
			t.AppendRow(prettytable.Row{
				r.CreatedAt.Local().Format(table.TimeLayout), r.File, r.RowsIn, r.RowsOut, r.RowsRemoved, r.Issues, r.ReportPath,
			})
		}
		t.SetStyle(prettytable.StyleLight)
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to show (0 = all)")
}
