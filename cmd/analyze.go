package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tidyloom-cli/internal/report"
)

var (
	anaFlags runFlags
	anaQuiet bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Clean and analyze a CSV/TSV/XLSX file and write a report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		res, err := runPipeline(cmd.Context(), args[0], c, anaFlags)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if !anaQuiet {
			report.Console(out, res.Data)
			for _, is := range res.Data.Issues {
				fmt.Fprintf(out, "⚠ %s\n", is)
			}
		}
		for _, p := range res.Paths {
			fmt.Fprintf(out, "✓ Report written to %s\n", p)
		}
		return nil
	},
}

// addRunFlags registers the ingestion and output flags shared with analyze-batch.
func addRunFlags(cmd *cobra.Command, f *runFlags) {
	cmd.Flags().StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: comma | semicolon | tab | pipe (sniffed if omitted)")
	cmd.Flags().StringVar(&f.decimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	cmd.Flags().StringVar(&f.thousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted)")
	cmd.Flags().StringVar(&f.sheetName, "sheet-name", "", "XLSX: sheet name to analyze")
	cmd.Flags().IntVar(&f.sheetIndex, "sheet-index", 0, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	cmd.Flags().IntVar(&f.maxRows, "max-rows", 0, "maximum rows to process (0 = config value)")
	cmd.Flags().BoolVar(&f.detectDates, "detect-dates", false, "read columns whose every value is a date as datetime")
	cmd.Flags().StringSliceVar(&f.formats, "format", nil, "report formats: html, md, json, yaml (repeatable; config value if omitted)")
	cmd.Flags().BoolVar(&f.noHistory, "no-history", false, "do not record this run in the history database")
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	addRunFlags(analyzeCmd, &anaFlags)
	analyzeCmd.Flags().BoolVarP(&anaQuiet, "quiet", "q", false, "only print the written report paths")
}
