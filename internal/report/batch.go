package report

import (
	"io"
	"path/filepath"

	prettytable "github.com/jedib0t/go-pretty/v6/table"
)

// BatchEntry is the outcome of one file in a batch run.
type BatchEntry struct {
	File    string
	RowsIn  int
	RowsOut int
	Issues  int
	Report  string // first written report, empty on failure
	Err     error
}

// BatchSummary prints one row per file. Failed files show the error in
// place of the report path.
func BatchSummary(w io.Writer, entries []BatchEntry) {
	t := prettytable.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(prettytable.Row{"File", "Rows in", "Rows out", "Issues", "Report"})
	failed := 0
	for _, e := range entries {
		if e.Err != nil {
			failed++
			t.AppendRow(prettytable.Row{filepath.Base(e.File), "", "", "", "failed: " + e.Err.Error()})
			continue
		}
		t.AppendRow(prettytable.Row{filepath.Base(e.File), e.RowsIn, e.RowsOut, e.Issues, e.Report})
	}
	t.AppendFooter(prettytable.Row{"", "", "", "Failed", failed})
	t.SetStyle(prettytable.StyleLight)
	t.Render()
}
