package report

import (
	"fmt"
	"io"

	prettytable "github.com/jedib0t/go-pretty/v6/table"
)

// Console prints a short run summary followed by the numeric statistics.
func Console(w io.Writer, d *Data) {
	t := prettytable.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Run summary")
	t.AppendHeader(prettytable.Row{"Item", "Value"})
	t.AppendRow(prettytable.Row{"File", d.Filename()})
	if fi := d.FileInfo; fi != nil {
		t.AppendRow(prettytable.Row{"File type", fi.FileType})
		t.AppendRow(prettytable.Row{"Original shape", fi.OriginalShape.String()})
	}
	if c := d.Cleaning; c != nil {
		t.AppendRow(prettytable.Row{"Cleaning steps", len(c.Steps)})
		t.AppendRow(prettytable.Row{"Rows removed", c.RowsRemoved})
		if c.FinalShape != nil {
			t.AppendRow(prettytable.Row{"Final shape", c.FinalShape.String()})
		}
	}
	t.AppendRow(prettytable.Row{"Charts", len(d.Visualizations)})
	t.AppendRow(prettytable.Row{"Issues", len(d.Issues)})
	t.SetStyle(prettytable.StyleLight)
	t.Render()

	if d.Analysis == nil || d.Analysis.Summary.Len() == 0 {
		return
	}
	s := prettytable.NewWriter()
	s.SetOutputMirror(w)
	s.AppendHeader(prettytable.Row{"Column", "Count", "Mean", "Std", "Min", "50%", "Max", "Unique", "Top"})
	for _, e := range d.Analysis.Summary.Entries() {
		st := e.Value
		row := prettytable.Row{e.Key, st.Count, cell(st.Mean), cell(st.Std), cell(st.Min), cell(st.P50), cell(st.Max), "", ""}
		if st.Unique != nil {
			row[7] = *st.Unique
		}
		if st.Top != nil {
			row[8] = *st.Top
		}
		s.AppendRow(row)
	}
	s.SetStyle(prettytable.StyleLight)
	s.Render()
}

func cell(p *float64) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *p)
}
