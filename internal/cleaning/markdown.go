package cleaning

import (
	"fmt"
	"strings"
)

// Markdown renders the cleaning audit trail.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[CLEANING]\n")
	for _, s := range r.Steps {
		b.WriteString("- ")
		b.WriteString(s)
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("Rows removed: %d\n", r.RowsRemoved))
	if r.FinalShape != nil {
		b.WriteString(fmt.Sprintf("Final shape: %d rows x %d columns\n", r.FinalShape.Rows, r.FinalShape.Cols))
	}
	if r.MissingReport.Len() > 0 {
		b.WriteString("\n[MISSING VALUES]\n")
		for _, e := range r.MissingReport.Entries() {
			b.WriteString(fmt.Sprintf("- %s: %s\n", e.Key, e.Value))
		}
	}
	if r.OutlierReport.Len() > 0 {
		b.WriteString("\n[OUTLIERS]\n")
		for _, e := range r.OutlierReport.Entries() {
			d := e.Value
			b.WriteString(fmt.Sprintf("- %s: %d clamped to [%.2f, %.2f]\n", e.Key, d.OutliersCount, d.LowerBound, d.UpperBound))
		}
	}
	return b.String()
}
