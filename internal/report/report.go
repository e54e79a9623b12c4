// Package report renders the outcome of one run as HTML, Markdown, JSON,
// YAML or a console summary, and writes the file formats to disk.
package report

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/tidyloom-cli/internal/analysis"
	"github.com/KaramelBytes/tidyloom-cli/internal/chart"
	"github.com/KaramelBytes/tidyloom-cli/internal/cleaning"
	"github.com/KaramelBytes/tidyloom-cli/internal/parser"
	"github.com/KaramelBytes/tidyloom-cli/internal/utils"
)

// Data is everything a report shows about one run.
type Data struct {
	RunID          string                `json:"run_id" yaml:"run_id"`
	GeneratedAt    string                `json:"generated_at" yaml:"generated_at"`
	FileInfo       *parser.FileInfo      `json:"file_info" yaml:"file_info"`
	Cleaning       *cleaning.Report      `json:"cleaning" yaml:"cleaning"`
	Analysis       *analysis.Report      `json:"analysis" yaml:"analysis"`
	Visualizations []chart.Visualization `json:"visualizations" yaml:"visualizations"`
	Issues         []string              `json:"issues" yaml:"issues"`
}

// Filename returns the source file name, or "data" when unknown.
func (d *Data) Filename() string {
	if d.FileInfo == nil || d.FileInfo.Filename == "" {
		return "data"
	}
	return d.FileInfo.Filename
}

func JSON(d *Data) ([]byte, error) {
	return utils.PrettyJSON(normalized(d))
}

func YAML(d *Data) ([]byte, error) {
	b, err := yaml.Marshal(normalized(d))
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	return b, nil
}

// normalized swaps nil lists for empty ones so exports always carry them.
func normalized(d *Data) *Data {
	out := *d
	if out.Visualizations == nil {
		out.Visualizations = []chart.Visualization{}
	}
	if out.Issues == nil {
		out.Issues = []string{}
	}
	return &out
}

// Markdown renders a compact plain-text report. Images are listed by title.
func Markdown(d *Data) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("# Data report: %s\n\n", d.Filename()))
	if fi := d.FileInfo; fi != nil {
		b.WriteString("[FILE]\n")
		b.WriteString(fmt.Sprintf("- type: %s\n", fi.FileType))
		if fi.Sheet != "" {
			b.WriteString(fmt.Sprintf("- sheet: %s\n", fi.Sheet))
		}
		b.WriteString(fmt.Sprintf("- loaded: %s\n", fi.LoadTime))
		b.WriteString(fmt.Sprintf("- original shape: %d rows x %d columns\n\n", fi.OriginalShape.Rows, fi.OriginalShape.Cols))
	}
	if len(d.Issues) > 0 {
		b.WriteString("[ISSUES]\n")
		for _, is := range d.Issues {
			b.WriteString("- " + is + "\n")
		}
		b.WriteString("\n")
	}
	if d.Cleaning != nil {
		b.WriteString(d.Cleaning.Markdown())
		b.WriteString("\n")
	}
	if d.Analysis != nil {
		if md := d.Analysis.Markdown(); md != "" {
			b.WriteString(md)
			b.WriteString("\n")
		}
	}
	if len(d.Visualizations) > 0 {
		b.WriteString("[VISUALIZATIONS]\n")
		for _, v := range d.Visualizations {
			b.WriteString(fmt.Sprintf("- %s (%s)\n", v.Title, v.Type))
		}
	}
	return b.String()
}
