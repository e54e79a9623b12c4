package report

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/report.html.tmpl
var htmlSource string

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"num": func(p *float64) string {
		if p == nil {
			return ""
		}
		return fmt.Sprintf("%.2f", *p)
	},
	"f2": func(f float64) string { return fmt.Sprintf("%.2f", f) },
	// Images are our own base64 output, so the data URI is trusted.
	"dataURI": func(img string) template.URL {
		return template.URL("data:image/png;base64," + img)
	},
}).Parse(htmlSource))

// HTML renders a self-contained HTML document with inlined charts.
func HTML(w io.Writer, d *Data) error {
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, d); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
