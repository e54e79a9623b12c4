package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KaramelBytes/tidyloom-cli/internal/analysis"
	"github.com/KaramelBytes/tidyloom-cli/internal/chart"
	"github.com/KaramelBytes/tidyloom-cli/internal/cleaning"
	cfgpkg "github.com/KaramelBytes/tidyloom-cli/internal/config"
	"github.com/KaramelBytes/tidyloom-cli/internal/history"
	"github.com/KaramelBytes/tidyloom-cli/internal/issues"
	"github.com/KaramelBytes/tidyloom-cli/internal/parser"
	"github.com/KaramelBytes/tidyloom-cli/internal/report"
	"github.com/KaramelBytes/tidyloom-cli/internal/table"
)

// runFlags are the per-invocation overrides shared by analyze and analyze-batch.
type runFlags struct {
	delimiter   string
	decimal     string
	thousands   string
	sheetName   string
	sheetIndex  int
	maxRows     int
	detectDates bool
	formats     []string
	noHistory   bool
}

// parserOptions merges config and flags. Flags win when set.
func (f runFlags) parserOptions(c *cfgpkg.Global) (parser.Options, error) {
	opt := parser.DefaultOptions()
	delim := c.Delimiter
	if f.delimiter != "" {
		delim = f.delimiter
	}
	d, err := parser.ParseDelimiter(delim)
	if err != nil {
		return opt, err
	}
	opt.Delimiter = d
	// Locale separators
	switch strings.ToLower(strings.TrimSpace(f.decimal)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", f.decimal)
	}
	switch strings.ToLower(strings.TrimSpace(f.thousands)) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", f.thousands)
	}
	opt.SheetName = c.SheetName
	if f.sheetName != "" {
		opt.SheetName = f.sheetName
	}
	if f.sheetIndex > 0 {
		opt.SheetIndex = f.sheetIndex
	}
	opt.MaxRows = c.MaxRows
	if f.maxRows > 0 {
		opt.MaxRows = f.maxRows
	}
	opt.DetectDates = c.DetectDates || f.detectDates
	return opt, nil
}

func (f runFlags) reportFormats(c *cfgpkg.Global) []string {
	if len(f.formats) > 0 {
		return f.formats
	}
	return c.ReportFormats
}

// runResult is what one analyzed file produced.
type runResult struct {
	Data    *report.Data
	Paths   []string
	RowsIn  int
	RowsOut int
}

// runPipeline loads, cleans, analyzes, charts and reports one file. Only a
// load or report-write failure is an error; engine problems land in the
// report's issues.
func runPipeline(ctx context.Context, path string, c *cfgpkg.Global, f runFlags) (*runResult, error) {
	opt, err := f.parserOptions(c)
	if err != nil {
		return nil, err
	}
	log := logger.With(zap.String("file", filepath.Base(path)))

	t, info, err := parser.NewLoader(opt, log).Load(path)
	if err != nil {
		return nil, err
	}
	rowsIn := t.Rows()

	cleaned, crep, clog := cleaning.NewCleaner(log).Clean(t)
	arep, alog := analysis.NewEngine(log).Analyze(cleaned)

	vlog := issues.New()
	if err := chart.Setup(c.ChartFont); err != nil {
		vlog.Addf("visualization failed: font: %v", err)
	}
	viz, rlog := chart.NewRenderer(chart.Options{
		HistogramBins:  c.HistogramBins,
		MaxCategorical: c.MaxCategoricalCharts,
		MaxPairColumns: c.MaxPairplotColumns,
	}, log).Render(cleaned, arep)

	data := &report.Data{
		RunID:          uuid.NewString(),
		GeneratedAt:    time.Now().Format(table.TimeLayout),
		FileInfo:       info,
		Cleaning:       crep,
		Analysis:       arep,
		Visualizations: viz,
		Issues:         issues.New().Merge(clog, alog, vlog, rlog).Entries(),
	}
	paths, err := report.NewWriter(c.OutputDir, log).Write(data, f.reportFormats(c))
	if err != nil {
		return nil, err
	}
	res := &runResult{Data: data, Paths: paths, RowsIn: rowsIn, RowsOut: cleaned.Rows()}

	if c.HistoryEnabled && !f.noHistory {
		if err := recordRun(ctx, c.HistoryDB, res); err != nil {
			// history is best effort
			log.Warn("record history failed", zap.Error(err))
		}
	}
	return res, nil
}

func recordRun(ctx context.Context, dbPath string, res *runResult) error {
	store, err := history.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()
	run := &history.Run{
		ID:          res.Data.RunID,
		RowsIn:      res.RowsIn,
		RowsOut:     res.RowsOut,
		RowsRemoved: res.Data.Cleaning.RowsRemoved,
		Issues:      len(res.Data.Issues),
	}
	if fi := res.Data.FileInfo; fi != nil {
		run.File = fi.Filename
		run.Columns = fi.OriginalShape.Cols
	}
	if len(res.Paths) > 0 {
		run.ReportPath = res.Paths[0]
	}
	return store.Record(ctx, run)
}
