// Package analysis summarizes a table without modifying it: per-column
// statistics, Pearson correlations, categorical frequencies and temporal
// ranges.
package analysis

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/KaramelBytes/tidyloom-cli/internal/issues"
	"github.com/KaramelBytes/tidyloom-cli/internal/ordered"
	"github.com/KaramelBytes/tidyloom-cli/internal/table"
)

// TopValuesLimit caps the categorical frequency table.
const TopValuesLimit = 10

// NaT is reported for temporal columns without a single timestamp.
const NaT = "NaT"

// Report is the read-only result of Analyze. Nil sections are absent.
type Report struct {
	Summary     *ordered.Map[ColumnStats]  `json:"summary,omitempty" yaml:"summary,omitempty"`
	Correlation *CorrMatrix                `json:"correlation,omitempty" yaml:"correlation,omitempty"`
	Categorical *ordered.Map[CategoryFreq] `json:"categorical,omitempty" yaml:"categorical,omitempty"`
	TimeSeries  *ordered.Map[TimeRange]    `json:"time_series,omitempty" yaml:"time_series,omitempty"`
}

// ColumnStats is the describe() row of one column. Numeric fields are set
// for numeric columns, Unique/Top/Freq for the rest.
type ColumnStats struct {
	Kind   table.Kind `json:"-" yaml:"-"`
	Count  int        `json:"count" yaml:"count"`
	Mean   *float64   `json:"mean,omitempty" yaml:"mean,omitempty"`
	Std    *float64   `json:"std,omitempty" yaml:"std,omitempty"`
	Min    *float64   `json:"min,omitempty" yaml:"min,omitempty"`
	P25    *float64   `json:"25%,omitempty" yaml:"25%,omitempty"`
	P50    *float64   `json:"50%,omitempty" yaml:"50%,omitempty"`
	P75    *float64   `json:"75%,omitempty" yaml:"75%,omitempty"`
	Max    *float64   `json:"max,omitempty" yaml:"max,omitempty"`
	Unique *int       `json:"unique,omitempty" yaml:"unique,omitempty"`
	Top    *string    `json:"top,omitempty" yaml:"top,omitempty"`
	Freq   *int       `json:"freq,omitempty" yaml:"freq,omitempty"`
}

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string    `json:"columns" yaml:"columns"`
	Values  [][]float64 `json:"values" yaml:"values"` // row-major, Values[i][j]
}

// At returns r for the named pair.
func (m *CorrMatrix) At(a, b string) (float64, bool) {
	ia, ib := -1, -1
	for i, c := range m.Columns {
		if c == a {
			ia = i
		}
		if c == b {
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return 0, false
	}
	return m.Values[ia][ib], true
}

// CategoryFreq is the frequency table of one categorical column.
type CategoryFreq struct {
	UniqueCount int               `json:"unique_count" yaml:"unique_count"`
	TopValues   *ordered.Map[int] `json:"top_values" yaml:"top_values"`
}

// TimeRange is the span covered by one temporal column.
type TimeRange struct {
	MinDate  string `json:"min_date" yaml:"min_date"`
	MaxDate  string `json:"max_date" yaml:"max_date"`
	Duration string `json:"duration" yaml:"duration"`
}

// StepError wraps the failure of one named analysis step.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string { return fmt.Sprintf("%s: %v", e.Step, e.Err) }
func (e *StepError) Unwrap() error { return e.Err }

type step struct {
	name string
	run  func(*table.Table, *Report) error
}

// The order is part of the report contract.
var steps = []step{
	{"describe", describe},
	{"correlation", correlate},
	{"categorical", categorical},
	{"time_series", timeSeries},
}

// Engine runs the analysis steps.
type Engine struct {
	log *zap.Logger
}

// NewEngine returns an engine logging to logger; nil disables logging.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{log: logger.Named("analysis")}
}

// Analyze summarizes t. It never fails: problems end up in the returned log
// and the report keeps whatever sections were built before the failure.
func (e *Engine) Analyze(t *table.Table) (*Report, *issues.Log) {
	rep := &Report{}
	log := issues.New()
	if t.Empty() {
		log.Addf("analysis failed: %v", table.ErrNoData)
		e.log.Warn("analysis skipped", zap.Error(table.ErrNoData))
		return rep, log
	}
	for _, s := range steps {
		if err := e.runStep(s, t, rep); err != nil {
			log.Addf("analysis failed: %v", err)
			e.log.Error("analysis step failed", zap.String("step", s.name), zap.Error(err))
			return rep, log
		}
		e.log.Debug("analysis step done", zap.String("step", s.name))
	}
	e.log.Info("analysis finished",
		zap.Int("columns", t.Cols()),
		zap.Bool("correlation", rep.Correlation != nil),
		zap.Int("categorical", rep.Categorical.Len()),
		zap.Int("time_series", rep.TimeSeries.Len()))
	return rep, log
}

func (e *Engine) runStep(s step, t *table.Table, rep *Report) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &StepError{Step: s.name, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	if err := s.run(t, rep); err != nil {
		return &StepError{Step: s.name, Err: err}
	}
	return nil
}

func describe(t *table.Table, rep *Report) error {
	summary := ordered.New[ColumnStats]()
	for _, c := range t.Columns {
		summary.Set(c.Name, describeColumn(c))
	}
	if summary.Len() > 0 {
		rep.Summary = summary
	}
	return nil
}

func describeColumn(c *table.Column) ColumnStats {
	if c.Kind == table.Numeric {
		vals := c.Floats()
		st := ColumnStats{Kind: c.Kind, Count: len(vals)}
		if len(vals) == 0 {
			return st
		}
		sorted := Sorted(vals)
		mean, std := MeanStd(vals)
		st.Mean = rounded(mean)
		st.Std = rounded(std)
		st.Min = rounded(sorted[0])
		st.P25 = rounded(Quantile(sorted, 0.25))
		st.P50 = rounded(Quantile(sorted, 0.5))
		st.P75 = rounded(Quantile(sorted, 0.75))
		st.Max = rounded(sorted[len(sorted)-1])
		return st
	}
	present := c.Present()
	st := ColumnStats{Kind: c.Kind, Count: len(present)}
	keys, labels := keyed(present)
	freqs := Frequencies(keys)
	unique := len(freqs)
	st.Unique = &unique
	if len(freqs) > 0 {
		top := labels[freqs[0].Value]
		n := freqs[0].Count
		st.Top, st.Freq = &top, &n
	}
	return st
}

func correlate(t *table.Table, rep *Report) error {
	cols := t.ColumnsOfKind(table.Numeric)
	if len(cols) < 2 {
		return nil
	}
	n := len(cols)
	m := &CorrMatrix{Columns: make([]string, n), Values: make([][]float64, n)}
	for i, c := range cols {
		m.Columns[i] = c.Name
		m.Values[i] = make([]float64, n)
		m.Values[i][i] = 1
	}
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			// Pearson reports 0 for a constant column so the matrix stays numeric.
			x, y := pairwiseComplete(cols[a], cols[b])
			r := Round2(Pearson(x, y))
			m.Values[a][b], m.Values[b][a] = r, r
		}
	}
	rep.Correlation = m
	return nil
}

// pairwiseComplete keeps the rows where both columns hold a number.
func pairwiseComplete(a, b *table.Column) (x, y []float64) {
	for i := range a.Values {
		xa, okA := a.Values[i].Float()
		yb, okB := b.Values[i].Float()
		if okA && okB {
			x = append(x, xa)
			y = append(y, yb)
		}
	}
	return x, y
}

func categorical(t *table.Table, rep *Report) error {
	cols := t.ColumnsOfKind(table.Categorical)
	if len(cols) == 0 {
		return nil
	}
	out := ordered.New[CategoryFreq]()
	for _, c := range cols {
		keys, labels := keyed(c.Present())
		freqs := Frequencies(keys)
		top := ordered.New[int]()
		for i, f := range freqs {
			if i == TopValuesLimit {
				break
			}
			top.Set(labels[f.Value], f.Count)
		}
		out.Set(c.Name, CategoryFreq{UniqueCount: len(freqs), TopValues: top})
	}
	rep.Categorical = out
	return nil
}

func timeSeries(t *table.Table, rep *Report) error {
	cols := t.ColumnsOfKind(table.Temporal)
	if len(cols) == 0 {
		return nil
	}
	out := ordered.New[TimeRange]()
	for _, c := range cols {
		out.Set(c.Name, timeRange(c))
	}
	rep.TimeSeries = out
	return nil
}

func timeRange(c *table.Column) TimeRange {
	var lo, hi time.Time
	seen := false
	for _, v := range c.Values {
		ts, ok := v.Timestamp()
		if !ok {
			continue
		}
		if !seen || ts.Before(lo) {
			lo = ts
		}
		if !seen || ts.After(hi) {
			hi = ts
		}
		seen = true
	}
	if !seen {
		return TimeRange{MinDate: NaT, MaxDate: NaT, Duration: NaT}
	}
	return TimeRange{
		MinDate:  lo.Format(table.TimeLayout),
		MaxDate:  hi.Format(table.TimeLayout),
		Duration: FormatDuration(hi.Sub(lo)),
	}
}

// FormatDuration renders d as "N days hh:mm:ss".
func FormatDuration(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign, d = "-", -d
	}
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	return fmt.Sprintf("%s%d days %02d:%02d:%02d", sign, days, h, m, s)
}

// keyed maps cells to comparable keys and remembers a label for each key.
func keyed(vals []table.Value) ([]string, map[string]string) {
	keys := make([]string, len(vals))
	labels := make(map[string]string, len(vals))
	for i, v := range vals {
		k := v.Key()
		keys[i] = k
		if _, ok := labels[k]; !ok {
			labels[k] = v.String()
		}
	}
	return keys, labels
}

func rounded(x float64) *float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil
	}
	r := Round2(x)
	return &r
}
