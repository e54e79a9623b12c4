// Package chart renders PNG charts of a cleaned table and inlines them as
// base64 strings for the report writers.
package chart

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"go.uber.org/zap"

	"github.com/KaramelBytes/tidyloom-cli/internal/analysis"
	"github.com/KaramelBytes/tidyloom-cli/internal/issues"
	"github.com/KaramelBytes/tidyloom-cli/internal/table"
)

// Visualization types.
const (
	TypeHistogram   = "histogram"
	TypeCountPlot   = "countplot"
	TypeCorrelation = "correlation"
	TypeTimeSeries  = "timeseries"
)

// Visualization is one rendered chart.
type Visualization struct {
	Type  string `json:"type" yaml:"type"`
	Title string `json:"title" yaml:"title"`
	Image string `json:"image" yaml:"image"` // base64 PNG
}

type Options struct {
	Width          int
	Height         int
	HistogramBins  int
	MaxCategorical int // categorical columns that get a count plot
	MaxPairColumns int // numeric columns paired in the correlation chart
	TopValues      int
}

func DefaultOptions() Options {
	return Options{Width: 1024, Height: 512, HistogramBins: 20, MaxCategorical: 3, MaxPairColumns: 4, TopValues: 10}
}

// graph is satisfied by both bar and line charts.
type graph interface {
	Render(rp gochart.RendererProvider, w io.Writer) error
}

type Renderer struct {
	opt    Options
	logger *zap.Logger
}

func NewRenderer(opt Options, logger *zap.Logger) *Renderer {
	def := DefaultOptions()
	if opt.Width <= 0 {
		opt.Width = def.Width
	}
	if opt.Height <= 0 {
		opt.Height = def.Height
	}
	if opt.HistogramBins <= 0 {
		opt.HistogramBins = def.HistogramBins
	}
	if opt.MaxCategorical < 0 {
		opt.MaxCategorical = 0
	}
	if opt.MaxPairColumns < 2 {
		opt.MaxPairColumns = def.MaxPairColumns
	}
	if opt.TopValues <= 0 {
		opt.TopValues = def.TopValues
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{opt: opt, logger: logger.Named("chart")}
}

// Render draws a histogram per numeric column, a count plot for the first
// MaxCategorical categorical columns, a bar chart of the correlation pairs
// in rep and a monthly mean series when the table has a temporal column.
// A chart that fails is skipped and reported; the others still render.
func (r *Renderer) Render(t *table.Table, rep *analysis.Report) ([]Visualization, *issues.Log) {
	log := issues.New()
	out := []Visualization{}
	if t.Empty() {
		log.Addf("visualization failed: %v", table.ErrNoData)
		return out, log
	}
	add := func(typ, title string, draw func() (graph, error)) {
		img, err := r.draw(draw)
		if err != nil {
			r.logger.Warn("chart failed", zap.String("title", title), zap.Error(err))
			log.Addf("visualization failed: %s: %v", title, err)
			return
		}
		out = append(out, Visualization{Type: typ, Title: title, Image: img})
	}

	for _, c := range t.ColumnsOfKind(table.Numeric) {
		vals := c.Floats()
		if len(vals) == 0 {
			continue
		}
		add(TypeHistogram, "Distribution of "+c.Name, func() (graph, error) {
			return r.histogram(c.Name, vals), nil
		})
	}

	cats := t.ColumnsOfKind(table.Categorical)
	if len(cats) > r.opt.MaxCategorical {
		cats = cats[:r.opt.MaxCategorical]
	}
	for _, c := range cats {
		if len(c.Present()) == 0 {
			continue
		}
		add(TypeCountPlot, "Top values of "+c.Name, func() (graph, error) {
			return r.countPlot(c), nil
		})
	}

	if rep != nil && rep.Correlation != nil && len(rep.Correlation.Columns) > 1 {
		add(TypeCorrelation, "Pairwise correlations", func() (graph, error) {
			return r.correlation(rep.Correlation), nil
		})
	}

	nums, times := t.ColumnsOfKind(table.Numeric), t.ColumnsOfKind(table.Temporal)
	if len(nums) > 0 && len(times) > 0 {
		xs, ys := monthlyMeans(times[0], nums[0])
		if len(xs) >= 2 {
			title := fmt.Sprintf("%s by month (%s)", nums[0].Name, times[0].Name)
			add(TypeTimeSeries, title, func() (graph, error) {
				return r.timeSeries(nums[0].Name, xs, ys), nil
			})
		}
	}

	r.logger.Debug("charts rendered", zap.Int("count", len(out)), zap.Int("failed", log.Len()))
	return out, log
}

func (r *Renderer) draw(build func() (graph, error)) (img string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	g, err := build()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := g.Render(gochart.PNG, &buf); err != nil {
		return "", fmt.Errorf("error rendering chart: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func (r *Renderer) bars(title, yName string, values []gochart.Value, yRange *gochart.ContinuousRange) *gochart.BarChart {
	bar := &gochart.BarChart{
		Title:      title,
		Font:       currentFont(),
		Height:     r.opt.Height,
		Width:      r.opt.Width,
		BarWidth:   24,
		BarSpacing: 6,
		Bars:       values,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Bottom: 20, Left: 20, Right: 20}},
		XAxis: gochart.Style{
			StrokeWidth:         1,
			StrokeColor:         gochart.ColorBlack,
			TextRotationDegrees: 45,
			FontSize:            8,
		},
		YAxis: gochart.YAxis{
			Name:  yName,
			Range: yRange,
			Style: gochart.Style{StrokeWidth: 1, StrokeColor: gochart.ColorBlack, FontSize: 8},
		},
	}
	// Widen the canvas so labels never overlap.
	if need := len(values)*(bar.BarWidth+bar.BarSpacing) + 160; need > bar.Width {
		bar.Width = need
	}
	return bar
}

func (r *Renderer) histogram(name string, vals []float64) *gochart.BarChart {
	counts, edges := bin(vals, r.opt.HistogramBins)
	values := make([]gochart.Value, len(counts))
	peak := 0
	for i, n := range counts {
		values[i] = gochart.Value{Label: fmt.Sprintf("%.3g", edges[i]), Value: float64(n)}
		if n > peak {
			peak = n
		}
	}
	return r.bars("Distribution of "+name, "count", values, &gochart.ContinuousRange{Min: 0, Max: float64(peak)})
}

func (r *Renderer) countPlot(c *table.Column) *gochart.BarChart {
	keys := make([]string, 0, c.Len())
	for _, v := range c.Values {
		if !v.IsNull() {
			keys = append(keys, v.String())
		}
	}
	freqs := analysis.Frequencies(keys)
	if len(freqs) > r.opt.TopValues {
		freqs = freqs[:r.opt.TopValues]
	}
	values := make([]gochart.Value, len(freqs))
	for i, f := range freqs {
		values[i] = gochart.Value{Label: f.Value, Value: float64(f.Count)}
	}
	return r.bars("Top values of "+c.Name, "count", values, &gochart.ContinuousRange{Min: 0, Max: float64(freqs[0].Count)})
}

// correlation draws one bar per pair among the first MaxPairColumns
// columns, strongest first.
func (r *Renderer) correlation(m *analysis.CorrMatrix) *gochart.BarChart {
	type pair struct {
		label string
		r     float64
	}
	n := min(len(m.Columns), r.opt.MaxPairColumns)
	var pairs []pair
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, pair{m.Columns[i] + " ~ " + m.Columns[j], m.Values[i][j]})
		}
	}
	sort.SliceStable(pairs, func(a, b int) bool { return math.Abs(pairs[a].r) > math.Abs(pairs[b].r) })
	values := make([]gochart.Value, len(pairs))
	for i, p := range pairs {
		values[i] = gochart.Value{Label: p.label, Value: p.r}
	}
	bar := r.bars("Pairwise correlations", "r", values, &gochart.ContinuousRange{Min: -1, Max: 1})
	bar.UseBaseValue = true
	bar.BaseValue = 0
	return bar
}

func (r *Renderer) timeSeries(name string, xs []time.Time, ys []float64) *gochart.Chart {
	return &gochart.Chart{
		Title:  name + " by month",
		Font:   currentFont(),
		Width:  r.opt.Width,
		Height: r.opt.Height,
		XAxis: gochart.XAxis{
			Name:           "month",
			ValueFormatter: gochart.TimeValueFormatterWithFormat("2006-01"),
		},
		YAxis: gochart.YAxis{Name: "mean " + name},
		Series: []gochart.Series{
			gochart.TimeSeries{
				Name:    name,
				Style:   gochart.Style{StrokeColor: gochart.ColorBlue, StrokeWidth: 2},
				XValues: xs,
				YValues: ys,
			},
		},
	}
}

// bin splits vals into n equal-width buckets and returns the counts and the
// left edge of each bucket. Equal values land in a single bucket.
func bin(vals []float64, n int) ([]int, []float64) {
	lo, hi := vals[0], vals[0]
	for _, v := range vals {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo || n < 1 {
		return []int{len(vals)}, []float64{lo}
	}
	width := (hi - lo) / float64(n)
	counts := make([]int, n)
	edges := make([]float64, n)
	for i := range edges {
		edges[i] = lo + float64(i)*width
	}
	for _, v := range vals {
		i := int((v - lo) / width)
		if i >= n {
			i = n - 1
		}
		counts[i]++
	}
	return counts, edges
}

// monthlyMeans resamples y by calendar month of x, skipping rows where
// either side is missing. Months without data are omitted.
func monthlyMeans(x, y *table.Column) ([]time.Time, []float64) {
	sums := map[time.Time]float64{}
	counts := map[time.Time]int{}
	for i := range x.Values {
		ts, ok := x.Values[i].Timestamp()
		if !ok {
			continue
		}
		f, ok := y.Values[i].Float()
		if !ok {
			continue
		}
		m := time.Date(ts.Year(), ts.Month(), 1, 0, 0, 0, 0, time.UTC)
		sums[m] += f
		counts[m]++
	}
	xs := make([]time.Time, 0, len(sums))
	for m := range sums {
		xs = append(xs, m)
	}
	sort.Slice(xs, func(i, j int) bool { return xs[i].Before(xs[j]) })
	ys := make([]float64, len(xs))
	for i, m := range xs {
		ys[i] = sums[m] / float64(counts[m])
	}
	return xs, ys
}
