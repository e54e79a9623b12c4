package analysis_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/tidyloom-cli/internal/analysis"
	"github.com/KaramelBytes/tidyloom-cli/internal/table"
)

func mustTable(t *testing.T, cols ...*table.Column) *table.Table {
	t.Helper()
	tb, err := table.New(cols...)
	require.NoError(t, err)
	return tb
}

func day(d int) table.Value {
	return table.Time(time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC))
}

func TestAnalyzeNoData(t *testing.T) {
	eng := analysis.NewEngine(nil)
	for name, tb := range map[string]*table.Table{
		"nil":       nil,
		"zero rows": mustTable(t, table.NewColumn("a", table.Numeric)),
	} {
		rep, log := eng.Analyze(tb)
		assert.Equal(t, []string{"analysis failed: no data"}, log.Entries(), name)
		b, err := json.Marshal(rep)
		require.NoError(t, err)
		assert.Equal(t, `{}`, string(b), name)
	}
}

func TestAnalyzeFullReport(t *testing.T) {
	tb := mustTable(t,
		table.NewColumn("price", table.Numeric, table.Num(10), table.Num(20), table.Num(30), table.Num(40), table.Null()),
		table.NewColumn("qty", table.Numeric, table.Num(1), table.Num(2), table.Num(3), table.Num(4), table.Num(5)),
		table.NewColumn("color", table.Categorical, table.Str("red"), table.Str("red"), table.Str("blue"), table.Str("red"), table.Str("green")),
		table.NewColumn("order_date", table.Temporal, day(1), day(3), day(2), table.Null(), day(31)),
	)
	before := tb.Clone()

	rep, log := analysis.NewEngine(nil).Analyze(tb)
	require.True(t, log.Empty(), log.Entries())
	assert.Equal(t, before, tb, "input must not be mutated")

	price, ok := rep.Summary.Get("price")
	require.True(t, ok)
	assert.Equal(t, 4, price.Count)
	assert.Equal(t, 25.0, *price.Mean)
	assert.Equal(t, 12.91, *price.Std)
	assert.Equal(t, 10.0, *price.Min)
	assert.Equal(t, 17.5, *price.P25)
	assert.Equal(t, 25.0, *price.P50)
	assert.Equal(t, 32.5, *price.P75)
	assert.Equal(t, 40.0, *price.Max)
	assert.Nil(t, price.Unique)

	color, ok := rep.Summary.Get("color")
	require.True(t, ok)
	assert.Equal(t, 5, color.Count)
	assert.Equal(t, 3, *color.Unique)
	assert.Equal(t, "red", *color.Top)
	assert.Equal(t, 3, *color.Freq)
	assert.Nil(t, color.Mean)

	require.NotNil(t, rep.Correlation)
	assert.Equal(t, []string{"price", "qty"}, rep.Correlation.Columns)
	r, ok := rep.Correlation.At("price", "qty")
	require.True(t, ok)
	assert.Equal(t, 1.0, r)
	assert.Equal(t, 1.0, rep.Correlation.Values[0][0])

	cat, ok := rep.Categorical.Get("color")
	require.True(t, ok)
	assert.Equal(t, 3, cat.UniqueCount)
	assert.Equal(t, []string{"red", "blue", "green"}, cat.TopValues.Keys())
	assert.Equal(t, []string{"color"}, rep.Categorical.Keys(), "temporal columns are not categorical")

	ts, ok := rep.TimeSeries.Get("order_date")
	require.True(t, ok)
	assert.Equal(t, analysis.TimeRange{
		MinDate:  "2024-01-01 00:00:00",
		MaxDate:  "2024-01-31 00:00:00",
		Duration: "30 days 00:00:00",
	}, ts)
}

func TestAnalyzeOmitsSectionsThatDoNotApply(t *testing.T) {
	tb := mustTable(t, table.NewColumn("age", table.Numeric, table.Num(1), table.Num(2)))
	rep, log := analysis.NewEngine(nil).Analyze(tb)
	require.True(t, log.Empty())

	b, err := json.Marshal(rep)
	require.NoError(t, err)
	var keys map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b, &keys))
	assert.Contains(t, keys, "summary")
	for _, k := range []string{"correlation", "categorical", "time_series"} {
		assert.NotContains(t, keys, k)
	}
	assert.Contains(t, string(keys["summary"]), `"25%":1.25`)
}

func TestCorrelationUsesPairwiseCompleteRows(t *testing.T) {
	tb := mustTable(t,
		table.NewColumn("a", table.Numeric, table.Num(1), table.Num(2), table.Num(3), table.Null(), table.Num(4)),
		table.NewColumn("b", table.Numeric, table.Num(2), table.Num(4), table.Num(6), table.Num(100), table.Null()),
		table.NewColumn("c", table.Numeric, table.Num(5), table.Num(5), table.Num(5), table.Num(5), table.Num(5)),
	)
	rep, _ := analysis.NewEngine(nil).Analyze(tb)
	require.NotNil(t, rep.Correlation)
	ab, _ := rep.Correlation.At("a", "b")
	assert.Equal(t, 1.0, ab)
	ac, _ := rep.Correlation.At("a", "c")
	assert.Equal(t, 0.0, ac, "zero variance reports 0")
	for i := range rep.Correlation.Values {
		for j := range rep.Correlation.Values {
			assert.Equal(t, rep.Correlation.Values[i][j], rep.Correlation.Values[j][i])
		}
		assert.Equal(t, 1.0, rep.Correlation.Values[i][i])
	}
}

func TestCategoricalTopTen(t *testing.T) {
	var vals []table.Value
	for i := 0; i < 12; i++ {
		for j := 0; j <= i; j++ {
			vals = append(vals, table.Str(string(rune('a'+i))))
		}
	}
	tb := mustTable(t, table.NewColumn("letter", table.Categorical, vals...))
	rep, _ := analysis.NewEngine(nil).Analyze(tb)
	cat, ok := rep.Categorical.Get("letter")
	require.True(t, ok)
	assert.Equal(t, 12, cat.UniqueCount)
	assert.Equal(t, 10, cat.TopValues.Len())
	assert.Equal(t, "l", cat.TopValues.Keys()[0])
	n, _ := cat.TopValues.Get("l")
	assert.Equal(t, 12, n)
}

func TestTimeSeriesNaT(t *testing.T) {
	tb := mustTable(t, table.NewColumn("created_time", table.Temporal, table.Null(), table.Null()))
	rep, log := analysis.NewEngine(nil).Analyze(tb)
	require.True(t, log.Empty())
	ts, ok := rep.TimeSeries.Get("created_time")
	require.True(t, ok)
	assert.Equal(t, analysis.NaT, ts.MinDate)
	assert.Equal(t, analysis.NaT, ts.Duration)
}

func TestMarkdownSections(t *testing.T) {
	tb := mustTable(t,
		table.NewColumn("x", table.Numeric, table.Num(1), table.Num(2), table.Num(3)),
		table.NewColumn("y", table.Numeric, table.Num(3), table.Num(2), table.Num(1)),
		table.NewColumn("city", table.Categorical, table.Str("Oslo"), table.Str("Oslo"), table.Str("Rome")),
	)
	rep, _ := analysis.NewEngine(nil).Analyze(tb)
	md := rep.Markdown()
	assert.True(t, strings.HasPrefix(md, "[SUMMARY]\n"))
	assert.Contains(t, md, "- x ~ y: r=-1.00")
	assert.Contains(t, md, "[CATEGORICAL]")
	assert.Contains(t, md, "Oslo(2)")
	assert.NotContains(t, md, "[TIME SERIES]")
}
