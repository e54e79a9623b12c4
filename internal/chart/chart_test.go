package chart

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/KaramelBytes/tidyloom-cli/internal/analysis"
	"github.com/KaramelBytes/tidyloom-cli/internal/table"
)

func day(y int, m time.Month, d int) table.Value {
	return table.Time(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func sampleTable(t *testing.T) *table.Table {
	t.Helper()
	tb, err := table.New(
		table.NewColumn("yield", table.Numeric, table.Num(2.1), table.Num(2.4), table.Num(3.0), table.Num(2.8)),
		table.NewColumn("rainfall", table.Numeric, table.Num(40), table.Num(55), table.Num(80), table.Num(71)),
		table.NewColumn("variety", table.Categorical, table.Str("cascade"), table.Str("saaz"), table.Str("cascade"), table.Null()),
		table.NewColumn("picked", table.Temporal, day(2024, 1, 5), day(2024, 1, 20), day(2024, 2, 3), day(2024, 3, 9)),
	)
	require.NoError(t, err)
	return tb
}

func TestRenderAllKinds(t *testing.T) {
	tb := sampleTable(t)
	rep, _ := analysis.NewEngine(zaptest.NewLogger(t)).Analyze(tb)
	viz, log := NewRenderer(DefaultOptions(), zaptest.NewLogger(t)).Render(tb, rep)
	require.Zero(t, log.Len(), log.Entries())

	var types []string
	for _, v := range viz {
		types = append(types, v.Type)
		png, err := base64.StdEncoding.DecodeString(v.Image)
		require.NoError(t, err, v.Title)
		assert.Equal(t, "\x89PNG", string(png[:4]), v.Title)
	}
	assert.Equal(t, []string{TypeHistogram, TypeHistogram, TypeCountPlot, TypeCorrelation, TypeTimeSeries}, types)
	assert.Equal(t, "Distribution of yield", viz[0].Title)
	assert.Equal(t, "yield by month (picked)", viz[4].Title)
}

func TestRenderNoData(t *testing.T) {
	viz, log := NewRenderer(DefaultOptions(), nil).Render(nil, nil)
	assert.Empty(t, viz)
	assert.Equal(t, []string{"visualization failed: no data"}, log.Entries())
}

func TestRenderCategoricalLimit(t *testing.T) {
	tb, err := table.New(
		table.NewColumn("a", table.Categorical, table.Str("x"), table.Str("y")),
		table.NewColumn("b", table.Categorical, table.Str("x"), table.Str("y")),
	)
	require.NoError(t, err)
	opt := DefaultOptions()
	opt.MaxCategorical = 1
	viz, _ := NewRenderer(opt, nil).Render(tb, nil)
	require.Len(t, viz, 1)
	assert.Equal(t, "Top values of a", viz[0].Title)
}

func TestBin(t *testing.T) {
	counts, edges := bin([]float64{0, 1, 2, 3, 4, 10}, 5)
	assert.Equal(t, []int{2, 2, 1, 0, 1}, counts)
	assert.Equal(t, []float64{0, 2, 4, 6, 8}, edges)

	counts, edges = bin([]float64{7, 7, 7}, 5)
	assert.Equal(t, []int{3}, counts)
	assert.Equal(t, []float64{7}, edges)
}

func TestMonthlyMeans(t *testing.T) {
	tb := sampleTable(t)
	xs, ys := monthlyMeans(tb.Column("picked"), tb.Column("yield"))
	require.Len(t, xs, 3)
	assert.Equal(t, time.January, xs[0].Month())
	assert.InDelta(t, 2.25, ys[0], 1e-9)
	assert.InDelta(t, 2.8, ys[2], 1e-9)
}
