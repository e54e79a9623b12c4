package table

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNewValidates(t *testing.T) {
	_, err := New(NewColumn("a", Numeric, Num(1)), NewColumn("a", Numeric, Num(2)))
	require.Error(t, err)

	_, err = New(NewColumn("a", Numeric, Num(1)), NewColumn("b", Numeric))
	require.Error(t, err)

	_, err = New(NewColumn("a", Numeric), nil)
	require.Error(t, err)

	tb, err := New(NewColumn("a", Numeric, Num(1), Null()), NewColumn("b", Categorical, Str("x"), Str("y")))
	require.NoError(t, err)
	assert.Equal(t, Shape{Rows: 2, Cols: 2}, tb.Shape())
}

func TestEmpty(t *testing.T) {
	var nilTable *Table
	assert.True(t, nilTable.Empty())
	assert.Equal(t, 0, nilTable.Rows())

	tb, err := New()
	require.NoError(t, err)
	assert.True(t, tb.Empty())

	tb, err = New(NewColumn("a", Numeric))
	require.NoError(t, err)
	assert.True(t, tb.Empty())
}

func TestKeepRowsAndRowKey(t *testing.T) {
	tb, err := New(
		NewColumn("n", Numeric, Num(1), Num(1), Null(), Num(2)),
		NewColumn("s", Categorical, Str("a"), Str("a"), Null(), Str("b")),
	)
	require.NoError(t, err)

	assert.Equal(t, tb.RowKey(0), tb.RowKey(1))
	assert.NotEqual(t, tb.RowKey(0), tb.RowKey(3))

	dropped := tb.KeepRows([]bool{true, false, false, true})
	assert.Equal(t, 2, dropped)
	assert.Equal(t, 2, tb.Rows())
	assert.Equal(t, []float64{1, 2}, tb.Column("n").Floats())
}

func TestValueKeysDistinguishTypes(t *testing.T) {
	assert.NotEqual(t, Num(1).Key(), Str("1").Key())
	assert.True(t, Null().Equal(Value{}))
	assert.Equal(t, "2.5", Num(2.5).String())
	ts := time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-01 08:30:00", Time(ts).String())
}

func TestColumnConvertAndFill(t *testing.T) {
	c := NewColumn("order_date", Categorical, Str("2024-01-02"), Str("junk"), Null())
	c.Convert(Temporal, func(v Value) Value {
		s, ok := v.Text()
		if !ok {
			return v
		}
		if ts, ok := ParseTime(s); ok {
			return Time(ts)
		}
		return Null()
	})
	assert.Equal(t, Temporal, c.Kind)
	assert.Equal(t, 2, c.MissingCount())
	assert.Equal(t, 2, c.Fill(Str("x")))
	assert.Equal(t, 0, c.MissingCount())
}

func TestShapeMarshal(t *testing.T) {
	b, err := json.Marshal(Shape{Rows: 3, Cols: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `[3,2]`, string(b))

	var back Shape
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, Shape{Rows: 3, Cols: 2}, back)

	y, err := yaml.Marshal(map[string]Shape{"final_shape": {Rows: 3, Cols: 2}})
	require.NoError(t, err)
	assert.Contains(t, string(y), "- 3")
}

func TestParseTime(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2024-08-10", time.Date(2024, 8, 10, 0, 0, 0, 0, time.UTC), true},
		{"2024-08-10 14:05:00", time.Date(2024, 8, 10, 14, 5, 0, 0, time.UTC), true},
		{"2024-08-10T14:05:00Z", time.Date(2024, 8, 10, 14, 5, 0, 0, time.UTC), true},
		{"03/04/2024", time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), true},
		{"not a date", time.Time{}, false},
		{"", time.Time{}, false},
	}
	for _, tc := range cases {
		got, ok := ParseTime(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		if tc.ok {
			assert.True(t, tc.want.Equal(got), "%s: got %v", tc.in, got)
		}
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{Numeric, Categorical, Temporal} {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKind("blob")
	assert.Error(t, err)
}
