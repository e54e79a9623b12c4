package cleaning

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/KaramelBytes/tidyloom-cli/internal/analysis"
	"github.com/KaramelBytes/tidyloom-cli/internal/ordered"
	"github.com/KaramelBytes/tidyloom-cli/internal/table"
)

type step struct {
	name string
	run  func(*table.Table, *Report) error
}

// Downstream readers match on the step notes and on section presence, so the
// order and the wording below are fixed.
var pipeline = []step{
	{"standardize_columns", standardizeColumns},
	{"drop_empty_rows", dropEmptyRows},
	{"drop_duplicates", dropDuplicates},
	{"impute_missing", imputeMissing},
	{"clamp_outliers", clampOutliers},
	{"coerce_temporal", coerceTemporal},
}

var nonWord = regexp.MustCompile(`[^A-Za-z0-9_]`)

// StandardizeName maps a raw header to its cleaned form.
func StandardizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(nonWord.ReplaceAllString(s, "_")))
}

func standardizeColumns(t *table.Table, rep *Report) error {
	names := make([]string, 0, t.Cols())
	used := make(map[string]struct{}, t.Cols())
	for _, c := range t.Columns {
		name := StandardizeName(c.Name)
		if _, dup := used[name]; dup {
			base := name
			for i := 1; ; i++ {
				name = fmt.Sprintf("%s_%d", base, i)
				if _, taken := used[name]; !taken {
					break
				}
			}
		}
		used[name] = struct{}{}
		names = append(names, name)
	}
	if err := t.Rename(names); err != nil {
		return err
	}
	rep.note("standardized column names")
	return nil
}

func dropEmptyRows(t *table.Table, rep *Report) error {
	keep := make([]bool, t.Rows())
	for _, c := range t.Columns {
		for i, v := range c.Values {
			if !v.IsNull() {
				keep[i] = true
			}
		}
	}
	t.KeepRows(keep)
	rep.note("dropped fully empty rows")
	return nil
}

func dropDuplicates(t *table.Table, rep *Report) error {
	keep := make([]bool, t.Rows())
	seen := make(map[string]struct{}, t.Rows())
	for i := range keep {
		k := t.RowKey(i)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keep[i] = true
	}
	if n := t.KeepRows(keep); n > 0 {
		rep.note("dropped %d duplicate rows", n)
	}
	return nil
}

func imputeMissing(t *table.Table, rep *Report) error {
	filled := ordered.New[string]()
	for _, c := range t.Columns {
		missing := c.MissingCount()
		if missing == 0 {
			continue
		}
		if missing == c.Len() {
			return fmt.Errorf("column %q has no present values", c.Name)
		}
		if c.Kind == table.Numeric {
			med := analysis.Median(c.Floats())
			c.Fill(table.Num(med))
			filled.Set(c.Name, fmt.Sprintf("filled median: %.2f (%d missing)", med, missing))
			continue
		}
		present := c.Present()
		keys := make([]string, len(present))
		for i, v := range present {
			keys[i] = v.Key()
		}
		modeKey, _, _ := analysis.Mode(keys)
		var mode table.Value
		for i, k := range keys {
			if k == modeKey {
				mode = present[i]
				break
			}
		}
		c.Fill(mode)
		filled.Set(c.Name, fmt.Sprintf("filled mode: '%s' (%d missing)", mode, missing))
	}
	if filled.Len() > 0 {
		rep.MissingReport = filled
		rep.note("imputed missing values")
	}
	return nil
}

func clampOutliers(t *table.Table, rep *Report) error {
	clamped := ordered.New[OutlierDetail]()
	for _, c := range t.ColumnsOfKind(table.Numeric) {
		vals := c.Floats()
		if len(vals) == 0 {
			continue
		}
		lower, upper := analysis.IQRBounds(vals)
		if math.IsNaN(lower) || math.IsNaN(upper) {
			return fmt.Errorf("column %q: outlier bounds undefined", c.Name)
		}
		n := 0
		for i, v := range c.Values {
			x, ok := v.Float()
			if !ok {
				continue
			}
			switch {
			case x < lower:
				c.Values[i] = table.Num(lower)
				n++
			case x > upper:
				c.Values[i] = table.Num(upper)
				n++
			}
		}
		if n > 0 {
			clamped.Set(c.Name, OutlierDetail{LowerBound: lower, UpperBound: upper, OutliersCount: n})
		}
	}
	if clamped.Len() > 0 {
		rep.OutlierReport = clamped
		rep.note("clamped outliers")
	}
	return nil
}

// IsTemporalName reports whether a standardized column name marks a
// date or time column.
func IsTemporalName(name string) bool {
	return strings.Contains(name, "date") || strings.Contains(name, "time")
}

func coerceTemporal(t *table.Table, rep *Report) error {
	for _, c := range t.Columns {
		if !IsTemporalName(c.Name) {
			continue
		}
		c.Convert(table.Temporal, toTimestamp)
		rep.note("converted '%s' to datetime", c.Name)
	}
	return nil
}

// toTimestamp coerces one cell. Numbers are epoch nanoseconds; numbers past
// the int64 range and text that does not parse become missing.
func toTimestamp(v table.Value) table.Value {
	if v.IsNull() || v.IsTime() {
		return v
	}
	if f, ok := v.Float(); ok {
		if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
			return table.Null()
		}
		return table.Time(time.Unix(0, int64(f)).UTC())
	}
	s, _ := v.Text()
	if ts, ok := table.ParseTime(s); ok {
		return table.Time(ts)
	}
	return table.Null()
}
