package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/KaramelBytes/tidyloom-cli/internal/table"
)

// missingTokens are read as missing cells, the same set pandas uses.
var missingTokens = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// IsMissing reports whether a raw cell denotes a missing value.
func IsMissing(s string) bool {
	_, ok := missingTokens[strings.TrimSpace(s)]
	return ok
}

// Build assembles a table from a header and raw records. Short records are
// padded, blank headers become "Unnamed: i" and repeated headers get ".1",
// ".2" suffixes.
func Build(header []string, rows [][]string, opt Options) (*table.Table, error) {
	names := headerNames(header)
	cols := make([]*table.Column, len(names))
	cells := make([]string, len(rows))
	for j, name := range names {
		for i, rec := range rows {
			if j < len(rec) {
				cells[i] = strings.TrimSpace(rec[j])
			} else {
				cells[i] = ""
			}
		}
		kind, vals := classify(cells, opt)
		cols[j] = table.NewColumn(name, kind, vals...)
	}
	return table.New(cols...)
}

func headerNames(header []string) []string {
	names := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, dup := seen[name]; dup {
			base := name
			for {
				n++
				name = fmt.Sprintf("%s.%d", base, n)
				if _, taken := seen[name]; !taken {
					break
				}
			}
			seen[base] = n
		}
		seen[name] = 0
		names[i] = name
	}
	return names
}

// classify picks numeric when every present cell is a number, temporal when
// date detection is on and every present cell is a timestamp, and
// categorical otherwise. An all-missing column is numeric.
func classify(cells []string, opt Options) (table.Kind, []table.Value) {
	numeric, temporal, present := true, opt.DetectDates, 0
	for _, s := range cells {
		if IsMissing(s) {
			continue
		}
		present++
		if numeric {
			if _, ok := parseNumeric(s, opt); !ok {
				numeric = false
			}
		}
		if temporal {
			if _, ok := table.ParseTime(s); !ok {
				temporal = false
			}
		}
		if !numeric && !temporal {
			break
		}
	}
	vals := make([]table.Value, len(cells))
	switch {
	case numeric:
		for i, s := range cells {
			if f, ok := parseNumeric(s, opt); ok && !IsMissing(s) {
				vals[i] = table.Num(f)
			}
		}
		return table.Numeric, vals
	case temporal && present > 0:
		for i, s := range cells {
			if ts, ok := table.ParseTime(s); ok {
				vals[i] = table.Time(ts)
			}
		}
		return table.Temporal, vals
	default:
		for i, s := range cells {
			if !IsMissing(s) {
				vals[i] = table.Str(s)
			}
		}
		return table.Categorical, vals
	}
}

func parseNumeric(s string, opt Options) (float64, bool) {
	raw := strings.TrimSpace(s)
	if strings.HasSuffix(raw, "%") {
		raw = strings.TrimSuffix(raw, "%")
	}
	// Normalize spaces
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	// Decide decimal separator
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		if cpos >= 0 && dpos >= 0 {
			if cpos > dpos {
				dec = ','
				thou = '.'
			} else {
				dec = '.'
				thou = ','
			}
		} else if cpos >= 0 {
			dec = ','
		} else {
			dec = '.'
		}
	}
	// Remove thousands separators (common: ',', '.', space) if they differ from decimal
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
