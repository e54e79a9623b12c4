package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Markdown renders a compact report suitable for terminals or standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	if r.Summary.Len() > 0 {
		b.WriteString("[SUMMARY]\n")
		for _, e := range r.Summary.Entries() {
			s := e.Value
			b.WriteString(fmt.Sprintf("- %s: %s (count %d)", safeName(e.Key), s.Kind, s.Count))
			if s.Mean != nil {
				b.WriteString(fmt.Sprintf(": mean %s, std %s, min %s, 25%% %s, 50%% %s, 75%% %s, max %s",
					num(s.Mean), num(s.Std), num(s.Min), num(s.P25), num(s.P50), num(s.P75), num(s.Max)))
			}
			if s.Unique != nil {
				b.WriteString(fmt.Sprintf(": unique %d", *s.Unique))
				if s.Top != nil {
					b.WriteString(fmt.Sprintf(", top %s (%d)", safeVal(*s.Top), *s.Freq))
				}
			}
			b.WriteString("\n")
		}
	}
	if r.Correlation != nil && len(r.Correlation.Columns) >= 2 {
		b.WriteString("\n[CORRELATIONS]\n")
		// list top pairs by |r|
		type pr struct {
			A, B string
			R    float64
		}
		var pairs []pr
		n := len(r.Correlation.Columns)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				pairs = append(pairs, pr{A: r.Correlation.Columns[i], B: r.Correlation.Columns[j], R: r.Correlation.Values[i][j]})
			}
		}
		sort.SliceStable(pairs, func(i, j int) bool {
			return math.Abs(pairs[i].R) > math.Abs(pairs[j].R)
		})
		if len(pairs) > 10 {
			pairs = pairs[:10]
		}
		for _, p := range pairs {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.2f\n", p.A, p.B, p.R))
		}
	}
	if r.Categorical.Len() > 0 {
		b.WriteString("\n[CATEGORICAL]\n")
		for _, e := range r.Categorical.Entries() {
			b.WriteString(fmt.Sprintf("- %s (unique=%d): ", safeName(e.Key), e.Value.UniqueCount))
			for i, kv := range e.Value.TopValues.Entries() {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Key), kv.Value))
			}
			b.WriteString("\n")
		}
	}
	if r.TimeSeries.Len() > 0 {
		b.WriteString("\n[TIME SERIES]\n")
		for _, e := range r.TimeSeries.Entries() {
			b.WriteString(fmt.Sprintf("- %s: %s to %s (%s)\n", safeName(e.Key), e.Value.MinDate, e.Value.MaxDate, e.Value.Duration))
		}
	}
	return b.String()
}

func num(p *float64) string {
	if p == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *p)
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
