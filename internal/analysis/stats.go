package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Round2 rounds to two decimals, ties to even.
func Round2(x float64) float64 {
	return math.RoundToEven(x*100) / 100
}

// Quantile returns the q-th quantile of an ascending slice using linear
// interpolation between closest ranks, the same estimator spreadsheets and
// pandas use by default. Empty input yields NaN.
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// Sorted returns an ascending copy of vals.
func Sorted(vals []float64) []float64 {
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	return cp
}

// Median of unsorted values. Empty input yields NaN.
func Median(vals []float64) float64 {
	return Quantile(Sorted(vals), 0.5)
}

// Quartiles returns Q1 and Q3 of unsorted values.
func Quartiles(vals []float64) (q1, q3 float64) {
	s := Sorted(vals)
	return Quantile(s, 0.25), Quantile(s, 0.75)
}

// IQRBounds returns the 1.5*IQR fences around the quartiles.
func IQRBounds(vals []float64) (lower, upper float64) {
	q1, q3 := Quartiles(vals)
	iqr := q3 - q1
	return q1 - 1.5*iqr, q3 + 1.5*iqr
}

// MeanStd returns the mean and the sample standard deviation (n-1).
// std is NaN for fewer than two values.
func MeanStd(vals []float64) (mean, std float64) {
	switch len(vals) {
	case 0:
		return math.NaN(), math.NaN()
	case 1:
		return vals[0], math.NaN()
	}
	return stat.MeanStdDev(vals, nil)
}

// Mode returns the most frequent element, its count, and whether vals was
// non-empty. Ties go to the element seen first.
func Mode[T comparable](vals []T) (T, int, bool) {
	var zero T
	if len(vals) == 0 {
		return zero, 0, false
	}
	counts := make(map[T]int, len(vals))
	best, bestN := vals[0], 0
	for _, v := range vals {
		counts[v]++
	}
	for _, v := range vals {
		if n := counts[v]; n > bestN {
			best, bestN = v, n
		}
	}
	return best, bestN, true
}

// Frequency is one entry of a value count.
type Frequency[T comparable] struct {
	Value T
	Count int
}

// Frequencies counts vals and orders them by descending count, ties in
// first-seen order.
func Frequencies[T comparable](vals []T) []Frequency[T] {
	idx := make(map[T]int, len(vals))
	var out []Frequency[T]
	for _, v := range vals {
		if i, ok := idx[v]; ok {
			out[i].Count++
			continue
		}
		idx[v] = len(out)
		out = append(out, Frequency[T]{Value: v, Count: 1})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// Pearson correlates x and y, clamped to [-1, 1]. Fewer than two pairs or a
// zero-variance side yields 0.
func Pearson(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return 0
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}
