package analysis

import (
	"math"
	"sort"
	"time"

	"github.com/KaramelBytes/dataprep/internal/dataset"
	"gonum.org/v1/gonum/stat"
)

// Summary holds the moments and order statistics shared by the profiler and
// the preprocessing steps, so both use one set of formulas.
type Summary struct {
	N      int
	Min    float64
	Max    float64
	Mean   float64
	Median float64
	Mode   float64
	Std    float64 // population
	Q1     float64
	Q3     float64
	Skew   float64 // population third standardized moment
}

// Summarize computes a Summary over finite values. An empty input yields the
// zero Summary.
func Summarize(values []float64) Summary {
	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			sorted = append(sorted, v)
		}
	}
	if len(sorted) == 0 {
		return Summary{}
	}
	sort.Float64s(sorted)
	s := Summary{
		N:      len(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Median: quantile(sorted, 0.5),
		Q1:     quantile(sorted, 0.25),
		Q3:     quantile(sorted, 0.75),
		Mode:   mode(sorted),
	}
	if s.Min == s.Max {
		// Constant column: spread and asymmetry are exactly zero.
		s.Mean = s.Min
		return s
	}
	s.Mean, s.Std = stat.PopMeanStdDev(sorted, nil)
	if s.Std > 0 {
		s.Skew = stat.Moment(3, sorted, nil) / math.Pow(s.Std, 3)
	}
	if math.IsNaN(s.Skew) || math.IsInf(s.Skew, 0) {
		s.Skew = 0
	}
	return s
}

// numericStats builds Stats for a numeric column, or nil when fewer than two
// finite values exist.
func numericStats(values []float64, fence float64) *Stats {
	s := Summarize(values)
	if s.N < 2 {
		return nil
	}
	st := &Stats{
		Count:    s.N,
		Mean:     s.Mean,
		Median:   s.Median,
		Min:      s.Min,
		Max:      s.Max,
		Std:      s.Std,
		Q1:       s.Q1,
		Q3:       s.Q3,
		IQR:      s.Q3 - s.Q1,
		Skewness: s.Skew,
	}
	st.OutlierCount = DetectOutliers(values, st, fence).Count
	return st
}

func profileColumn(col *column, t ColumnType, freq map[string]int, rows int, opt Options) ColumnProfile {
	p := ColumnProfile{
		Type:           t,
		Missing:        col.missing,
		MissingPercent: percentText(col.missing, rows),
		Unique:         len(freq),
	}
	switch t {
	case Numeric:
		d := NumericDetail{Stats: numericStats(col.finiteValues(), opt.OutlierFence)}
		if len(freq) <= opt.LowCardinality {
			d.ValueCounts = capCounts(sortedCounts(freq), opt.ValueCountsLimit)
		}
		p.Detail = d
	case Categorical:
		p.Detail = CategoricalDetail{ValueCounts: capCounts(sortedCounts(freq), opt.ValueCountsLimit)}
	case Datetime:
		p.Detail = dateRange(col)
	case Other:
		p.Detail = OtherDetail{Examples: examples(col, 3)}
	}
	return p
}

// capCounts keeps the first limit entries; the rest are omitted.
func capCounts(vc []ValueCount, limit int) []ValueCount {
	if limit > 0 && len(vc) > limit {
		return vc[:limit]
	}
	return vc
}

func dateRange(col *column) DatetimeDetail {
	var lo, hi time.Time
	seen := false
	for _, c := range col.cells {
		if c.missing {
			continue
		}
		t, ok := dataset.ParseTime(c.text)
		if !ok {
			continue
		}
		if !seen || t.Before(lo) {
			lo = t
		}
		if !seen || t.After(hi) {
			hi = t
		}
		seen = true
	}
	if !seen {
		return DatetimeDetail{}
	}
	return DatetimeDetail{Earliest: lo.Format(time.RFC3339), Latest: hi.Format(time.RFC3339)}
}

func examples(col *column, n int) []string {
	var out []string
	for _, c := range col.cells {
		if len(out) >= n {
			break
		}
		if !c.missing {
			out = append(out, c.text)
		}
	}
	return out
}

// mode returns the most frequent value of a sorted slice; ties go to the
// smallest value.
func mode(sorted []float64) float64 {
	best, bestRun := sorted[0], 0
	for i := 0; i < len(sorted); {
		j := i
		for j < len(sorted) && sorted[j] == sorted[i] {
			j++
		}
		if j-i > bestRun {
			best, bestRun = sorted[i], j-i
		}
		i = j
	}
	return best
}

// quantile interpolates linearly between closest ranks, pos = q*(n-1).
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
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
	v := sorted[lo] + w*(sorted[hi]-sorted[lo])
	// Keep rounding from leaking outside the bracketing ranks.
	return math.Min(math.Max(v, sorted[lo]), sorted[hi])
}
