package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Pearson returns the product-moment correlation of two equally long samples.
// Zero-variance inputs and numerically undefined results yield 0; the result
// is clamped to [-1, 1].
func Pearson(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return 0
	}
	if floats.Min(x) == floats.Max(x) || floats.Min(y) == floats.Max(y) {
		return 0
	}
	r := stat.Correlation(x, y, nil)
	switch {
	case math.IsNaN(r) || math.IsInf(r, 0):
		return 0
	case r > 1:
		return 1
	case r < -1:
		return -1
	}
	return r
}

// correlations computes Pearson r for every unordered pair of numeric
// columns over pairwise-complete finite observations. Pairs with fewer than
// minPairs observations are skipped. Results are sorted by |r| desc.
func correlations(numeric []*column, minPairs int) []Correlation {
	cols := append([]*column(nil), numeric...)
	sort.Slice(cols, func(i, j int) bool { return cols[i].name < cols[j].name })

	out := []Correlation{}
	for a := 0; a < len(cols); a++ {
		for b := a + 1; b < len(cols); b++ {
			ca, cb := cols[a], cols[b]
			var xs, ys []float64
			for i := range ca.cells {
				if ca.cells[i].finite() && cb.cells[i].finite() {
					xs = append(xs, ca.cells[i].num)
					ys = append(ys, cb.cells[i].num)
				}
			}
			if len(xs) < minPairs {
				continue
			}
			out = append(out, Correlation{Col1: ca.name, Col2: cb.name, Correlation: Pearson(xs, ys)})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ai, aj := math.Abs(out[i].Correlation), math.Abs(out[j].Correlation)
		if ai == aj {
			if out[i].Col1 == out[j].Col1 {
				return out[i].Col2 < out[j].Col2
			}
			return out[i].Col1 < out[j].Col1
		}
		return ai > aj
	})
	return out
}
