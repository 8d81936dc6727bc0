package analysis

import (
	"math"

	"github.com/KaramelBytes/dataprep/internal/dataset"
)

// Outliers is the Tukey fence result for one numeric column.
type Outliers struct {
	Lower   float64 `json:"lowerWhisker"`
	Upper   float64 `json:"upperWhisker"`
	Count   int     `json:"count"`
	Indices []int   `json:"indices,omitempty"` // positions in the input slice
}

// DetectOutliers applies the IQR rule: whiskers sit at fence·IQR beyond the
// quartiles, clamped to the observed min/max, and finite values strictly
// outside them are outliers. Nil stats yield no outliers.
func DetectOutliers(values []float64, st *Stats, fence float64) Outliers {
	if st == nil {
		return Outliers{}
	}
	if fence <= 0 {
		fence = 1.5
	}
	out := Outliers{
		Lower: math.Max(st.Min, st.Q1-fence*st.IQR),
		Upper: math.Min(st.Max, st.Q3+fence*st.IQR),
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if v < out.Lower || v > out.Upper {
			out.Count++
			out.Indices = append(out.Indices, i)
		}
	}
	return out
}

// ColumnOutliers runs DetectOutliers for one column of d against the stats of
// a, so Indices are row positions in d. Non-numeric or unknown columns yield
// no outliers.
func ColumnOutliers(d *dataset.Dataset, a *Analysis, name string, fence float64) Outliers {
	p, ok := a.Profile(name)
	if !ok || p.Type != Numeric {
		return Outliers{}
	}
	values := make([]float64, d.Len())
	for i, row := range d.Rows {
		f, ok := dataset.ToFloat(row[name])
		if !ok {
			f = math.NaN()
		}
		values[i] = f
	}
	return DetectOutliers(values, p.Stats(), fence)
}
