package analysis

import (
	"github.com/KaramelBytes/dataprep/internal/dataset"
)

// Classify infers the semantic type of every column, in column order.
func Classify(d *dataset.Dataset, opt Options) []ColumnType {
	opt = opt.withDefaults()
	cols := buildColumns(d)
	out := make([]ColumnType, len(cols))
	for i, col := range cols {
		out[i] = classify(col, opt)
	}
	return out
}

// classify decides a column's type from a bounded prefix of its cells:
// numeric, then datetime, then categorical by cardinality, else other.
func classify(col *column, opt Options) ColumnType {
	n := len(col.cells)
	if opt.SampleRows > 0 && n > opt.SampleRows {
		n = opt.SampleRows
	}
	var present, nums, dates int
	distinct := make(map[string]struct{})
	for _, c := range col.cells[:n] {
		if c.missing {
			continue
		}
		present++
		distinct[c.text] = struct{}{}
		if c.isNum {
			nums++
			continue
		}
		if _, ok := dataset.ParseTime(c.text); ok {
			dates++
		}
	}
	if present == 0 {
		return Other
	}
	share := func(k int) float64 { return float64(k) / float64(present) }
	switch {
	case share(nums) >= opt.NumericThreshold:
		return Numeric
	case share(dates) >= opt.DatetimeThreshold:
		return Datetime
	case len(distinct) <= opt.CategoricalMaxUnique || share(len(distinct)) <= opt.CategoricalRatio:
		return Categorical
	default:
		return Other
	}
}
