package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/dataprep/internal/dataset"
)

// cell is a pre-parsed view of one raw value, built once per analysis so no
// metric has to re-parse rows.
type cell struct {
	missing bool
	isNum   bool
	num     float64
	text    string
}

func (c cell) finite() bool { return c.isNum && !math.IsInf(c.num, 0) }

// column is the column-major view of one dataset column.
type column struct {
	name    string
	cells   []cell
	missing int
}

func buildColumns(d *dataset.Dataset) []*column {
	cols := make([]*column, len(d.Columns))
	for j, name := range d.Columns {
		cols[j] = &column{name: name, cells: make([]cell, len(d.Rows))}
	}
	for i, row := range d.Rows {
		for _, col := range cols {
			v := row[col.name]
			if dataset.IsMissing(v) {
				col.cells[i] = cell{missing: true}
				col.missing++
				continue
			}
			f, ok := dataset.ToFloat(v)
			col.cells[i] = cell{isNum: ok, num: f, text: dataset.Text(v)}
		}
	}
	return cols
}

// key is the identity used for uniqueness and frequency tables. Numeric
// columns compare numbers so "1" and "1.0" count as the same value.
func (c cell) key(t ColumnType) string {
	if t == Numeric && c.isNum {
		return dataset.FormatFloat(c.num)
	}
	return c.text
}

// frequencies counts non-missing values by key.
func (col *column) frequencies(t ColumnType) map[string]int {
	freq := make(map[string]int)
	for _, c := range col.cells {
		if c.missing {
			continue
		}
		freq[c.key(t)]++
	}
	return freq
}

// finiteValues returns the column's finite numbers in row order.
func (col *column) finiteValues() []float64 {
	vals := make([]float64, 0, len(col.cells))
	for _, c := range col.cells {
		if c.finite() {
			vals = append(vals, c.num)
		}
	}
	return vals
}

// sortedCounts orders a frequency map by count desc then value asc.
func sortedCounts(freq map[string]int) []ValueCount {
	out := make([]ValueCount, 0, len(freq))
	for k, v := range freq {
		out = append(out, ValueCount{Value: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Value < out[j].Value
		}
		return out[i].Count > out[j].Count
	})
	return out
}
