package preprocess

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/dataprep/internal/analysis"
	"github.com/KaramelBytes/dataprep/internal/dataset"
)

// outcome is what one step did to its working copy.
type outcome struct {
	desc        string
	changed     int
	rowsDropped int
	colsDropped int
}

// handleInfinite replaces ±Inf with a missing cell in numeric columns.
func handleInfinite(d *dataset.Dataset, a *analysis.Analysis) outcome {
	n := 0
	for _, col := range a.NumericColumns {
		for _, row := range d.Rows {
			if dataset.IsInf(row[col]) {
				row[col] = nil
				n++
			}
		}
	}
	return outcome{desc: fmt.Sprintf("Replaced %d infinite values with missing values", n), changed: n}
}

func handleMissing(d *dataset.Dataset, a *analysis.Analysis, method string) outcome {
	switch method {
	case DropRows:
		return dropRows(d)
	case DropColumns:
		return dropColumns(d, a)
	default:
		return fillMissing(d, a, method)
	}
}

func dropRows(d *dataset.Dataset) outcome {
	kept := d.Rows[:0]
	for _, row := range d.Rows {
		complete := true
		for _, c := range d.Columns {
			if dataset.IsMissing(row[c]) {
				complete = false
				break
			}
		}
		if complete {
			kept = append(kept, row)
		}
	}
	dropped := len(d.Rows) - len(kept)
	d.Rows = kept
	return outcome{desc: fmt.Sprintf("Dropped %d rows with missing values", dropped), rowsDropped: dropped}
}

func dropColumns(d *dataset.Dataset, a *analysis.Analysis) outcome {
	var keep, drop []string
	for _, c := range d.Columns {
		if p, ok := a.Profile(c); ok && p.Missing > 0 {
			drop = append(drop, c)
			continue
		}
		keep = append(keep, c)
	}
	for _, row := range d.Rows {
		for _, c := range drop {
			delete(row, c)
		}
	}
	d.Columns = keep
	desc := fmt.Sprintf("Dropped %d columns with missing values", len(drop))
	if len(drop) > 0 {
		desc += fmt.Sprintf(" (%s)", strings.Join(drop, ", "))
	}
	return outcome{desc: desc, colsDropped: len(drop)}
}

var fillNames = map[string]string{FillMean: "mean", FillMedian: "median", FillMode: "mode", FillZero: "zero"}

// fillMissing replaces missing cells of numeric columns. Fill values come from
// the finite values before filling; a column without any uses 0.
func fillMissing(d *dataset.Dataset, a *analysis.Analysis, method string) outcome {
	n := 0
	for _, col := range a.NumericColumns {
		if p, ok := a.Profile(col); !ok || p.Missing == 0 {
			continue
		}
		fill := 0.0
		if method != FillZero {
			s := analysis.Summarize(columnValues(d, col))
			if s.N > 0 {
				switch method {
				case FillMean:
					fill = s.Mean
				case FillMedian:
					fill = s.Median
				case FillMode:
					fill = s.Mode
				}
			}
		}
		for _, row := range d.Rows {
			if dataset.IsMissing(row[col]) {
				row[col] = fill
				n++
			}
		}
	}
	return outcome{desc: fmt.Sprintf("Filled %d missing values using %s", n, fillNames[method]), changed: n}
}

func encode(d *dataset.Dataset, a *analysis.Analysis, method string) outcome {
	if method == OneHot {
		return oneHot(d, a)
	}
	return labelEncode(d, a)
}

// labelEncode maps the sorted distinct values of each categorical column to
// 0..k-1. Missing cells stay missing.
func labelEncode(d *dataset.Dataset, a *analysis.Analysis) outcome {
	n := 0
	for _, col := range a.CategoricalColumns {
		index := map[string]int{}
		for i, v := range distinct(d, col) {
			index[v] = i
		}
		for _, row := range d.Rows {
			if dataset.IsMissing(row[col]) {
				continue
			}
			row[col] = index[dataset.Text(row[col])]
			n++
		}
	}
	return outcome{
		desc:    fmt.Sprintf("Label encoded %d categorical columns", len(a.CategoricalColumns)),
		changed: n,
	}
}

// oneHot replaces each categorical column with one 0/1 column per sorted
// distinct value, named <col>_<value> and placed where the original was.
func oneHot(d *dataset.Dataset, a *analysis.Analysis) outcome {
	taken := map[string]bool{}
	for _, c := range d.Columns {
		taken[c] = true
	}
	expand := map[string][]string{} // column -> values
	names := map[string][]string{}  // column -> new column names
	for _, col := range a.CategoricalColumns {
		vals := distinct(d, col)
		expand[col] = vals
		for _, v := range vals {
			name := col + "_" + v
			for i := 2; taken[name]; i++ {
				name = col + "_" + v + "_" + strconv.Itoa(i)
			}
			taken[name] = true
			names[col] = append(names[col], name)
		}
	}

	var cols []string
	for _, c := range d.Columns {
		if nn, ok := names[c]; ok {
			cols = append(cols, nn...)
			continue
		}
		cols = append(cols, c)
	}
	n, created := 0, 0
	for col, vals := range expand {
		created += len(vals)
		for _, row := range d.Rows {
			cur := ""
			if !dataset.IsMissing(row[col]) {
				cur = dataset.Text(row[col])
			}
			for i, v := range vals {
				bit := 0
				if cur == v {
					bit = 1
				}
				row[names[col][i]] = bit
				n++
			}
			delete(row, col)
		}
	}
	d.Columns = cols
	return outcome{
		desc:    fmt.Sprintf("One-hot encoded %d categorical columns into %d columns", len(expand), created),
		changed: n,
	}
}

// normalize rescales the finite cells of numeric columns. Missing and
// infinite cells are left as they are.
func normalize(d *dataset.Dataset, a *analysis.Analysis, method string) outcome {
	n := 0
	for _, col := range a.NumericColumns {
		s := analysis.Summarize(columnValues(d, col))
		if s.N == 0 {
			continue
		}
		for _, row := range d.Rows {
			x, ok := dataset.ToFloat(row[col])
			if !ok || math.IsInf(x, 0) {
				continue
			}
			var y float64
			switch method {
			case MinMax:
				if s.Max != s.Min {
					y = (x - s.Min) / (s.Max - s.Min)
				}
			case Standard:
				if s.Std != 0 {
					y = (x - s.Mean) / s.Std
				}
			}
			row[col] = y
			n++
		}
	}
	label := "min-max scaling"
	if method == Standard {
		label = "standardization"
	}
	return outcome{
		desc:    fmt.Sprintf("Normalized %d numeric columns using %s", len(a.NumericColumns), label),
		changed: n,
	}
}

// columnValues returns the numeric cells of col; the rest become NaN, which
// Summarize ignores.
func columnValues(d *dataset.Dataset, col string) []float64 {
	out := make([]float64, len(d.Rows))
	for i, row := range d.Rows {
		f, ok := dataset.ToFloat(row[col])
		if !ok {
			f = math.NaN()
		}
		out[i] = f
	}
	return out
}

func distinct(d *dataset.Dataset, col string) []string {
	seen := map[string]bool{}
	var out []string
	for _, row := range d.Rows {
		if dataset.IsMissing(row[col]) {
			continue
		}
		v := dataset.Text(row[col])
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
