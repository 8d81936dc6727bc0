package analysis

import (
	"github.com/KaramelBytes/dataprep/internal/dataset"
)

// Analyze profiles a dataset snapshot. It always builds a fresh Analysis, so
// every profile agrees with the classification made in the same call. An
// empty dataset yields zero counts and empty collections.
func Analyze(d *dataset.Dataset, opt Options) *Analysis {
	opt = opt.withDefaults()
	a := &Analysis{
		Columns:            map[string]ColumnProfile{},
		Correlations:       []Correlation{},
		NumericColumns:     []string{},
		CategoricalColumns: []string{},
		DateColumns:        []string{},
	}
	if d == nil {
		return a
	}
	a.RowCount = d.Len()
	a.ColumnCount = len(d.Columns)
	a.Order = append([]string(nil), d.Columns...)

	cols := buildColumns(d)
	var numeric []*column
	dups := map[string]DuplicateStat{}
	for _, col := range cols {
		t := classify(col, opt)
		switch t {
		case Numeric:
			a.NumericColumns = append(a.NumericColumns, col.name)
			numeric = append(numeric, col)
		case Categorical:
			a.CategoricalColumns = append(a.CategoricalColumns, col.name)
		case Datetime:
			a.DateColumns = append(a.DateColumns, col.name)
		}
		freq := col.frequencies(t)
		a.Columns[col.name] = profileColumn(col, t, freq, a.RowCount, opt)
		if ds, ok := duplicateStat(freq, opt.TopDuplicates); ok {
			dups[col.name] = ds
		}
	}

	a.Correlations = correlations(numeric, opt.MinCorrelationPairs)
	if inf := infiniteStats(numeric, a.RowCount); len(inf) > 0 {
		a.InfiniteValueStats = inf
		a.HasInfiniteValues = true
	}
	if len(dups) > 0 {
		a.DuplicateStats = dups
	}
	return a
}
