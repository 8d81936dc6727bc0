package analysis

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/dataprep/internal/dataset"
)

func sampleDataset() *dataset.Dataset {
	return dataset.New([]string{"a", "b"}, []dataset.Row{
		{"a": 1.0, "b": "x"},
		{"a": 2.0, "b": "y"},
		{"a": 3.0, "b": "x"},
		{"a": nil, "b": "x"},
		{"a": 100.0, "b": "z"},
	})
}

func TestAnalyze_SmallMixedDataset(t *testing.T) {
	a := Analyze(sampleDataset(), DefaultOptions())

	assert.Equal(t, 5, a.RowCount)
	assert.Equal(t, 2, a.ColumnCount)
	assert.Equal(t, []string{"a"}, a.NumericColumns)
	assert.Equal(t, []string{"b"}, a.CategoricalColumns)
	assert.Empty(t, a.DateColumns)
	assert.Empty(t, a.Correlations)
	assert.False(t, a.HasInfiniteValues)
	assert.Nil(t, a.InfiniteValueStats)

	pa, ok := a.Profile("a")
	require.True(t, ok)
	assert.Equal(t, Numeric, pa.Type)
	assert.Equal(t, 1, pa.Missing)
	assert.Equal(t, "20.0", pa.MissingPercent)
	assert.Equal(t, 4, pa.Unique)

	st := pa.Stats()
	require.NotNil(t, st)
	assert.Equal(t, 4, st.Count)
	assert.InDelta(t, 26.5, st.Mean, 1e-9)
	assert.InDelta(t, 2.5, st.Median, 1e-9)
	assert.InDelta(t, 1.75, st.Q1, 1e-9)
	assert.InDelta(t, 27.25, st.Q3, 1e-9)
	assert.InDelta(t, 25.5, st.IQR, 1e-9)
	assert.Equal(t, 1.0, st.Min)
	assert.Equal(t, 100.0, st.Max)
	assert.Equal(t, 1, st.OutlierCount)
	assert.Greater(t, st.Skewness, 0.0)

	pb, ok := a.Profile("b")
	require.True(t, ok)
	assert.Equal(t, Categorical, pb.Type)
	assert.Equal(t, 0, pb.Missing)
	assert.Equal(t, "0.0", pb.MissingPercent)
	assert.Equal(t, 3, pb.Unique)
	assert.Nil(t, pb.Stats())
	assert.Equal(t, []ValueCount{{"x", 3}, {"y", 1}, {"z", 1}}, pb.ValueCounts())

	require.Contains(t, a.DuplicateStats, "b")
	assert.NotContains(t, a.DuplicateStats, "a")
	ds := a.DuplicateStats["b"]
	assert.Equal(t, 2, ds.DuplicateCount)
	assert.Equal(t, 40.0, ds.DuplicatePercentage)
	assert.Equal(t, 3, ds.UniqueValues)
	assert.Equal(t, 5, ds.TotalValues)
	assert.Equal(t, []ValueCount{{"x", 3}}, ds.TopDuplicates)
}

func TestAnalyze_EmptyDataset(t *testing.T) {
	a := Analyze(dataset.New(nil, nil), DefaultOptions())
	assert.Equal(t, 0, a.RowCount)
	assert.Equal(t, 0, a.ColumnCount)
	assert.NotNil(t, a.Columns)
	assert.NotNil(t, a.Correlations)
	assert.Empty(t, a.NumericColumns)

	b, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"correlations":[]`)
	assert.Contains(t, string(b), `"numericColumns":[]`)
	assert.NotContains(t, string(b), "infiniteValueStats")

	assert.NotNil(t, Analyze(nil, DefaultOptions()).Columns)
}

func TestAnalyze_AllMissingColumnIsOther(t *testing.T) {
	d := dataset.New([]string{"x"}, []dataset.Row{{"x": nil}, {"x": ""}, {"x": "  "}})
	a := Analyze(d, DefaultOptions())
	p := a.Columns["x"]
	assert.Equal(t, Other, p.Type)
	assert.Equal(t, 3, p.Missing)
	assert.Equal(t, "100.0", p.MissingPercent)
	assert.Equal(t, 0, p.Unique)
	assert.Nil(t, p.Stats())
	assert.NotContains(t, a.DuplicateStats, "x")
}

func TestAnalyze_StatsNilBelowTwoValues(t *testing.T) {
	d := dataset.New([]string{"n"}, []dataset.Row{{"n": 4.0}, {"n": nil}, {"n": nil}})
	a := Analyze(d, DefaultOptions())
	p := a.Columns["n"]
	assert.Equal(t, Numeric, p.Type)
	assert.Nil(t, p.Stats())

	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"stats":null`)
}

func TestAnalyze_InfiniteValues(t *testing.T) {
	d := dataset.New([]string{"a"}, []dataset.Row{
		{"a": 5.0}, {"a": math.Inf(1)}, {"a": -3.0}, {"a": "-Infinity"},
	})
	a := Analyze(d, DefaultOptions())
	assert.Equal(t, []string{"a"}, a.NumericColumns)
	require.True(t, a.HasInfiniteValues)
	assert.Equal(t, InfiniteValueStat{Count: 2, Percentage: 50}, a.InfiniteValueStats["a"])

	st := a.Columns["a"].Stats()
	require.NotNil(t, st)
	assert.Equal(t, 2, st.Count, "infinities are excluded from stats")
	assert.Equal(t, -3.0, st.Min)
	assert.Equal(t, 5.0, st.Max)
}

func TestAnalyze_InfinitePercentageRounding(t *testing.T) {
	rows := []dataset.Row{{"v": math.Inf(1)}, {"v": 1.0}, {"v": 2.0}}
	a := Analyze(dataset.New([]string{"v"}, rows), DefaultOptions())
	assert.Equal(t, 33.33, a.InfiniteValueStats["v"].Percentage)
}

func TestAnalyze_QuartileOrdering(t *testing.T) {
	cases := [][]float64{
		{1},
		{1, 2},
		{5, 5, 5, 5},
		{0.1, 0.2, 0.3},
		{-10, 3, 3, 7, 1e9},
		{2.5, -1.25, 8, 0, 0, 13.75, 4},
	}
	for i, vals := range cases {
		rows := make([]dataset.Row, len(vals))
		for j, v := range vals {
			rows[j] = dataset.Row{"v": v}
		}
		st := Analyze(dataset.New([]string{"v"}, rows), DefaultOptions()).Columns["v"].Stats()
		if len(vals) < 2 {
			assert.Nil(t, st, "case %d", i)
			continue
		}
		require.NotNil(t, st, "case %d", i)
		assert.LessOrEqual(t, st.Min, st.Q1, "case %d", i)
		assert.LessOrEqual(t, st.Q1, st.Median, "case %d", i)
		assert.LessOrEqual(t, st.Median, st.Q3, "case %d", i)
		assert.LessOrEqual(t, st.Q3, st.Max, "case %d", i)
		assert.GreaterOrEqual(t, st.IQR, 0.0, "case %d", i)
		assert.GreaterOrEqual(t, st.Std, 0.0, "case %d", i)
	}
}

func TestAnalyze_ConstantColumn(t *testing.T) {
	rows := []dataset.Row{{"c": 7.0}, {"c": 7.0}, {"c": 7.0}}
	a := Analyze(dataset.New([]string{"c"}, rows), DefaultOptions())
	st := a.Columns["c"].Stats()
	require.NotNil(t, st)
	assert.Equal(t, 0.0, st.Std)
	assert.Equal(t, 0.0, st.Skewness)
	assert.Equal(t, 0, st.OutlierCount)
	assert.Equal(t, []ValueCount{{"7", 3}}, a.Columns["c"].ValueCounts())
}

func TestAnalyze_ValueCountsCapped(t *testing.T) {
	var rows []dataset.Row
	for i := 0; i < 15; i++ {
		for k := 0; k <= i%3; k++ {
			rows = append(rows, dataset.Row{"g": fmt.Sprintf("g%02d", i)})
		}
	}
	a := Analyze(dataset.New([]string{"g"}, rows), DefaultOptions())
	p := a.Columns["g"]
	require.Equal(t, Categorical, p.Type)
	assert.Equal(t, 15, p.Unique)
	vc := p.ValueCounts()
	assert.Len(t, vc, 10)
	assert.Equal(t, ValueCount{"g02", 3}, vc[0])
	for i := 1; i < len(vc); i++ {
		assert.GreaterOrEqual(t, vc[i-1].Count, vc[i].Count)
	}
	assert.Len(t, a.DuplicateStats["g"].TopDuplicates, 5)
}

func TestAnalyze_MarkdownReport(t *testing.T) {
	d := sampleDataset()
	md := Analyze(d, DefaultOptions()).Markdown("sample.csv", []string{"Filled missing values with mean"})
	for _, want := range []string{
		"[DATASET SUMMARY]", "File: sample.csv", "Rows: 5",
		"[SCHEMA]", "- a: numeric (missing 1, 20.0%; unique 4)", "- b: categorical",
		"x(3)", "[DATA QUALITY]", "[PREPROCESSING STEPS]", "1. Filled missing values with mean",
	} {
		assert.Contains(t, md, want)
	}
	assert.Less(t, strings.Index(md, "- a:"), strings.Index(md, "- b:"))
	assert.NotContains(t, md, "[CORRELATIONS]")
}

func TestColumnProfile_JSONShape(t *testing.T) {
	a := Analyze(sampleDataset(), DefaultOptions())
	b, err := json.Marshal(a.Columns["a"])
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "numeric", m["type"])
	assert.Equal(t, "20.0", m["missingPercent"])
	stats, ok := m["stats"].(map[string]any)
	require.True(t, ok)
	for _, k := range []string{"count", "mean", "median", "min", "max", "std", "q1", "q3", "iqr", "outlierCount", "skewness"} {
		assert.Contains(t, stats, k)
	}
}
