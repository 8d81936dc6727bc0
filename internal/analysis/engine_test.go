package analysis

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/dataprep/internal/dataset"
)

func column1(name string, vals ...any) *dataset.Dataset {
	rows := make([]dataset.Row, len(vals))
	for i, v := range vals {
		rows[i] = dataset.Row{name: v}
	}
	return dataset.New([]string{name}, rows)
}

func TestClassify(t *testing.T) {
	mostlyNumeric := []any{"1", "2", "3", "4", "5", "6", "7", "8", "9", "n/a"}
	partlyNumeric := []any{"1", "2", "3", "4", "5", "6", "7", "8", "x", "y"}
	var freeText []any
	for i := 0; i < 30; i++ {
		freeText = append(freeText, fmt.Sprintf("comment number %d", i))
	}

	cases := []struct {
		name string
		d    *dataset.Dataset
		want ColumnType
	}{
		{"numbers", column1("v", 1.0, 2, "3.5", nil), Numeric},
		{"ninety percent numeric", column1("v", mostlyNumeric...), Numeric},
		{"below numeric threshold", column1("v", partlyNumeric...), Categorical},
		{"dates", column1("v", "2024-01-01", "2024-02-01", "2024/03/05", ""), Datetime},
		{"labels", column1("v", "red", "blue", "red"), Categorical},
		{"free text", column1("v", freeText...), Other},
		{"all missing", column1("v", nil, "", " "), Other},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.d, DefaultOptions())
			require.Len(t, got, 1)
			assert.Equal(t, tc.want, got[0])
			// Same rows, same call.
			assert.Equal(t, got, Classify(tc.d, DefaultOptions()))
		})
	}
}

func TestClassify_UsesBoundedSample(t *testing.T) {
	vals := make([]any, 0, 30)
	for i := 0; i < 10; i++ {
		vals = append(vals, float64(i))
	}
	for i := 0; i < 20; i++ {
		vals = append(vals, fmt.Sprintf("text %d", i))
	}
	opt := DefaultOptions()
	opt.SampleRows = 10
	assert.Equal(t, []ColumnType{Numeric}, Classify(column1("v", vals...), opt))
}

func TestPearson(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{2, 1, 4, 3, 7}

	assert.InDelta(t, 1.0, Pearson(x, x), 1e-12)
	assert.InDelta(t, Pearson(x, y), Pearson(y, x), 1e-12)
	assert.InDelta(t, -1.0, Pearson(x, []float64{10, 8, 6, 4, 2}), 1e-12)
	assert.Equal(t, 0.0, Pearson(x, []float64{3, 3, 3, 3, 3}))
	assert.Equal(t, 0.0, Pearson([]float64{1}, []float64{2}))
	assert.Equal(t, 0.0, Pearson(x, y[:3]))

	r := Pearson(x, y)
	assert.True(t, r >= -1 && r <= 1)
}

func TestAnalyze_Correlations(t *testing.T) {
	d := dataset.New([]string{"z", "x", "y", "k"}, []dataset.Row{
		{"x": 1.0, "y": 2.0, "z": 4.0, "k": 1.0},
		{"x": 2.0, "y": 4.0, "z": 1.0, "k": 1.0},
		{"x": 3.0, "y": 6.0, "z": 3.0, "k": 1.0},
		{"x": 4.0, "y": 8.0, "z": 2.0, "k": 1.0},
		{"x": math.Inf(1), "y": nil, "z": 5.0, "k": 1.0},
	})
	a := Analyze(d, DefaultOptions())
	require.Len(t, a.Correlations, 6)

	first := a.Correlations[0]
	assert.Equal(t, "x", first.Col1)
	assert.Equal(t, "y", first.Col2)
	assert.InDelta(t, 1.0, first.Correlation, 1e-12)

	for i, c := range a.Correlations {
		assert.Less(t, c.Col1, c.Col2)
		assert.True(t, c.Correlation >= -1 && c.Correlation <= 1)
		if c.Col1 == "k" || c.Col2 == "k" {
			assert.Equal(t, 0.0, c.Correlation, "constant column")
		}
		if i > 0 {
			assert.GreaterOrEqual(t, math.Abs(a.Correlations[i-1].Correlation), math.Abs(c.Correlation))
		}
	}
}

func TestAnalyze_CorrelationNeedsPairs(t *testing.T) {
	d := dataset.New([]string{"p", "q"}, []dataset.Row{
		{"p": 1.0, "q": nil},
		{"p": 2.0, "q": nil},
		{"p": nil, "q": 3.0},
		{"p": 4.0, "q": 5.0},
	})
	assert.Empty(t, Analyze(d, DefaultOptions()).Correlations)
}

func TestDetectOutliers(t *testing.T) {
	vals := []float64{1, 2, 3, 100}
	st := numericStats(vals, 1.5)
	require.NotNil(t, st)

	o := DetectOutliers(vals, st, 1.5)
	assert.Equal(t, 1.0, o.Lower)
	assert.InDelta(t, 65.5, o.Upper, 1e-9)
	assert.Equal(t, 1, o.Count)
	assert.Equal(t, []int{3}, o.Indices)

	assert.Equal(t, Outliers{}, DetectOutliers(vals, nil, 1.5))
}

func TestDetectOutliers_WhiskersClampToRange(t *testing.T) {
	vals := []float64{10, 11, 12, 13, 14}
	st := numericStats(vals, 1.5)
	o := DetectOutliers(vals, st, 1.5)
	assert.Equal(t, 10.0, o.Lower)
	assert.Equal(t, 14.0, o.Upper)
	assert.Zero(t, o.Count)
}

func TestColumnOutliers(t *testing.T) {
	d := sampleDataset()
	a := Analyze(d, DefaultOptions())

	o := ColumnOutliers(d, a, "a", 1.5)
	assert.Equal(t, 1, o.Count)
	assert.Equal(t, []int{4}, o.Indices, "indices are row positions")

	assert.Equal(t, Outliers{}, ColumnOutliers(d, a, "b", 1.5))
	assert.Equal(t, Outliers{}, ColumnOutliers(d, a, "missing", 1.5))
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{4, math.NaN(), 2, math.Inf(-1), 2, 8})
	assert.Equal(t, 4, s.N)
	assert.Equal(t, 2.0, s.Min)
	assert.Equal(t, 8.0, s.Max)
	assert.Equal(t, 4.0, s.Mean)
	assert.Equal(t, 3.0, s.Median)
	assert.Equal(t, 2.0, s.Mode)
	assert.InDelta(t, math.Sqrt(6), s.Std, 1e-12)

	assert.Equal(t, Summary{}, Summarize(nil))
	assert.Equal(t, 1.0, Summarize([]float64{3, 1, 3, 1}).Mode, "ties go to the smaller value")
}
