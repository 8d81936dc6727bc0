package analysis

import (
	"fmt"

	"github.com/goccy/go-json"
)

// ColumnType is the semantic type inferred for a column.
type ColumnType string

const (
	Numeric     ColumnType = "numeric"
	Categorical ColumnType = "categorical"
	Datetime    ColumnType = "datetime"
	Other       ColumnType = "other"
)

// Analysis is the full profile of one dataset snapshot. It is always rebuilt
// from scratch by Analyze.
type Analysis struct {
	RowCount           int                          `json:"rowCount"`
	ColumnCount        int                          `json:"columnCount"`
	Columns            map[string]ColumnProfile     `json:"columns"`
	Correlations       []Correlation                `json:"correlations"`
	NumericColumns     []string                     `json:"numericColumns"`
	CategoricalColumns []string                     `json:"categoricalColumns"`
	DateColumns        []string                     `json:"dateColumns"`
	InfiniteValueStats map[string]InfiniteValueStat `json:"infiniteValueStats,omitempty"`
	HasInfiniteValues  bool                         `json:"hasInfiniteValues,omitempty"`
	DuplicateStats     map[string]DuplicateStat     `json:"duplicateStats,omitempty"`

	// Order is the dataset's column order; Columns is keyed by name only.
	Order []string `json:"-"`
}

// Profile returns the profile for name and whether it exists.
func (a *Analysis) Profile(name string) (ColumnProfile, bool) {
	p, ok := a.Columns[name]
	return p, ok
}

// ColumnProfile is a tagged variant: the common counters plus a Detail that
// is one of NumericDetail, CategoricalDetail, DatetimeDetail or OtherDetail.
type ColumnProfile struct {
	Type           ColumnType
	Missing        int
	MissingPercent string
	Unique         int
	Detail         ColumnDetail
}

// ColumnDetail carries the fields relevant to one column type.
type ColumnDetail interface {
	columnType() ColumnType
}

// NumericDetail holds statistics for a numeric column. Stats is nil when the
// column has fewer than two finite values.
type NumericDetail struct {
	Stats       *Stats
	ValueCounts []ValueCount
}

// CategoricalDetail holds the capped frequency table.
type CategoricalDetail struct {
	ValueCounts []ValueCount
}

// DatetimeDetail holds the observed range of a date column in RFC3339.
type DatetimeDetail struct {
	Earliest string
	Latest   string
}

// OtherDetail holds a few example values of a free-text column.
type OtherDetail struct {
	Examples []string
}

func (NumericDetail) columnType() ColumnType     { return Numeric }
func (CategoricalDetail) columnType() ColumnType { return Categorical }
func (DatetimeDetail) columnType() ColumnType    { return Datetime }
func (OtherDetail) columnType() ColumnType       { return Other }

// Stats returns the numeric statistics, or nil for non-numeric columns and
// degenerate numeric ones.
func (p ColumnProfile) Stats() *Stats {
	if d, ok := p.Detail.(NumericDetail); ok {
		return d.Stats
	}
	return nil
}

// ValueCounts returns the frequency table when the variant carries one.
func (p ColumnProfile) ValueCounts() []ValueCount {
	switch d := p.Detail.(type) {
	case NumericDetail:
		return d.ValueCounts
	case CategoricalDetail:
		return d.ValueCounts
	case DatetimeDetail, OtherDetail, nil:
		return nil
	default:
		panic(fmt.Sprintf("analysis: unhandled column detail %T", d))
	}
}

type profileJSON struct {
	Type           ColumnType   `json:"type"`
	Missing        int          `json:"missing"`
	MissingPercent string       `json:"missingPercent"`
	Unique         int          `json:"unique"`
	Stats          *Stats       `json:"stats"`
	ValueCounts    []ValueCount `json:"valueCounts,omitempty"`
}

// MarshalJSON flattens the variant into the wire shape consumed by the UI.
func (p ColumnProfile) MarshalJSON() ([]byte, error) {
	return json.Marshal(profileJSON{
		Type:           p.Type,
		Missing:        p.Missing,
		MissingPercent: p.MissingPercent,
		Unique:         p.Unique,
		Stats:          p.Stats(),
		ValueCounts:    p.ValueCounts(),
	})
}

// Stats are descriptive statistics over the finite values of a numeric column.
// Std is the population standard deviation and Skewness the population third
// standardized moment.
type Stats struct {
	Count        int     `json:"count"`
	Mean         float64 `json:"mean"`
	Median       float64 `json:"median"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Std          float64 `json:"std"`
	Q1           float64 `json:"q1"`
	Q3           float64 `json:"q3"`
	IQR          float64 `json:"iqr"`
	OutlierCount int     `json:"outlierCount"`
	Skewness     float64 `json:"skewness"`
}

// ValueCount is one entry of a frequency table.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Correlation is a Pearson coefficient for an unordered pair with Col1 < Col2.
type Correlation struct {
	Col1        string  `json:"col1"`
	Col2        string  `json:"col2"`
	Correlation float64 `json:"correlation"`
}

// InfiniteValueStat counts ±Inf cells in a numeric column.
type InfiniteValueStat struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// DuplicateStat describes repeated non-missing values in a column.
type DuplicateStat struct {
	DuplicateCount      int          `json:"duplicateCount"`
	DuplicatePercentage float64      `json:"duplicatePercentage"`
	UniqueValues        int          `json:"uniqueValues"`
	TotalValues         int          `json:"totalValues"`
	TopDuplicates       []ValueCount `json:"topDuplicates"`
}
