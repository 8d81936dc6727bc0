package analysis

// Options controls classification thresholds and result caps.
type Options struct {
	// SampleRows bounds the prefix of rows used for type classification; 0 means all rows.
	SampleRows int
	// NumericThreshold is the share of non-missing sampled values that must parse as numbers.
	NumericThreshold float64
	// DatetimeThreshold is the share that must parse under an accepted date layout.
	DatetimeThreshold float64
	// CategoricalRatio is the max unique/non-missing ratio for a categorical column.
	CategoricalRatio float64
	// CategoricalMaxUnique classifies a column as categorical regardless of ratio
	// when it has at most this many distinct values.
	CategoricalMaxUnique int
	// LowCardinality gives numeric columns a value-count table when they have
	// at most this many distinct values.
	LowCardinality int
	// ValueCountsLimit caps the frequency table; entries beyond it are omitted.
	ValueCountsLimit int
	// TopDuplicates caps the repeated values listed per column.
	TopDuplicates int
	// MinCorrelationPairs is the minimum number of paired observations for a correlation.
	MinCorrelationPairs int
	// OutlierFence is the IQR multiplier for the Tukey fences.
	OutlierFence float64
}

// DefaultOptions returns reasonable defaults for dataset analysis.
func DefaultOptions() Options {
	return Options{
		SampleRows:           1000,
		NumericThreshold:     0.9,
		DatetimeThreshold:    0.9,
		CategoricalRatio:     0.5,
		CategoricalMaxUnique: 20,
		LowCardinality:       10,
		ValueCountsLimit:     10,
		TopDuplicates:        5,
		MinCorrelationPairs:  2,
		OutlierFence:         1.5,
	}
}

// withDefaults fills zero fields so a partially populated Options is usable.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.SampleRows < 0 {
		o.SampleRows = 0
	}
	if o.NumericThreshold <= 0 {
		o.NumericThreshold = d.NumericThreshold
	}
	if o.DatetimeThreshold <= 0 {
		o.DatetimeThreshold = d.DatetimeThreshold
	}
	if o.CategoricalRatio <= 0 {
		o.CategoricalRatio = d.CategoricalRatio
	}
	if o.CategoricalMaxUnique <= 0 {
		o.CategoricalMaxUnique = d.CategoricalMaxUnique
	}
	if o.LowCardinality <= 0 {
		o.LowCardinality = d.LowCardinality
	}
	if o.ValueCountsLimit <= 0 {
		o.ValueCountsLimit = d.ValueCountsLimit
	}
	if o.TopDuplicates <= 0 {
		o.TopDuplicates = d.TopDuplicates
	}
	if o.MinCorrelationPairs < 2 {
		o.MinCorrelationPairs = d.MinCorrelationPairs
	}
	if o.OutlierFence <= 0 {
		o.OutlierFence = d.OutlierFence
	}
	return o
}
