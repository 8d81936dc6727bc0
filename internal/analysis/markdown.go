package analysis

import (
	"fmt"
	"sort"
	"strings"
)

// Markdown renders a compact report suitable for prompts or standalone docs.
// It only formats precomputed values. name and steps are optional.
func (a *Analysis) Markdown(name string, steps []string) string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", a.RowCount))
	b.WriteString(fmt.Sprintf("Columns: %d (numeric %d, categorical %d, datetime %d)\n\n",
		a.ColumnCount, len(a.NumericColumns), len(a.CategoricalColumns), len(a.DateColumns)))

	b.WriteString("[SCHEMA]\n")
	for _, name := range a.columnOrder() {
		p := a.Columns[name]
		b.WriteString(fmt.Sprintf("- %s: %s (missing %d, %s%%; unique %d)", safeName(name), p.Type, p.Missing, p.MissingPercent, p.Unique))
		switch d := p.Detail.(type) {
		case NumericDetail:
			if s := d.Stats; s != nil {
				b.WriteString(fmt.Sprintf(" — min %.4g, q1 %.4g, median %.4g, q3 %.4g, max %.4g; mean %.4g, std %.4g, skew %.3f",
					s.Min, s.Q1, s.Median, s.Q3, s.Max, s.Mean, s.Std, s.Skewness))
				if s.OutlierCount > 0 {
					b.WriteString(fmt.Sprintf("; outliers: %d outside 1.5×IQR", s.OutlierCount))
				}
			} else {
				b.WriteString(" — too few values for statistics")
			}
		case CategoricalDetail:
			writeTop(&b, d.ValueCounts, p.Unique)
		case DatetimeDetail:
			if d.Earliest != "" {
				b.WriteString(fmt.Sprintf(" — %s … %s", d.Earliest, d.Latest))
			}
		case OtherDetail:
			if len(d.Examples) > 0 {
				b.WriteString(" — e.g., ")
				for i, ex := range d.Examples {
					if i > 0 {
						b.WriteString(" | ")
					}
					b.WriteString(safeVal(truncate(ex, 80)))
				}
			}
		}
		b.WriteString("\n")
	}

	if len(a.Correlations) > 0 {
		b.WriteString("\n[CORRELATIONS]\n")
		maxp := 10
		if len(a.Correlations) < maxp {
			maxp = len(a.Correlations)
		}
		for _, c := range a.Correlations[:maxp] {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", c.Col1, c.Col2, c.Correlation))
		}
	}

	if a.HasInfiniteValues || len(a.DuplicateStats) > 0 {
		b.WriteString("\n[DATA QUALITY]\n")
		for _, name := range sortedKeys(a.InfiniteValueStats) {
			s := a.InfiniteValueStats[name]
			b.WriteString(fmt.Sprintf("- %s: %d infinite value(s) (%.2f%%)\n", safeName(name), s.Count, s.Percentage))
		}
		for _, name := range sortedKeys(a.DuplicateStats) {
			s := a.DuplicateStats[name]
			b.WriteString(fmt.Sprintf("- %s: %d duplicate(s) (%.2f%% of %d values)", safeName(name), s.DuplicateCount, s.DuplicatePercentage, s.TotalValues))
			if len(s.TopDuplicates) > 0 {
				b.WriteString(" — most repeated: ")
				for i, kv := range s.TopDuplicates {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
				}
			}
			b.WriteString("\n")
		}
	}

	if len(steps) > 0 {
		b.WriteString("\n[PREPROCESSING STEPS]\n")
		for i, s := range steps {
			b.WriteString(fmt.Sprintf("%d. %s\n", i+1, s))
		}
	}
	return b.String()
}

func writeTop(b *strings.Builder, vc []ValueCount, unique int) {
	if len(vc) == 0 {
		return
	}
	b.WriteString(" — top: ")
	for i, kv := range vc {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
	}
	if unique > len(vc) {
		b.WriteString(fmt.Sprintf("; +%d more", unique-len(vc)))
	}
}

// columnOrder prefers the dataset order and falls back to sorted names for
// analyses decoded without it.
func (a *Analysis) columnOrder() []string {
	if len(a.Order) == len(a.Columns) {
		return a.Order
	}
	return sortedKeys(a.Columns)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
