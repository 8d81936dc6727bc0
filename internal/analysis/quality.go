package analysis

import (
	"math"

	"github.com/shopspring/decimal"
)

// percentText formats part/total·100 with one decimal ("0.0" when total is 0).
func percentText(part, total int) string {
	if total <= 0 {
		return "0.0"
	}
	return decimal.NewFromInt(int64(part)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		StringFixed(1)
}

// percent returns part/total·100 rounded to two decimals (0 when total is 0).
func percent(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return decimal.NewFromInt(int64(part)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(2).
		InexactFloat64()
}

// infiniteStats counts ±Inf cells per numeric column. Only columns with at
// least one infinite value are listed.
func infiniteStats(numeric []*column, rows int) map[string]InfiniteValueStat {
	out := map[string]InfiniteValueStat{}
	for _, col := range numeric {
		n := 0
		for _, c := range col.cells {
			if c.isNum && math.IsInf(c.num, 0) {
				n++
			}
		}
		if n > 0 {
			out[col.name] = InfiniteValueStat{Count: n, Percentage: percent(n, rows)}
		}
	}
	return out
}

// duplicateStat describes repeated values of one column from its frequency
// table. ok is false when every non-missing value is distinct.
func duplicateStat(freq map[string]int, topN int) (DuplicateStat, bool) {
	total := 0
	for _, n := range freq {
		total += n
	}
	dups := total - len(freq)
	if dups <= 0 {
		return DuplicateStat{}, false
	}
	top := make([]ValueCount, 0, topN)
	for _, vc := range sortedCounts(freq) {
		if vc.Count < 2 || len(top) >= topN {
			break
		}
		top = append(top, vc)
	}
	return DuplicateStat{
		DuplicateCount:      dups,
		DuplicatePercentage: percent(dups, total),
		UniqueValues:        len(freq),
		TotalValues:         total,
		TopDuplicates:       top,
	}, true
}
