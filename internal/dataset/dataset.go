package dataset

import (
	"sort"

	"github.com/google/uuid"
)

// Row is a single record keyed by column name.
type Row map[string]any

// Dataset is an immutable snapshot of tabular rows with a stable column order.
// Transforms never edit a Dataset in place; they Derive a new snapshot and
// append a step description to its log.
type Dataset struct {
	ID       string   `json:"id"`
	ParentID string   `json:"parentId,omitempty"`
	Columns  []string `json:"columns"`
	Rows     []Row    `json:"rows"`
	Steps    []string `json:"preprocessingSteps"`
}

// New builds a root snapshot. When columns is empty the order is derived
// from the rows (see ColumnsOf).
func New(columns []string, rows []Row) *Dataset {
	if len(columns) == 0 {
		columns = ColumnsOf(rows)
	}
	if rows == nil {
		rows = []Row{}
	}
	return &Dataset{
		ID:      uuid.NewString(),
		Columns: append([]string(nil), columns...),
		Rows:    rows,
		Steps:   []string{},
	}
}

// ColumnsOf derives a column order from records. Keys of the first row come
// first in sorted order; keys that only appear in later rows are appended in
// order of first appearance (sorted within the row that introduced them).
func ColumnsOf(rows []Row) []string {
	seen := map[string]bool{}
	var cols []string
	for _, r := range rows {
		var fresh []string
		for k := range r {
			if !seen[k] {
				seen[k] = true
				fresh = append(fresh, k)
			}
		}
		sort.Strings(fresh)
		cols = append(cols, fresh...)
	}
	return cols
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// Value returns the raw cell for row i and column name. Absent keys yield nil.
func (d *Dataset) Value(i int, col string) any {
	return d.Rows[i][col]
}

// Clone returns a deep copy of the rows and column list. Cell values are
// scalars and are shared.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		ID:       d.ID,
		ParentID: d.ParentID,
		Columns:  append([]string(nil), d.Columns...),
		Rows:     make([]Row, len(d.Rows)),
		Steps:    append([]string{}, d.Steps...),
	}
	for i, r := range d.Rows {
		cp := make(Row, len(r))
		for k, v := range r {
			cp[k] = v
		}
		out.Rows[i] = cp
	}
	return out
}

// Derive returns a child snapshot holding columns and rows, with step appended
// to a copy of the parent's log.
func (d *Dataset) Derive(columns []string, rows []Row, step string) *Dataset {
	steps := make([]string, 0, len(d.Steps)+1)
	steps = append(steps, d.Steps...)
	if step != "" {
		steps = append(steps, step)
	}
	if rows == nil {
		rows = []Row{}
	}
	return &Dataset{
		ID:       uuid.NewString(),
		ParentID: d.ID,
		Columns:  columns,
		Rows:     rows,
		Steps:    steps,
	}
}

// HasColumn reports whether name is part of the column order.
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}
