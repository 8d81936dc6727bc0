package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
)

// ErrUnsupportedFormat is returned by Load for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported dataset format")

// LoadOptions tunes Load. Zero values sniff the delimiter and pick the
// first worksheet.
type LoadOptions struct {
	Delimiter rune
	Sheet     string
}

// Load reads a dataset from disk, choosing the decoder by extension
// (.csv, .tsv, .txt, .json, .xlsx).
func Load(path string, opt LoadOptions) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
		delim := opt.Delimiter
		if delim == 0 {
			delim = SniffDelimiter(path)
		}
		return ReadCSV(f, delim)
	case ".json":
		return ReadJSON(f)
	case ".xlsx":
		st, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("stat dataset: %w", err)
		}
		return ReadXLSX(f, st.Size(), opt.Sheet)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// SniffDelimiter picks a delimiter from the file name.
func SniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

// ReadCSV decodes a header row followed by records. Short records are padded
// with missing cells; cells are kept as trimmed strings.
func ReadCSV(r io.Reader, delim rune) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if delim != 0 {
		cr.Comma = delim
	}
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return New(nil, nil), nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		cols[i] = h
	}
	var rows []Row
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		row := make(Row, len(cols))
		for j, c := range cols {
			if j < len(rec) {
				row[c] = strings.TrimSpace(rec[j])
			} else {
				row[c] = nil
			}
		}
		rows = append(rows, row)
	}
	return New(cols, rows), nil
}

// WriteCSV serializes the snapshot as delimited text with a header row.
// Missing cells are written as empty fields.
func WriteCSV(w io.Writer, d *Dataset, delim rune) error {
	cw := csv.NewWriter(w)
	if delim != 0 {
		cw.Comma = delim
	}
	if err := cw.Write(d.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, len(d.Columns))
	for i, row := range d.Rows {
		for j, c := range d.Columns {
			rec[j] = Text(row[c])
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Payload is the JSON wire form of a dataset: an optional explicit column
// order plus row records. Without columns the order falls back to ColumnsOf.
type Payload struct {
	Columns []string `json:"columns,omitempty"`
	Rows    []Row    `json:"rows"`
	Steps   []string `json:"preprocessingSteps,omitempty"`
}

// FromPayload builds a root snapshot, carrying over any prior step log.
func FromPayload(p Payload) *Dataset {
	d := New(p.Columns, normalizeRows(p.Rows))
	if len(p.Steps) > 0 {
		d.Steps = append(d.Steps, p.Steps...)
	}
	return d
}

// ReadJSON decodes either a Payload object or a bare array of records.
func ReadJSON(r io.Reader) (*Dataset, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}
	trimmed := strings.TrimSpace(string(b))
	if strings.HasPrefix(trimmed, "[") {
		var rows []Row
		if err := json.Unmarshal(b, &rows); err != nil {
			return nil, fmt.Errorf("decode rows: %w", err)
		}
		return New(nil, normalizeRows(rows)), nil
	}
	var p Payload
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return FromPayload(p), nil
}

// WriteJSON serializes the snapshot as a Payload.
func WriteJSON(w io.Writer, d *Dataset) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Payload{Columns: d.Columns, Rows: d.SafeRows(), Steps: d.Steps})
}

// MarshalJSON encodes the snapshot with non-finite cells made JSON-safe.
func (d *Dataset) MarshalJSON() ([]byte, error) {
	type alias Dataset
	a := alias(*d)
	a.Rows = d.SafeRows()
	return json.Marshal(a)
}

// SafeRows returns a copy of the rows restricted to Columns, with values
// JSON cannot carry replaced (see jsonSafe).
func (d *Dataset) SafeRows() []Row {
	rows := make([]Row, len(d.Rows))
	for i, r := range d.Rows {
		out := make(Row, len(d.Columns))
		for _, c := range d.Columns {
			out[c] = jsonSafe(r[c])
		}
		rows[i] = out
	}
	return rows
}

// jsonSafe replaces values JSON cannot carry (±Inf, NaN) with their text form
// or nil.
func jsonSafe(v any) any {
	if IsMissing(v) {
		return nil
	}
	if IsInf(v) {
		return Text(v)
	}
	return v
}

func normalizeRows(rows []Row) []Row {
	for _, r := range rows {
		for k, v := range r {
			if n, ok := v.(json.Number); ok {
				if f, ok := ToFloat(n); ok {
					r[k] = f
				}
			}
		}
	}
	return rows
}
