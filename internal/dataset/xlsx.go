package dataset

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
)

// ErrSheetNotFound is returned when a requested worksheet does not exist.
var ErrSheetNotFound = errors.New("sheet not found")

// ReadXLSX loads one worksheet of an .xlsx workbook. sheet selects it by name
// or 1-based index; empty means the first sheet. The first row is the header.
func ReadXLSX(r io.ReaderAt, size int64, sheet string) (*Dataset, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	wb := workbook{files: map[string]*zip.File{}}
	for _, f := range zr.File {
		wb.files[f.Name] = f
	}
	target, err := wb.sheetPath(sheet)
	if err != nil {
		return nil, err
	}
	shared := parseSharedStrings(wb.read("xl/sharedStrings.xml"))
	data := wb.read(target)
	if data == nil {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
	}

	sr := &sheetReader{dec: xml.NewDecoder(bytes.NewReader(data)), shared: shared}
	header, ok := sr.next()
	if !ok {
		return New(nil, nil), nil
	}
	cols := make([]string, len(header))
	for i, h := range header {
		if h = strings.TrimSpace(h); h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		cols[i] = h
	}
	var rows []Row
	for {
		rec, ok := sr.next()
		if !ok {
			break
		}
		row := make(Row, len(cols))
		for j, c := range cols {
			if j < len(rec) && strings.TrimSpace(rec[j]) != "" {
				row[c] = strings.TrimSpace(rec[j])
			} else {
				row[c] = nil
			}
		}
		rows = append(rows, row)
	}
	return New(cols, rows), nil
}

type workbook struct {
	files map[string]*zip.File
}

func (wb workbook) read(name string) []byte {
	f, ok := wb.files[name]
	if !ok {
		return nil
	}
	rc, err := f.Open()
	if err != nil {
		return nil
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return nil
	}
	return b
}

type sheetEntry struct {
	name string
	id   int
	rel  string
}

// sheetPath resolves a sheet selector to its zip entry through
// xl/workbook.xml and its relationships.
func (wb workbook) sheetPath(sel string) (string, error) {
	sheets := parseWorkbook(wb.read("xl/workbook.xml"))
	rels := parseRelationships(wb.read("xl/_rels/workbook.xml.rels"))

	idx := 1
	if sel != "" {
		n, err := strconv.Atoi(sel)
		if err != nil {
			names := make([]string, 0, len(sheets))
			for _, s := range sheets {
				if strings.EqualFold(s.name, sel) {
					if t, ok := rels[s.rel]; ok {
						return relPath(t), nil
					}
				}
				names = append(names, s.name)
			}
			return "", fmt.Errorf("%w: %q (available: %s)", ErrSheetNotFound, sel, strings.Join(names, ", "))
		}
		idx = n
	}
	for i, s := range sheets {
		if s.id == idx || (s.id == 0 && i+1 == idx) {
			if t, ok := rels[s.rel]; ok {
				return relPath(t), nil
			}
		}
	}
	return fmt.Sprintf("xl/worksheets/sheet%d.xml", idx), nil
}

// relPath maps a relationship target to a zip entry name.
func relPath(target string) string {
	target = strings.TrimPrefix(target, "/")
	if strings.HasPrefix(target, "xl/") {
		return target
	}
	return path.Join("xl", target)
}

func parseWorkbook(data []byte) []sheetEntry {
	var out []sheetEntry
	eachStart(data, "sheet", func(se xml.StartElement) {
		var s sheetEntry
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "name":
				s.name = a.Value
			case "sheetId":
				s.id, _ = strconv.Atoi(a.Value)
			case "id":
				s.rel = a.Value
			}
		}
		out = append(out, s)
	})
	return out
}

func parseRelationships(data []byte) map[string]string {
	out := map[string]string{}
	eachStart(data, "Relationship", func(se xml.StartElement) {
		var id, target string
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "Id":
				id = a.Value
			case "Target":
				target = a.Value
			}
		}
		if id != "" && target != "" {
			out[id] = target
		}
	})
	return out
}

func eachStart(data []byte, local string, fn func(xml.StartElement)) {
	if len(data) == 0 {
		return
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == local {
			fn(se)
		}
	}
}

// parseSharedStrings concatenates the <t> runs of every <si> entry.
func parseSharedStrings(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var out []string
	var buf strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch se.Name.Local {
			case "si":
				buf.Reset()
			case "t":
				inText = true
			}
		case xml.EndElement:
			switch se.Name.Local {
			case "t":
				inText = false
			case "si":
				out = append(out, buf.String())
			}
		case xml.CharData:
			if inText {
				buf.Write(se)
			}
		}
	}
}

// sheetReader streams worksheet rows as dense string slices; cells skipped
// by the writer come back empty.
type sheetReader struct {
	dec    *xml.Decoder
	shared []string
}

func (r *sheetReader) next() ([]string, bool) {
	var row []string
	inRow := false
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return nil, false
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch se.Name.Local {
			case "row":
				inRow, row = true, nil
			case "c":
				if !inRow {
					continue
				}
				var ref, typ string
				for _, a := range se.Attr {
					switch a.Name.Local {
					case "r":
						ref = a.Value
					case "t":
						typ = a.Value
					}
				}
				col := len(row)
				if ref != "" {
					if i := colIndex(ref); i >= 0 {
						col = i
					}
				}
				for len(row) <= col {
					row = append(row, "")
				}
				row[col] = r.cellValue(typ)
			}
		case xml.EndElement:
			if se.Name.Local == "row" && inRow {
				return row, true
			}
		}
	}
}

// cellValue reads up to the closing </c>, resolving shared-string indices.
func (r *sheetReader) cellValue(typ string) string {
	var val strings.Builder
	capture := false
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return val.String()
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "v" || se.Name.Local == "t" {
				capture = true
			}
		case xml.CharData:
			if capture {
				val.Write(se)
			}
		case xml.EndElement:
			switch se.Name.Local {
			case "v", "t":
				capture = false
			case "c":
				if typ == "s" {
					i, err := strconv.Atoi(strings.TrimSpace(val.String()))
					if err != nil || i < 0 || i >= len(r.shared) {
						return ""
					}
					return r.shared[i]
				}
				return val.String()
			}
		}
	}
}

// colIndex converts a cell reference such as "C12" to a 0-based column.
func colIndex(ref string) int {
	n := 0
	for i := 0; i < len(ref); i++ {
		c := ref[i]
		switch {
		case c >= 'A' && c <= 'Z':
			n = n*26 + int(c-'A'+1)
		case c >= 'a' && c <= 'z':
			n = n*26 + int(c-'a'+1)
		default:
			return n - 1
		}
	}
	return n - 1
}
