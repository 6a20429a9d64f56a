package sheet

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeHeader case-folds s, strips diacritics and trims surrounding space.
func NormalizeHeader(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.TrimSpace(strings.ToLower(out))
}

// Mapping assigns a column index to each field found in a sheet.
type Mapping struct {
	Columns   map[string]int
	HasHeader bool
}

// Cell returns the value feeding field in row. Missing columns and blank cells
// are reported as absent.
func (m Mapping) Cell(row Row, field string) (Cell, bool) {
	i, ok := m.Columns[field]
	if !ok || i < 0 || i >= len(row) || row[i].Blank() {
		return Cell{}, false
	}
	return row[i], true
}

// Text returns the trimmed string feeding field in row, or "".
func (m Mapping) Text(row Row, field string) string {
	c, ok := m.Cell(row, field)
	if !ok {
		return ""
	}
	return c.String()
}

// InferColumns decides whether first is a header row and maps fields to
// columns. A row is a header when any of its text cells matches a synonym;
// matched columns are mapped and, when two columns name the same field, the
// leftmost wins. Otherwise fields are mapped positionally in FieldOrder,
// truncated to the row's width.
func InferColumns(first Row, schema Schema) Mapping {
	m := Mapping{Columns: make(map[string]int)}

	for _, c := range first {
		if c.IsNumber {
			continue
		}
		if _, ok := schema.Lookup(c.Text); ok {
			m.HasHeader = true
			break
		}
	}

	if m.HasHeader {
		for i, c := range first {
			if c.IsNumber {
				continue
			}
			field, ok := schema.Lookup(c.Text)
			if !ok {
				continue
			}
			if _, taken := m.Columns[field]; !taken {
				m.Columns[field] = i
			}
		}
		return m
	}

	for i, field := range schema.FieldOrder {
		if i >= len(first) {
			break
		}
		m.Columns[field] = i
	}
	return m
}

// Record is a data row with its 1-based line number in the file.
type Record struct {
	Line  int
	Cells Row
}

// DataRows returns the non-blank rows of the sheet, skipping the first one
// when it is a header.
func DataRows(rows []Row, m Mapping) []Record {
	var out []Record
	skipHeader := m.HasHeader
	for i, r := range rows {
		if r.Blank() {
			continue
		}
		if skipHeader {
			skipHeader = false
			continue
		}
		out = append(out, Record{Line: i + 1, Cells: r})
	}
	return out
}

// FirstRow returns the first non-blank row, or nil.
func FirstRow(rows []Row) Row {
	for _, r := range rows {
		if !r.Blank() {
			return r
		}
	}
	return nil
}
