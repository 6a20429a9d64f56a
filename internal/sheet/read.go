// Package sheet turns uploaded spreadsheets into rows of cells and works out
// which column feeds which record field.
package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrEmpty is returned when a file holds no non-blank row.
	ErrEmpty = errors.New("spreadsheet is empty")
	// ErrUnsupportedFormat is returned for extensions other than .xlsx and .csv.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	byteOrderMark = "\uFEFF"
)

// Cell is one spreadsheet value. Text holds the raw value as read; cells that
// parse as numbers (including date serials) also carry Number. Stored is set
// only when the workbook itself typed the cell as a number.
type Cell struct {
	Text     string
	Number   float64
	IsNumber bool
	Stored   bool
}

// TextCell builds a cell from a string, detecting plain numbers. The text is
// kept as written.
func TextCell(s string) Cell {
	c := Cell{Text: s}
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return c
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		c.Number = f
		c.IsNumber = true
	}
	return c
}

// NumberCell builds a numeric cell.
func NumberCell(f float64) Cell {
	return Cell{Text: strconv.FormatFloat(f, 'f', -1, 64), Number: f, IsNumber: true, Stored: true}
}

// storedNumber marks a raw workbook value as a typed number.
func storedNumber(s string) Cell {
	c := TextCell(s)
	c.Stored = c.IsNumber
	return c
}

// Blank reports whether the cell holds nothing but whitespace.
func (c Cell) Blank() bool {
	return strings.TrimSpace(c.Text) == ""
}

// String returns the trimmed text of the cell. Typed workbook numbers stored
// with an exponent or trailing fractional zeros are reformatted; text is kept
// as written, so "12E4" or "00123" in a text cell stay unchanged.
func (c Cell) String() string {
	s := strings.TrimSpace(c.Text)
	if c.Stored && (strings.ContainsAny(s, "eE") || strings.Contains(s, ".") && strings.HasSuffix(s, "0")) {
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	}
	return s
}

// Row is one line of a spreadsheet.
type Row []Cell

// Blank reports whether every cell of the row is blank.
func (r Row) Blank() bool {
	for _, c := range r {
		if !c.Blank() {
			return false
		}
	}
	return true
}

// Read parses an uploaded file, choosing the parser from the file name's
// extension. Only the first sheet of a workbook is read.
func Read(r io.Reader, filename string) ([]Row, error) {
	var (
		rows []Row
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		rows, err = ReadXLSX(r)
	case ".csv":
		rows, err = ReadCSV(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		if !row.Blank() {
			return rows, nil
		}
	}
	return nil, ErrEmpty
}

// ReadXLSX reads the first sheet of a workbook. Cells are read raw, so dates
// arrive as spreadsheet serial numbers.
func ReadXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmpty
	}

	raw, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}

	rows := toRows(raw)
	for i, row := range rows {
		for j, c := range row {
			if !c.IsNumber {
				continue
			}
			numeric, err := numericCell(f, sheets[0], j+1, i+1)
			if err != nil {
				return nil, err
			}
			if numeric {
				row[j] = storedNumber(c.Text)
			}
		}
	}
	return rows, nil
}

// numericCell reports whether the workbook typed a cell as a number. Cells
// without a type attribute hold numbers too.
func numericCell(f *excelize.File, sheet string, col, row int) (bool, error) {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return false, err
	}
	t, err := f.GetCellType(sheet, name)
	if err != nil {
		return false, fmt.Errorf("reading type of %s: %w", name, err)
	}
	return t == excelize.CellTypeNumber || t == excelize.CellTypeUnset, nil
}

// ReadCSV reads comma- or semicolon-separated values. The separator is taken
// from the first line.
func ReadCSV(r io.Reader) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	firstLine, _, _ := bytes.Cut(data, []byte("\n"))
	if bytes.Count(firstLine, []byte(";")) > bytes.Count(firstLine, []byte(",")) {
		reader.Comma = ';'
	}

	raw, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}
	return toRows(raw), nil
}

func toRows(raw [][]string) []Row {
	rows := make([]Row, len(raw))
	for i, record := range raw {
		row := make(Row, len(record))
		for j, value := range record {
			if i == 0 && j == 0 {
				value = strings.TrimPrefix(value, byteOrderMark)
			}
			row[j] = TextCell(value)
		}
		rows[i] = row
	}
	return rows
}
