package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// ParseError indicates the upload was not a well-formed spreadsheet container.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("parse error: %s", e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Table is the normalized representation of one spreadsheet's first sheet.
// Headers is always row 0 of the raw sheet (verbatim, duplicates and blanks
// included) and Rows excludes it. Rows are not padded to the header width.
type Table struct {
	SheetName string   `json:"sheetName"`
	Headers   []string `json:"headers"`
	Rows      [][]Cell `json:"rows"`
}

// Empty reports whether the source sheet had no cells at all.
func (t *Table) Empty() bool {
	return len(t.Headers) == 0 && len(t.Rows) == 0
}

// Zip and OLE compound-file signatures. XLSX is a zip container; legacy XLS
// and encrypted workbooks are OLE containers, both handled by excelize.
var (
	zipSignature = []byte{0x50, 0x4b, 0x03, 0x04}
	oleSignature = []byte{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1}
)

// Parse converts a raw upload buffer into a normalized Table. The first sheet
// is selected by position; additional sheets are discarded. Plain-text buffers
// are parsed as CSV. An empty sheet yields an empty Table, not an error;
// anything that is not a spreadsheet container yields a *ParseError.
func Parse(data []byte) (*Table, error) {
	switch {
	case bytes.HasPrefix(data, zipSignature), bytes.HasPrefix(data, oleSignature):
		return parseWorkbook(data)
	case len(data) > 0 && utf8.Valid(data):
		return parseCSV(data)
	}
	return nil, &ParseError{Reason: "unrecognized spreadsheet container"}
}

func parseWorkbook(data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Reason: "invalid workbook", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{Reason: "workbook contains no sheets"}
	}

	// First sheet by positional index; the sheet name is not user-selectable.
	sheetName := sheets[0]
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, &ParseError{Reason: "unreadable sheet", Err: err}
	}

	return buildTable(sheetName, rows), nil
}

func parseCSV(data []byte) (*Table, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ParseError{Reason: "invalid CSV", Err: err}
		}
		rows = append(rows, record)
	}

	return buildTable("Sheet1", rows), nil
}

// buildTable splits the raw array-of-arrays into headers (row 0) and typed
// data rows.
func buildTable(sheetName string, raw [][]string) *Table {
	t := &Table{
		SheetName: sheetName,
		Headers:   []string{},
		Rows:      [][]Cell{},
	}

	if len(raw) == 0 {
		return t
	}

	t.Headers = append(t.Headers, raw[0]...)

	for _, row := range raw[1:] {
		cells := make([]Cell, len(row))
		for i, v := range row {
			cells[i] = cellFromRaw(v)
		}
		t.Rows = append(t.Rows, cells)
	}

	return t
}
