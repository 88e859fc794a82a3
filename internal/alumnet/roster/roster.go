// Package roster reads alumni and student spreadsheets uploaded for bulk
// import and validates them row by row.
package roster

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file type")
	ErrEmptyFile         = errors.New("file contains no data rows")
	ErrUnreadable        = errors.New("file could not be read")
	ErrMissingColumns    = errors.New("missing required columns")
)

// Row is one data row keyed by header. Number is the row as shown in a
// spreadsheet program, so the header is row 1.
type Row struct {
	Number int
	Values map[string]string
}

// Get returns the trimmed cell for column, or "" when absent.
func (r Row) Get(column string) string {
	return strings.TrimSpace(r.Values[column])
}

func (r Row) blank() bool {
	for _, v := range r.Values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

type Table struct {
	Headers []string
	Rows    []Row
}

func (t Table) has(column string) bool {
	for _, h := range t.Headers {
		if h == column {
			return true
		}
	}
	return false
}

// Supported reports whether filename has an extension Parse accepts.
func Supported(filename string) bool {
	return CheckFormat(filename) == nil
}

// CheckFormat explains why filename cannot be parsed, or returns nil.
func CheckFormat(filename string) error {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv", ".xlsx":
		return nil
	case ".xls":
		return fmt.Errorf("%w: legacy .xls workbooks are not supported, save the sheet as .xlsx or .csv", ErrUnsupportedFormat)
	default:
		return fmt.Errorf("%w: %q, upload a .csv or .xlsx file", ErrUnsupportedFormat, ext)
	}
}

// Parse reads a .csv or .xlsx upload. Header names are trimmed but matched
// case-sensitively. Rows with no values at all are dropped.
func Parse(filename string, r io.Reader) (Table, error) {
	if err := CheckFormat(filename); err != nil {
		return Table{}, err
	}

	var (
		t   Table
		err error
	)
	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		t, err = parseCSV(r)
	} else {
		t, err = parseXLSX(r)
	}
	if err != nil {
		return Table{}, err
	}
	if len(t.Rows) == 0 {
		return Table{}, ErrEmptyFile
	}
	return t, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func parseCSV(r io.Reader) (Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Table{}, ErrEmptyFile
	}
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	t := Table{Headers: trimAll(header)}
	// Rows are numbered by record, so quoted newlines inside a cell do not
	// shift the numbers of later rows.
	for number := 2; ; number++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
		}

		row := newRow(number, t.Headers, record)
		if !row.blank() {
			t.Rows = append(t.Rows, row)
		}
	}
	return t, nil
}

func parseXLSX(r io.Reader) (Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Table{}, ErrEmptyFile
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if len(rows) == 0 {
		return Table{}, ErrEmptyFile
	}

	t := Table{Headers: trimAll(rows[0])}
	for i, record := range rows[1:] {
		row := newRow(i+2, t.Headers, record)
		if !row.blank() {
			t.Rows = append(t.Rows, row)
		}
	}
	return t, nil
}

func newRow(number int, headers, record []string) Row {
	values := make(map[string]string, len(headers))
	for i, h := range headers {
		if h == "" || i >= len(record) {
			continue
		}
		values[h] = record[i]
	}
	return Row{Number: number, Values: values}
}

func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}
