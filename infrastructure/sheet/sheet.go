package sheet

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ContentTypeXLSX is the MIME type of the workbooks written by WriteXLSX.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")
	ErrEmptySheet        = errors.New("sheet has no header row")
)

// Table is the first sheet of a spreadsheet: a header row plus data rows.
// Every data row has exactly len(Header) cells.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Column returns the index of the header cell matching name, ignoring
// surrounding whitespace and case, or -1.
func (t *Table) Column(name string) int {
	want := strings.TrimSpace(name)
	for i, h := range t.Header {
		if strings.EqualFold(strings.TrimSpace(h), want) {
			return i
		}
	}
	return -1
}

// MissingColumns lists the names that have no matching header cell.
func (t *Table) MissingColumns(names ...string) []string {
	missing := make([]string, 0)
	for _, name := range names {
		if t.Column(name) < 0 {
			missing = append(missing, name)
		}
	}
	return missing
}

// SupportedExtensions are the upload extensions Read understands.
var SupportedExtensions = []string{".xlsx", ".xlsm", ".xls", ".csv"}

// Supported reports whether Read can decode a file with this name.
func Supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range SupportedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Read decodes the first sheet of a spreadsheet, choosing the decoder from
// the extension of name.
func Read(name string, r io.Reader) (*Table, error) {
	var (
		raw [][]string
		err error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		raw, err = readXLSX(r)
	case ".xls":
		raw, err = readXLS(r)
	case ".csv":
		raw, err = readCSV(r)
	default:
		return nil, fmt.Errorf("%s: %w", name, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return newTable(name, raw)
}

// ReadFile opens path and decodes it with Read.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(filepath.Base(path), f)
}

func newTable(name string, raw [][]string) (*Table, error) {
	raw = trimTrailingBlankRows(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptySheet)
	}

	header := make([]string, len(raw[0]))
	for i, h := range raw[0] {
		header[i] = strings.TrimSpace(h)
	}
	for len(header) > 0 && header[len(header)-1] == "" {
		header = header[:len(header)-1]
	}
	if len(header) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptySheet)
	}

	rows := make([][]string, 0, len(raw)-1)
	for _, r := range raw[1:] {
		row := make([]string, len(header))
		copy(row, r)
		rows = append(rows, row)
	}
	return &Table{Name: name, Header: header, Rows: rows}, nil
}

func trimTrailingBlankRows(raw [][]string) [][]string {
	for len(raw) > 0 && isBlankRow(raw[len(raw)-1]) {
		raw = raw[:len(raw)-1]
	}
	return raw
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
