// Package table reads and writes the tabular files sift classifies: CSV,
// Excel workbooks and HTML tables.
package table

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Veraticus/sift/internal/common"
	"github.com/Veraticus/sift/internal/model"
)

// Input limits.
const (
	MaxFileSize int64 = 100 << 20
	MaxRows           = 100_000
	MaxColumns        = 1_000
)

// Format is a supported file format.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatHTML Format = "html"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".html", ".htm":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Table is a header row plus data rows. Every row has exactly len(Headers)
// cells; missing cells are empty strings.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// New builds a table, padding short rows and naming surplus columns with an
// empty header. It enforces the row and column limits.
func New(name string, headers []string, rows [][]string) (*Table, error) {
	width := len(headers)
	for _, row := range rows {
		width = max(width, len(row))
	}

	if width == 0 {
		return nil, fmt.Errorf("%w: table has no columns", common.ErrInvalidInput)
	}
	if width > MaxColumns {
		return nil, fmt.Errorf("%w: %d columns, maximum is %d", common.ErrLimitExceeded, width, MaxColumns)
	}
	if len(rows) > MaxRows {
		return nil, fmt.Errorf("%w: %d rows, maximum is %d", common.ErrLimitExceeded, len(rows), MaxRows)
	}

	t := &Table{
		Name:    name,
		Headers: make([]string, width),
		Rows:    make([][]string, len(rows)),
	}
	for i, h := range headers {
		t.Headers[i] = strings.TrimSpace(h)
	}
	for i, row := range rows {
		padded := make([]string, width)
		copy(padded, row)
		t.Rows[i] = padded
	}
	return t, nil
}

// FromColumns assembles a table from columns of possibly different lengths.
func FromColumns(name string, columns []model.Column) *Table {
	height := 0
	for _, c := range columns {
		height = max(height, len(c.Values))
	}

	t := &Table{
		Name:    name,
		Headers: make([]string, len(columns)),
		Rows:    make([][]string, height),
	}
	for r := range t.Rows {
		t.Rows[r] = make([]string, len(columns))
	}
	for c, col := range columns {
		t.Headers[c] = col.Name
		for r, v := range col.Values {
			t.Rows[r][c] = v
		}
	}
	return t
}

// Columns splits the table into columns.
func (t *Table) Columns() []model.Column {
	columns := make([]model.Column, len(t.Headers))
	for c, h := range t.Headers {
		values := make([]string, len(t.Rows))
		for r, row := range t.Rows {
			values[r] = row[c]
		}
		columns[c] = model.Column{Name: h, Values: values}
	}
	return columns
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int {
	return len(t.Headers)
}
