package core

// table.go loads template tables into memory.
//
// A template table is a tab-separated file whose first row holds column
// names and whose second row holds the ROBOT template sub-header. Data rows
// start at spreadsheet row 3. Each table is read once per run; rules then
// run as pure functions over the in-memory rows.

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/JonMunkholm/mrovalidate/internal/schema"
)

// FirstDataRow is the spreadsheet row number of the first data row.
const FirstDataRow = 3

// utf8BOM is the byte order mark prepended by some spreadsheet exports.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Row is a single data row of a table. Rows are read-only once loaded.
type Row struct {
	Number int // Spreadsheet row number (FirstDataRow for the first data row)
	cells  map[schema.Column]string
}

// Get returns the raw cell value for col, or "" if the row has no such cell.
func (r Row) Get(col schema.Column) string {
	return r.cells[col]
}

// Value returns the trimmed cell value and whether it is present.
// A cell holding only whitespace is absent.
func (r Row) Value(col schema.Column) (string, bool) {
	v := CleanCell(r.cells[col])
	return v, v != ""
}

// NewRow builds a row from column/value pairs. Intended for tests and callers
// that assemble tables without a file.
func NewRow(number int, cells map[schema.Column]string) Row {
	c := make(map[schema.Column]string, len(cells))
	for k, v := range cells {
		c[k] = v
	}
	return Row{Number: number, cells: c}
}

// Table is an ordered sequence of rows sharing one header.
type Table struct {
	Name      string
	Path      string
	Header    []schema.Column
	SubHeader []string
	Rows      []Row

	positions map[schema.Column]int // 1-based position of the first occurrence
}

// NewTable builds a table from a header and rows. Row numbers are assigned
// from FirstDataRow in order.
func NewTable(name string, header []schema.Column, rows ...map[schema.Column]string) *Table {
	t := &Table{Name: name, Header: header}
	t.index()
	for i, cells := range rows {
		t.Rows = append(t.Rows, NewRow(FirstDataRow+i, cells))
	}
	return t
}

func (t *Table) index() {
	t.positions = make(map[schema.Column]int, len(t.Header))
	for i, col := range t.Header {
		if _, seen := t.positions[col]; !seen {
			t.positions[col] = i + 1
		}
	}
}

// ColumnIndex returns the 1-based position of col, or 0 if the header lacks it.
func (t *Table) ColumnIndex(col schema.Column) int {
	return t.positions[col]
}

// HasColumn reports whether the header contains col.
func (t *Table) HasColumn(col schema.Column) bool {
	return t.positions[col] > 0
}

// Address returns the spreadsheet address of col in row.
func (t *Table) Address(row Row, col schema.Column) string {
	return CellAddress(row.Number, t.ColumnIndex(col))
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// CheckHeader verifies that every required column in specs is present.
func (t *Table) CheckHeader(specs []schema.FieldSpec) error {
	var missing []string
	for _, spec := range specs {
		if spec.Required && !t.HasColumn(spec.Name) {
			missing = append(missing, string(spec.Name))
		}
	}
	if len(missing) > 0 {
		return &LoadError{
			Table: t.Name,
			Path:  t.Path,
			Kind:  ErrMissingColumn,
			Err:   fmt.Errorf("%s", strings.Join(missing, ", ")),
		}
	}
	return nil
}

// ReadTable parses a template table from r and checks its header against specs.
func ReadTable(name string, r io.Reader, specs []schema.FieldSpec) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &LoadError{Table: name, Kind: ErrMalformedTable, Err: err}
	}
	data = sanitize(data)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, &LoadError{Table: name, Kind: ErrMalformedTable, Err: err}
	}
	if len(records) < 2 {
		return nil, &LoadError{
			Table: name,
			Kind:  ErrMalformedTable,
			Err:   fmt.Errorf("expected column names and template sub-header, found %d header row(s)", len(records)),
		}
	}

	header := make([]schema.Column, len(records[0]))
	for i, h := range records[0] {
		header[i] = schema.Column(strings.TrimSpace(h))
	}

	t := &Table{
		Name:      name,
		Header:    header,
		SubHeader: records[1],
		Rows:      make([]Row, 0, len(records)-2),
	}
	t.index()

	for i, rec := range records[2:] {
		cells := make(map[schema.Column]string, len(header))
		for j, col := range header {
			if _, dup := cells[col]; dup {
				continue
			}
			if j < len(rec) {
				cells[col] = rec[j]
			} else {
				cells[col] = ""
			}
		}
		t.Rows = append(t.Rows, Row{Number: FirstDataRow + i, cells: cells})
	}

	if err := t.CheckHeader(specs); err != nil {
		return nil, err
	}
	return t, nil
}

// LoadTable opens path and reads it as the table name.
func LoadTable(name, path string, specs []schema.FieldSpec) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		kind := ErrMalformedTable
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			kind = ErrTableNotFound
		}
		return nil, &LoadError{Table: name, Path: path, Kind: kind, Err: err}
	}
	defer f.Close()

	t, err := ReadTable(name, f, specs)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
		}
		return nil, err
	}
	t.Path = path
	return t, nil
}

// sanitize strips a leading BOM and replaces invalid UTF-8 sequences.
func sanitize(data []byte) []byte {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		data = bytes.ToValidUTF8(data, []byte("\uFFFD"))
	}
	return data
}
