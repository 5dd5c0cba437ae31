package validation

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// headerRowOffset turns a zero-based data-row index into the row number an
// operator sees in a spreadsheet: +1 for 1-based display, +1 for the header.
const headerRowOffset = 2

const (
	utf8BOM        = "\ufeff"
	zeroWidthSpace = "\u200b"
)

// RowNumber is the externally reported number of the data row at index.
func RowNumber(index int) int {
	return index + headerRowOffset
}

// RowData is a row keyed by column name. Missing cells are nil so they
// serialize as JSON null.
type RowData map[string]any

type Table struct {
	Columns []string
	Rows    []Row
}

type Row struct {
	Index  int
	values map[string]*string
}

// Value returns the raw cell for column and whether the cell exists at all.
func (r Row) Value(column string) (string, bool) {
	v, ok := r.values[column]
	if !ok || v == nil {
		return "", false
	}
	return *v, true
}

func (r Row) Number() int {
	return RowNumber(r.Index)
}

// IsBlank reports whether every cell is missing or whitespace.
func (r Row) IsBlank() bool {
	for _, v := range r.values {
		if v != nil && strings.TrimSpace(*v) != "" {
			return false
		}
	}
	return true
}

func (r Row) Data() RowData {
	data := make(RowData, len(r.values))
	for col, v := range r.values {
		if v == nil {
			data[col] = nil
			continue
		}
		data[col] = *v
	}
	return data
}

// ParseCSV reads a header line and data rows. Bare quotes inside a field are
// kept literally. Short rows keep their missing cells as absent; rows wider
// than the header make the file unparseable.
func ParseCSV(content string) (*Table, error) {
	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &PipelineError{Stage: "parse", Err: errors.New("no columns to parse from file")}
	}
	if err != nil {
		return nil, &PipelineError{Stage: "parse", Err: fmt.Errorf("read header: %w", err)}
	}

	table := &Table{Columns: normalizeHeader(header)}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &PipelineError{Stage: "parse", Err: err}
		}
		if len(record) > len(table.Columns) {
			line, _ := reader.FieldPos(0)
			return nil, &PipelineError{
				Stage: "parse",
				Err:   fmt.Errorf("expected %d fields in line %d, saw %d", len(table.Columns), line, len(record)),
			}
		}
		table.Rows = append(table.Rows, newRow(len(table.Rows), table.Columns, record))
	}
	return table, nil
}

func newRow(index int, columns, record []string) Row {
	values := make(map[string]*string, len(columns))
	for i, col := range columns {
		if i < len(record) {
			v := record[i]
			values[col] = &v
		} else {
			values[col] = nil
		}
	}
	return Row{Index: index, values: values}
}

// normalizeHeader trims names, drops a leading BOM and suffixes repeated
// names with ".N" so every column stays addressable.
func normalizeHeader(header []string) []string {
	columns := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		name = strings.TrimSpace(name)
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = name + "." + strconv.Itoa(n)
		} else {
			seen[name] = 1
		}
		columns[i] = name
	}
	return columns
}
