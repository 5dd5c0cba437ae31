package validation

import "strings"

type NullRow struct {
	Row         int      `json:"row"`
	NullColumns []string `json:"null_columns"`
	Data        RowData  `json:"data"`
}

type NullResult struct {
	Status string
	Rows   []NullRow
}

// ValidateNulls flags every row holding at least one missing or blank cell.
func ValidateNulls(table *Table) NullResult {
	rows := []NullRow{}
	for _, row := range table.Rows {
		var nullCols []string
		for _, col := range table.Columns {
			v, ok := row.Value(col)
			if !ok || strings.TrimSpace(v) == "" {
				nullCols = append(nullCols, col)
			}
		}
		if len(nullCols) > 0 {
			rows = append(rows, NullRow{Row: row.Number(), NullColumns: nullCols, Data: row.Data()})
		}
	}
	if len(rows) > 0 {
		return NullResult{Status: StatusFailed, Rows: rows}
	}
	return NullResult{Status: StatusSuccess, Rows: rows}
}
