// Package table holds the in-memory representation of a tabular data file
// and the extension-dispatched loader that produces it.
package table

import "strings"

// Table is a parsed tabular file: an ordered header plus rows of string
// cells. Cells keep the textual form from the source file; an empty cell
// is treated as null.
type Table struct {
	// Columns is the header row, in file order.
	Columns []string

	// Rows holds one slice per data row, aligned with Columns. Short rows
	// are padded with empty cells by the loader.
	Rows [][]string
}

// IsNull reports whether a cell value counts as absent.
func IsNull(v string) bool {
	return strings.TrimSpace(v) == ""
}

// HasColumn reports whether the table contains the named column.
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns all values of the named column in row order.
// Returns nil if the column does not exist.
func (t *Table) Column(name string) []string {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil
	}
	values := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		values = append(values, row[idx])
	}
	return values
}

// RowCount returns the number of data rows (header excluded).
func (t *Table) RowCount() int {
	return len(t.Rows)
}
