package validator

import (
	"strings"

	"github.com/nellaby/tableguard/pkg/schema"
	"github.com/nellaby/tableguard/pkg/table"
)

// checkPrimaryKey counts every row participating in a duplicate key group.
// The check is skipped when a key column is absent; presence is handled by
// the column checks.
func checkPrimaryKey(tbl *table.Table, sch *schema.Schema) Violations {
	var v Violations
	if len(sch.PrimaryKey) == 0 {
		return v
	}

	indexes := make([]int, 0, len(sch.PrimaryKey))
	for _, col := range sch.PrimaryKey {
		idx := tbl.ColumnIndex(col)
		if idx < 0 {
			return v
		}
		indexes = append(indexes, idx)
	}

	seen := make(map[string]int, len(tbl.Rows))
	for _, row := range tbl.Rows {
		seen[keyOf(row, indexes)]++
	}
	duplicates := 0
	for _, n := range seen {
		if n > 1 {
			duplicates += n
		}
	}
	if duplicates > 0 {
		v.Addf("Primary key [%s] has %d duplicate rows", strings.Join(sch.PrimaryKey, ", "), duplicates)
	}
	return v
}

func keyOf(row []string, indexes []int) string {
	parts := make([]string, len(indexes))
	for i, idx := range indexes {
		parts[i] = row[idx]
	}
	// \x1f is a safe join separator for cell values.
	return strings.Join(parts, "\x1f")
}

// checkForeignKeys verifies referential integrity against the live store.
// A missing reference table fails closed with its own violation; an
// unreadable one likewise, since a value that cannot be verified must not
// pass.
func checkForeignKeys(tbl *table.Table, sch *schema.Schema, refs Lookup) Violations {
	var v Violations
	for _, fk := range sch.ForeignKeys {
		if !tbl.HasColumn(fk.Column) {
			continue
		}
		if refs == nil || !refs.Exists(fk.RefTable) {
			v.Addf("Foreign key reference table not found: %s", fk.RefTable)
			continue
		}
		refTbl, err := refs.Read(fk.RefTable)
		if err != nil {
			v.Addf("Foreign key reference table %s unreadable: %v", fk.RefTable, err)
			continue
		}
		refValues := refTbl.Column(fk.RefColumn)
		allowed := make(map[string]bool, len(refValues))
		for _, rv := range refValues {
			allowed[rv] = true
		}

		bad := 0
		for _, val := range tbl.Column(fk.Column) {
			if !allowed[val] {
				bad++
			}
		}
		if bad > 0 {
			v.Addf("Foreign key violation on %s: %d values not in %s.%s", fk.Column, bad, fk.RefTable, fk.RefColumn)
		}
	}
	return v
}
