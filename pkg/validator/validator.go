// Package validator applies one schema's rule set to one parsed table and
// produces the ordered list of violations.
//
// Validate is a pure function of the table and schema, apart from the
// reference-table lookups needed for foreign-key checks. All checks run
// even when earlier ones fail, so a single call surfaces every problem
// with a file. The error return is reserved for schema-authoring faults
// (unknown column type, unparsable pattern), which abort validation
// instead of being reported as data-quality violations.
package validator

import (
	"sort"
	"strings"

	"github.com/nellaby/tableguard/pkg/schema"
	"github.com/nellaby/tableguard/pkg/table"
)

// Lookup resolves foreign-key reference tables against the live store.
type Lookup interface {
	Exists(identity string) bool
	Read(identity string) (*table.Table, error)
}

// Validate runs every check of the schema against the table and returns
// the aggregated violations. The table is never mutated.
func Validate(tbl *table.Table, sch *schema.Schema, refs Lookup) (Violations, error) {
	var all Violations

	all.Merge(checkRequiredColumns(tbl, sch))
	all.Merge(checkUnexpectedColumns(tbl, sch))

	for _, rule := range sch.Columns {
		if !tbl.HasColumn(rule.Name) {
			// Absence is already flagged when the column is required.
			continue
		}
		v, err := checkColumn(tbl, rule)
		if err != nil {
			return nil, err
		}
		all.Merge(v)
	}

	all.Merge(checkPrimaryKey(tbl, sch))
	all.Merge(checkForeignKeys(tbl, sch, refs))

	return all, nil
}

func checkRequiredColumns(tbl *table.Table, sch *schema.Schema) Violations {
	var v Violations
	for _, rule := range sch.Columns {
		if rule.Required && !tbl.HasColumn(rule.Name) {
			v.Addf("Missing required column: %s", rule.Name)
		}
	}
	return v
}

func checkUnexpectedColumns(tbl *table.Table, sch *schema.Schema) Violations {
	var v Violations
	if !sch.Strict() {
		return v
	}
	declared := make(map[string]bool, len(sch.Columns))
	for _, rule := range sch.Columns {
		declared[rule.Name] = true
	}
	var extra []string
	for _, col := range tbl.Columns {
		if !declared[col] {
			extra = append(extra, col)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		v.Addf("Unexpected columns present: [%s]", strings.Join(extra, ", "))
	}
	return v
}
