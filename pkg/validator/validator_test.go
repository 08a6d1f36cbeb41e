package validator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/nellaby/tableguard/pkg/schema"
	"github.com/nellaby/tableguard/pkg/table"
)

// fakeStore is an in-memory reference table lookup.
type fakeStore map[string]*table.Table

func (f fakeStore) Exists(identity string) bool {
	return f[identity] != nil
}

func (f fakeStore) Read(identity string) (*table.Table, error) {
	if t := f[identity]; t != nil {
		return t, nil
	}
	return nil, errors.Errorf("no such table: %s", identity)
}

func boolPtr(b bool) *bool { return &b }

func floatPtr(f float64) *float64 { return &f }

func mutationSchema() *schema.Schema {
	return &schema.Schema{
		Filename:   "ha_mutations.csv",
		PrimaryKey: schema.StringList{"gene", "site"},
		Columns: []schema.ColumnRule{
			{Name: "gene", Required: true, Type: schema.TypeStr},
			{Name: "site", Required: true, Type: schema.TypeInt, Min: floatPtr(1), Max: floatPtr(600)},
			{Name: "effect", Type: schema.TypeFloat},
		},
	}
}

func TestValidate_CleanTable(t *testing.T) {
	tbl := &table.Table{
		Columns: []string{"gene", "site", "effect"},
		Rows: [][]string{
			{"HA", "145", "0.5"},
			{"HA", "156", "-1.2"},
			{"NA", "145", ""},
		},
	}

	violations, err := Validate(tbl, mutationSchema(), nil)
	require.NoError(t, err)
	require.True(t, violations.Empty(), "expected no violations, got %v", violations)
}

func TestValidate_MissingRequiredColumn(t *testing.T) {
	tbl := &table.Table{
		Columns: []string{"gene", "effect"},
		Rows:    [][]string{{"HA", "0.5"}},
	}

	violations, err := Validate(tbl, mutationSchema(), nil)
	require.NoError(t, err)
	require.Equal(t, Violations{"Missing required column: site"}, violations)
}

func TestValidate_UnexpectedColumns(t *testing.T) {
	tbl := &table.Table{
		Columns: []string{"gene", "site", "zzz", "aaa"},
		Rows:    [][]string{{"HA", "145", "x", "y"}},
	}

	violations, err := Validate(tbl, mutationSchema(), nil)
	require.NoError(t, err)
	require.Contains(t, violations, "Unexpected columns present: [aaa, zzz]")
}

func TestValidate_UnexpectedColumnsAllowedWhenNotStrict(t *testing.T) {
	sch := mutationSchema()
	sch.StrictColumns = boolPtr(false)
	tbl := &table.Table{
		Columns: []string{"gene", "site", "extra"},
		Rows:    [][]string{{"HA", "145", "x"}},
	}

	violations, err := Validate(tbl, sch, nil)
	require.NoError(t, err)
	require.True(t, violations.Empty())
}

func TestValidate_RequiredNulls(t *testing.T) {
	tbl := &table.Table{
		Columns: []string{"gene", "site"},
		Rows: [][]string{
			{"HA", "145"},
			{"", "156"},
			{"  ", "157"},
		},
	}

	violations, err := Validate(tbl, mutationSchema(), nil)
	require.NoError(t, err)
	require.Contains(t, violations, "gene: 2 required values are null")
}

func TestValidate_IntTypeCheck(t *testing.T) {
	tbl := &table.Table{
		Columns: []string{"gene", "site"},
		Rows: [][]string{
			{"HA", "145"},
			{"HA", "156.0"}, // integral float form passes
			{"HA", "abc"},
			{"HA", "1.5"},
			{"HA", ""}, // null skipped
		},
	}

	violations, err := Validate(tbl, mutationSchema(), nil)
	require.NoError(t, err)
	require.Contains(t, violations, "site: 2 rows fail type 'int'")
}

func TestValidate_FloatTypeCheck(t *testing.T) {
	tbl := &table.Table{
		Columns: []string{"gene", "site", "effect"},
		Rows: [][]string{
			{"HA", "145", "0.5"},
			{"HA", "156", "high"},
		},
	}

	violations, err := Validate(tbl, mutationSchema(), nil)
	require.NoError(t, err)
	require.Contains(t, violations, "effect: 1 rows fail type 'float'")
}

func TestValidate_DateTypeCheck(t *testing.T) {
	sch := &schema.Schema{
		Filename: "runs_log.csv",
		Columns: []schema.ColumnRule{
			{Name: "collected", Type: schema.TypeDate},
		},
	}
	tbl := &table.Table{
		Columns: []string{"collected"},
		Rows: [][]string{
			{"2026-08-31"},
			{"2026-08-31T12:00:00Z"},
			{"last tuesday"},
			{""},
		},
	}

	violations, err := Validate(tbl, sch, nil)
	require.NoError(t, err)
	require.Equal(t, Violations{"collected: 1 rows fail type 'date'"}, violations)
}

func TestValidate_Pattern(t *testing.T) {
	sch := &schema.Schema{
		Filename: "ha_mutations.csv",
		Columns: []schema.ColumnRule{
			{Name: "mutation", Pattern: `[A-Z]\d+[A-Z]`},
		},
	}
	tbl := &table.Table{
		Columns: []string{"mutation"},
		Rows: [][]string{
			{"K145N"},
			{"K145Nfoo"}, // anchored at start only, suffix allowed
			{"145N"},
			{"k145n"},
			{""},
		},
	}

	violations, err := Validate(tbl, sch, nil)
	require.NoError(t, err)
	require.Equal(t, Violations{"mutation: 2 rows fail regex '[A-Z]\\d+[A-Z]'"}, violations)
}

func TestValidate_InvalidPatternIsFatal(t *testing.T) {
	sch := &schema.Schema{
		Filename: "ha_mutations.csv",
		Columns: []schema.ColumnRule{
			{Name: "mutation", Pattern: `[unclosed`},
		},
	}
	tbl := &table.Table{Columns: []string{"mutation"}, Rows: [][]string{{"x"}}}

	_, err := Validate(tbl, sch, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid pattern")
}

func TestValidate_AllowedValuesUnion(t *testing.T) {
	dir := t.TempDir()
	listPath := filepath.Join(dir, "genes.txt")
	require.NoError(t, os.WriteFile(listPath, []byte("PB1\n\nPB2\n"), 0o644))

	sch := &schema.Schema{
		Filename: "ha_mutations.csv",
		Columns: []schema.ColumnRule{
			{Name: "gene", AllowedValues: []string{"HA", "NA"}, AllowedValuesFile: listPath},
		},
	}
	tbl := &table.Table{
		Columns: []string{"gene"},
		Rows: [][]string{
			{"HA"},  // inline
			{"PB2"}, // from file
			{"MP"},
			{"NS1"},
			{""}, // null skipped
		},
	}

	violations, err := Validate(tbl, sch, nil)
	require.NoError(t, err)
	require.Equal(t, Violations{"gene: 2 rows not in allowed values"}, violations)
}

func TestValidate_AllowedValuesFileUnreadable(t *testing.T) {
	sch := &schema.Schema{
		Filename: "ha_mutations.csv",
		Columns: []schema.ColumnRule{
			{Name: "gene", AllowedValuesFile: filepath.Join(t.TempDir(), "missing.txt")},
		},
	}
	tbl := &table.Table{Columns: []string{"gene"}, Rows: [][]string{{"HA"}}}

	violations, err := Validate(tbl, sch, nil)
	require.NoError(t, err)
	require.Len(t, violations, 1)
	require.Contains(t, violations[0], "failed to read allowed_values_file")
}

func TestValidate_NumericRange(t *testing.T) {
	tbl := &table.Table{
		Columns: []string{"gene", "site"},
		Rows: [][]string{
			{"HA", "0"},
			{"HA", "-3"},
			{"HA", "145"},
			{"HA", "601"},
			{"HA", "abc"}, // type check's business, not the range check's
		},
	}

	violations, err := Validate(tbl, mutationSchema(), nil)
	require.NoError(t, err)
	require.Contains(t, violations, "site: 2 values < 1")
	require.Contains(t, violations, "site: 1 values > 600")
}

func TestValidate_PrimaryKeyDuplicates(t *testing.T) {
	// Two duplicate groups: (HA,145) x2 and (NA,7) x3. The count covers
	// every participating row, not the number of groups.
	tbl := &table.Table{
		Columns: []string{"gene", "site"},
		Rows: [][]string{
			{"HA", "145"},
			{"HA", "145"},
			{"HA", "156"},
			{"NA", "7"},
			{"NA", "7"},
			{"NA", "7"},
		},
	}

	violations, err := Validate(tbl, mutationSchema(), nil)
	require.NoError(t, err)
	require.Contains(t, violations, "Primary key [gene, site] has 5 duplicate rows")
}

func TestValidate_ForeignKeyMissingTable(t *testing.T) {
	sch := mutationSchema()
	sch.ForeignKeys = []schema.ForeignKeyRule{
		{Column: "gene", RefTable: "genes.csv", RefColumn: "gene"},
	}
	tbl := &table.Table{
		Columns: []string{"gene", "site"},
		Rows:    [][]string{{"HA", "145"}},
	}

	violations, err := Validate(tbl, sch, fakeStore{})
	require.NoError(t, err)
	require.Contains(t, violations, "Foreign key reference table not found: genes.csv")
}

func TestValidate_ForeignKeyViolationCount(t *testing.T) {
	sch := mutationSchema()
	sch.ForeignKeys = []schema.ForeignKeyRule{
		{Column: "gene", RefTable: "genes.csv", RefColumn: "gene"},
	}
	refs := fakeStore{
		"genes.csv": {
			Columns: []string{"gene"},
			Rows:    [][]string{{"HA"}, {"NA"}},
		},
	}
	// PB1 appears twice; each carrying row counts.
	tbl := &table.Table{
		Columns: []string{"gene", "site"},
		Rows: [][]string{
			{"HA", "145"},
			{"PB1", "146"},
			{"PB1", "147"},
			{"NA", "148"},
		},
	}

	violations, err := Validate(tbl, sch, refs)
	require.NoError(t, err)
	require.Contains(t, violations, "Foreign key violation on gene: 2 values not in genes.csv.gene")
}

func TestValidate_AllChecksRunTogether(t *testing.T) {
	// One pass surfaces every problem: a missing required column does not
	// stop the remaining checks.
	tbl := &table.Table{
		Columns: []string{"gene", "effect", "extra"},
		Rows: [][]string{
			{"HA", "x", "1"},
			{"HA", "0.5", "2"},
		},
	}

	violations, err := Validate(tbl, mutationSchema(), nil)
	require.NoError(t, err)
	require.Contains(t, violations, "Missing required column: site")
	require.Contains(t, violations, "Unexpected columns present: [extra]")
	require.Contains(t, violations, "effect: 1 rows fail type 'float'")
}

func TestValidate_ViolationsStableAcrossRuns(t *testing.T) {
	tbl := &table.Table{
		Columns: []string{"gene", "effect", "extra"},
		Rows:    [][]string{{"", "x", "1"}},
	}

	first, err := Validate(tbl, mutationSchema(), nil)
	require.NoError(t, err)
	second, err := Validate(tbl, mutationSchema(), nil)
	require.NoError(t, err)
	require.Equal(t, first, second)
}
