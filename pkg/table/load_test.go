package table

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeFile(t, t.TempDir(), "ha_mutations.csv", "gene,site\nHA,145\nHA,156\n")

	tbl, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"gene", "site"}, tbl.Columns)
	require.Equal(t, 2, tbl.RowCount())
	require.Equal(t, []string{"145", "156"}, tbl.Column("site"))
}

func TestLoadTSV(t *testing.T) {
	for _, name := range []string{"ha_mutations.tsv", "ha_mutations.tab"} {
		path := writeFile(t, t.TempDir(), name, "gene\tsite\nHA\t145\n")

		tbl, err := Load(path)
		require.NoError(t, err)
		require.Equal(t, []string{"gene", "site"}, tbl.Columns)
		require.Equal(t, 1, tbl.RowCount())
	}
}

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ha_mutations.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"gene", "site"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"HA", 145}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"HA", 156}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	tbl, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"gene", "site"}, tbl.Columns)
	require.Equal(t, 2, tbl.RowCount())
	require.Equal(t, []string{"145", "156"}, tbl.Column("site"))
}

func TestLoadXLSUnsupported(t *testing.T) {
	path := writeFile(t, t.TempDir(), "old.xls", "not a real workbook")

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), ".xls")
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := writeFile(t, t.TempDir(), "notes.txt", "gene,site\n")

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported file extension")
}

func TestLoadEmptyFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.csv", "")

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadPadsShortRows(t *testing.T) {
	path := writeFile(t, t.TempDir(), "ha.csv", "gene,site,note\nHA,145\n")

	tbl, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"HA", "145", ""}, tbl.Rows[0])
	require.True(t, IsNull(tbl.Rows[0][2]))
}

func TestIsTableFile(t *testing.T) {
	require.True(t, IsTableFile("a/b/ha_mutations.CSV"))
	require.True(t, IsTableFile("ha.xlsx"))
	require.True(t, IsTableFile("ha.xls"))
	require.False(t, IsTableFile("ha.yaml"))
	require.False(t, IsTableFile("ha"))
}

func TestRowCount(t *testing.T) {
	path := writeFile(t, t.TempDir(), "g.csv", "gene\nHA\nNA\nPB1\n")

	n, err := RowCount(path)
	require.NoError(t, err)
	require.Equal(t, 3, n)
}
