package table

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// Extensions lists the file extensions the loader understands, lowercase
// with leading dot. Candidate discovery uses the same set so that every
// discovered file is at least attempted; .xls is included so legacy
// workbooks surface a conversion error instead of being skipped.
var Extensions = []string{".csv", ".tsv", ".tab", ".xlsx", ".xls"}

// IsTableFile reports whether the path carries a recognized table extension.
func IsTableFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Load reads a tabular file into a Table, dispatching on the extension.
// The first row is the header; shorter data rows are padded with empty
// cells, longer ones are an error.
func Load(path string) (*Table, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv":
		return loadDelimited(path, ',')
	case ".tsv", ".tab":
		return loadDelimited(path, '\t')
	case ".xlsx":
		return loadWorkbook(path)
	case ".xls":
		return nil, errors.Errorf("legacy .xls workbook not supported, convert %s to .xlsx", filepath.Base(path))
	default:
		return nil, errors.Errorf("unsupported file extension: %s", ext)
	}
}

// RowCount loads the file and returns its data row count.
func RowCount(path string) (int, error) {
	t, err := Load(path)
	if err != nil {
		return 0, err
	}
	return t.RowCount(), nil
}

func loadDelimited(path string, sep rune) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = sep
	// Ragged rows are normalized below instead of rejected by the reader.
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	if len(records) == 0 {
		return nil, errors.Errorf("empty table file: %s", path)
	}
	return fromRecords(path, records)
}

func loadWorkbook(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open workbook %s", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.Errorf("workbook has no sheets: %s", path)
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sheet %q in %s", sheets[0], path)
	}
	if len(records) == 0 {
		return nil, errors.Errorf("empty table file: %s", path)
	}
	return fromRecords(path, records)
}

func fromRecords(path string, records [][]string) (*Table, error) {
	header := records[0]
	width := len(header)

	rows := make([][]string, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) > width {
			return nil, errors.Errorf("%s: row %d has %d fields, header has %d", path, i+2, len(rec), width)
		}
		if len(rec) < width {
			padded := make([]string, width)
			copy(padded, rec)
			rec = padded
		}
		rows = append(rows, rec)
	}
	return &Table{Columns: header, Rows: rows}, nil
}
