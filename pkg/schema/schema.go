// Package schema defines the declarative table schemas and the index that
// resolves which schema governs a candidate file.
package schema

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Column value types accepted in a schema document.
const (
	TypeStr   = "str"
	TypeInt   = "int"
	TypeFloat = "float"
	TypeDate  = "date"
)

// Schema describes the expected shape and content rules of one table.
type Schema struct {
	// Filename is the canonical name of the table in the live store.
	// Preferred identity; falls back to Name when empty.
	Filename string `yaml:"filename"`
	Name     string `yaml:"name"`

	Columns     []ColumnRule     `yaml:"columns"`
	PrimaryKey  StringList       `yaml:"primary_key"`
	ForeignKeys []ForeignKeyRule `yaml:"foreign_keys"`

	// StrictColumns rejects columns not declared in the schema. Defaults
	// to true when the document omits it.
	StrictColumns *bool `yaml:"strict_columns"`
}

// Identity returns the canonical identity used for resolution and as the
// live-store file name.
func (s *Schema) Identity() string {
	if s.Filename != "" {
		return s.Filename
	}
	return s.Name
}

// Strict reports the effective strict_columns setting.
func (s *Schema) Strict() bool {
	if s.StrictColumns == nil {
		return true
	}
	return *s.StrictColumns
}

// ColumnRule is the per-column rule set.
type ColumnRule struct {
	Name     string `yaml:"name"`
	Required bool   `yaml:"required"`

	// Type is one of str, int, float, date. Empty means no type check.
	Type string `yaml:"type"`

	// Pattern is a regular expression matched from the start of the
	// stringified value.
	Pattern string `yaml:"pattern"`

	AllowedValues     []string `yaml:"allowed_values"`
	AllowedValuesFile string   `yaml:"allowed_values_file"`

	// Min and Max bound numeric columns; meaningful only for int/float.
	Min *float64 `yaml:"min"`
	Max *float64 `yaml:"max"`
}

// ForeignKeyRule requires every value of Column to appear in RefColumn of
// the live table RefTable.
type ForeignKeyRule struct {
	Column    string `yaml:"column"`
	RefTable  string `yaml:"ref_table"`
	RefColumn string `yaml:"ref_column"`
}

// StringList accepts either a single YAML scalar or a sequence of scalars.
// primary_key documents exist in both forms.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		*l = StringList{s}
		return nil
	}
	var ss []string
	if err := node.Decode(&ss); err != nil {
		return err
	}
	*l = StringList(ss)
	return nil
}

// Load reads every .yml/.yaml document in dir, in lexical order, and
// builds the resolution index. It fails if a document lacks an identity,
// declares an unknown column type, or if two identities would resolve the
// same candidate prefix.
func Load(dir string) (*Index, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read schemas directory %s", dir)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yml" || ext == ".yaml" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	idx := &Index{byIdentity: make(map[string]*Schema)}
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read schema %s", path)
		}
		var sch Schema
		if err := yaml.Unmarshal(data, &sch); err != nil {
			return nil, errors.Wrapf(err, "failed to parse schema %s", path)
		}
		if sch.Identity() == "" {
			return nil, errors.Errorf("schema %s missing 'filename' or 'name'", name)
		}
		if err := checkColumnTypes(&sch); err != nil {
			return nil, errors.Wrapf(err, "schema %s", name)
		}
		if err := idx.add(&sch); err != nil {
			return nil, errors.Wrapf(err, "schema %s", name)
		}
	}
	return idx, nil
}

func checkColumnTypes(s *Schema) error {
	for _, c := range s.Columns {
		switch c.Type {
		case "", TypeStr, TypeInt, TypeFloat, TypeDate:
		default:
			return errors.Errorf("column %q has unknown type %q", c.Name, c.Type)
		}
	}
	return nil
}
