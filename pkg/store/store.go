// Package store wraps the live table store: the directory holding the
// current official version of each table, keyed by identity.
package store

import (
	"os"
	"path/filepath"

	"github.com/nellaby/tableguard/pkg/table"
)

// Store is a live table store rooted at a directory. It satisfies the
// validator's reference-table lookup.
type Store struct {
	root string
}

// New returns a store rooted at dir. The directory is not created until
// a commit needs it.
func New(dir string) *Store {
	return &Store{root: dir}
}

// Root returns the store directory.
func (s *Store) Root() string {
	return s.root
}

// Path returns the live location for a table identity.
func (s *Store) Path(identity string) string {
	return filepath.Join(s.root, identity)
}

// Exists reports whether a live table is present for the identity.
func (s *Store) Exists(identity string) bool {
	info, err := os.Stat(s.Path(identity))
	return err == nil && !info.IsDir()
}

// Read loads the live table for the identity.
func (s *Store) Read(identity string) (*table.Table, error) {
	return table.Load(s.Path(identity))
}
