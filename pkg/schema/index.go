package schema

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Index holds loaded schemas keyed by identity and resolves candidates by
// underscore prefix. Prefix collisions are rejected at load time so that
// resolution is a validated one-to-one mapping rather than first-match-wins.
type Index struct {
	identities []string
	byIdentity map[string]*Schema
}

// Identities returns the schema identities in load order.
func (i *Index) Identities() []string {
	out := make([]string, len(i.identities))
	copy(out, i.identities)
	return out
}

// Get returns the schema with the given identity, or nil.
func (i *Index) Get(identity string) *Schema {
	return i.byIdentity[identity]
}

// Len returns the number of loaded schemas.
func (i *Index) Len() int {
	return len(i.identities)
}

func (i *Index) add(s *Schema) error {
	identity := s.Identity()
	if _, dup := i.byIdentity[identity]; dup {
		return errors.Errorf("duplicate schema identity %q", identity)
	}
	newPrefix := matchPrefix(identity)
	for _, existing := range i.identities {
		if matchPrefix(existing) == newPrefix {
			return errors.Errorf("identity %q shares resolution prefix %q with %q", identity, newPrefix, existing)
		}
	}
	i.identities = append(i.identities, identity)
	i.byIdentity[identity] = s
	return nil
}

// Resolve returns the schema governing the candidate file, or nil when no
// identity matches its prefix. The prefix is the base name up to and
// including the first underscore.
func (i *Index) Resolve(filePath string) *Schema {
	prefix := matchPrefix(filepath.Base(filePath))
	for _, identity := range i.identities {
		if strings.HasPrefix(identity, prefix) {
			return i.byIdentity[identity]
		}
	}
	return nil
}

func matchPrefix(base string) string {
	head, _, _ := strings.Cut(base, "_")
	return head + "_"
}
