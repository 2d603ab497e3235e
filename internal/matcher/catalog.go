package matcher

import (
	"strings"

	"github.com/jask/projectmatch/internal/textnorm"
)

// entry is one matchable catalog project.
type entry struct {
	normalized string
	original   string
}

// Catalog is an ordered, deduplicated snapshot of project names. It is safe to
// share between matchers once built; nothing mutates it.
type Catalog struct {
	names   []string
	entries []entry
	byNorm  map[string]string
}

// NewCatalog drops blank and duplicate names, keeping first-seen order. When
// two names normalize to the same form the first one is the one returned by
// matches.
func NewCatalog(names []string) Catalog {
	c := Catalog{byNorm: make(map[string]string, len(names))}
	seen := make(map[string]struct{}, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		c.names = append(c.names, name)

		norm := textnorm.Normalize(name)
		if norm == "" {
			continue
		}
		if _, ok := c.byNorm[norm]; ok {
			continue
		}
		c.byNorm[norm] = name
		c.entries = append(c.entries, entry{normalized: norm, original: name})
	}
	return c
}

// Names returns the deduplicated project names in catalog order.
func (c Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Len reports the number of distinct names.
func (c Catalog) Len() int { return len(c.names) }

// Lookup returns the original name for a normalized form.
func (c Catalog) Lookup(normalized string) (string, bool) {
	name, ok := c.byNorm[normalized]
	return name, ok
}
