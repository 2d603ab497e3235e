package service

import (
	"strings"

	"github.com/jask/projectmatch/internal/database/repository"
)

// Mappings supplies decisions made ahead of a run for specific comments. ok is
// false when no decision exists; an empty project with ok means "leave blank".
type Mappings interface {
	Lookup(comment, category string) (project string, ok bool)
}

// MappingSet is an in-memory Mappings keyed like the stored mappings
// (repository.MappingKey).
type MappingSet map[string]string

// NewMappingSet indexes stored mappings. Later entries override earlier ones.
func NewMappingSet(ms []repository.Mapping) MappingSet {
	set := make(MappingSet, len(ms))
	for _, m := range ms {
		set.Set(m.Comment, m.Category, m.Project)
	}
	return set
}

// Set records a decision.
func (s MappingSet) Set(comment, category, project string) {
	s[repository.MappingKey(comment, category)] = strings.TrimSpace(project)
}

func (s MappingSet) Lookup(comment, category string) (string, bool) {
	if s == nil {
		return "", false
	}
	p, ok := s[repository.MappingKey(comment, category)]
	return p, ok
}
