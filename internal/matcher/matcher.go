// Package matcher finds the catalog project a free-text comment refers to.
//
// Tiers are tried in a fixed order and the first one that produces a match
// wins, even if a later tier would have scored a different project higher:
//
//  1. Exact: the normalized comment equals a normalized project name.
//  2. Substring: a normalized project name occurs inside the comment.
//     Catalog order breaks ties.
//  3. WordFuzzy: a single comment word (3+ chars) is similar enough to a
//     project name.
//  4. PhraseFuzzy: a run of 2 to 4 consecutive words is similar enough.
package matcher

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/jask/projectmatch/internal/textnorm"
)

// DefaultThreshold is the similarity a fuzzy candidate must reach.
const DefaultThreshold = 0.8

const (
	minWordLen     = 3
	minPhraseWords = 2
	maxPhraseWords = 4
)

// ErrInvalidThreshold is returned for thresholds outside [0,1].
var ErrInvalidThreshold = errors.New("matcher: threshold must be within [0,1]")

// Tier identifies the strategy that produced a match.
type Tier int

const (
	TierNone Tier = iota
	TierExact
	TierSubstring
	TierWordFuzzy
	TierPhraseFuzzy
	// TierMapped marks a project taken from a saved comment mapping rather
	// than from the catalog search.
	TierMapped
)

func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierSubstring:
		return "substring"
	case TierWordFuzzy:
		return "word-fuzzy"
	case TierPhraseFuzzy:
		return "phrase-fuzzy"
	case TierMapped:
		return "mapped"
	default:
		return "none"
	}
}

// Result is the outcome of a lookup. The zero value is NoMatch.
type Result struct {
	Project string
	Tier    Tier
}

// NoMatch is returned when no tier qualifies.
var NoMatch = Result{}

// Matched reports whether the result names a project.
func (r Result) Matched() bool { return r.Tier != TierNone }

func (r Result) String() string {
	if !r.Matched() {
		return "no match"
	}
	return fmt.Sprintf("%s (%s)", r.Project, r.Tier)
}

// ValidateThreshold rejects thresholds outside [0,1].
func ValidateThreshold(threshold float64) error {
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidThreshold, threshold)
	}
	return nil
}

// Matcher runs the tiered search against one catalog snapshot.
type Matcher struct {
	catalog   Catalog
	threshold float64
}

// New builds a matcher. The threshold is checked here so Find never fails.
func New(catalog Catalog, threshold float64) (*Matcher, error) {
	if err := ValidateThreshold(threshold); err != nil {
		return nil, err
	}
	return &Matcher{catalog: catalog, threshold: threshold}, nil
}

// FindMatch is a one-shot helper building a catalog from names.
func FindMatch(comment string, names []string, threshold float64) (Result, error) {
	m, err := New(NewCatalog(names), threshold)
	if err != nil {
		return NoMatch, err
	}
	return m.Find(comment), nil
}

// Catalog returns the snapshot the matcher searches.
func (m *Matcher) Catalog() Catalog { return m.catalog }

// Find returns the project comment refers to, or NoMatch.
func (m *Matcher) Find(comment string) Result {
	if strings.TrimSpace(comment) == "" || len(m.catalog.entries) == 0 {
		return NoMatch
	}
	norm := textnorm.Normalize(comment)
	if norm == "" {
		return NoMatch
	}

	if name, ok := m.catalog.byNorm[norm]; ok {
		return Result{Project: name, Tier: TierExact}
	}

	for _, e := range m.catalog.entries {
		if strings.Contains(norm, e.normalized) {
			return Result{Project: e.original, Tier: TierSubstring}
		}
	}

	words := textnorm.Fields(norm)
	for _, w := range words {
		if len(w) < minWordLen {
			continue
		}
		if name, ok := m.closest(w); ok {
			return Result{Project: name, Tier: TierWordFuzzy}
		}
	}

	longest := maxPhraseWords
	if len(words) < longest {
		longest = len(words)
	}
	for n := minPhraseWords; n <= longest; n++ {
		for i := 0; i+n <= len(words); i++ {
			phrase := strings.Join(words[i:i+n], " ")
			if name, ok := m.closest(phrase); ok {
				return Result{Project: name, Tier: TierPhraseFuzzy}
			}
		}
	}
	return NoMatch
}

// closest returns the best scoring catalog name for s if it reaches the
// threshold. Equal scores keep the earlier catalog entry.
func (m *Matcher) closest(s string) (string, bool) {
	best, bestScore := "", -1.0
	for _, e := range m.catalog.entries {
		score := Similarity(s, e.normalized)
		if score > bestScore {
			best, bestScore = e.original, score
		}
	}
	if bestScore < m.threshold {
		return "", false
	}
	return best, true
}
