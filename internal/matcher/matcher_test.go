package matcher

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustMatcher(t *testing.T, names []string, threshold float64) *Matcher {
	t.Helper()
	m, err := New(NewCatalog(names), threshold)
	require.NoError(t, err)
	return m
}

func TestFindSubstringInComment(t *testing.T) {
	t.Parallel()
	m := mustMatcher(t, []string{"Alpha Launch", "Beta Retrofit"}, DefaultThreshold)
	got := m.Find("worked on alpha launch today")
	require.Equal(t, Result{Project: "Alpha Launch", Tier: TierSubstring}, got)
}

func TestFindWordFuzzyRespectsThreshold(t *testing.T) {
	t.Parallel()

	got, err := FindMatch("orio integration work", []string{"Orion"}, 0.7)
	require.NoError(t, err)
	require.Equal(t, Result{Project: "Orion", Tier: TierWordFuzzy}, got)

	got, err = FindMatch("orio integration work", []string{"Orion"}, 0.99)
	require.NoError(t, err)
	require.Equal(t, NoMatch, got)
	require.False(t, got.Matched())
}

func TestFindExactBeatsEarlierSubstring(t *testing.T) {
	t.Parallel()
	m := mustMatcher(t, []string{"Alpha", "Alpha Launch"}, DefaultThreshold)
	got := m.Find("Alpha-Launch")
	require.Equal(t, Result{Project: "Alpha Launch", Tier: TierExact}, got)
}

func TestFindSubstringBeatsFuzzyAndKeepsCatalogOrder(t *testing.T) {
	t.Parallel()

	m := mustMatcher(t, []string{"Orion Ops", "Apollo"}, 0.5)
	require.Equal(t, Result{Project: "Apollo", Tier: TierSubstring}, m.Find("orion opz and apollo"))

	m = mustMatcher(t, []string{"Beta", "Alpha"}, DefaultThreshold)
	require.Equal(t, Result{Project: "Beta", Tier: TierSubstring}, m.Find("alpha and beta"))
}

func TestFindWordFuzzyTieKeepsEarlierCatalogEntry(t *testing.T) {
	t.Parallel()
	m := mustMatcher(t, []string{"Abcx", "Abcy"}, 0.7)
	require.Equal(t, Result{Project: "Abcx", Tier: TierWordFuzzy}, m.Find("abcz"))
}

func TestFindWordFuzzyFirstTokenWins(t *testing.T) {
	t.Parallel()
	// "zebro" is as close to Zebra as "orien" is to Orion, but "orien" comes first.
	m := mustMatcher(t, []string{"Zebra", "Orion"}, 0.75)
	require.Equal(t, Result{Project: "Orion", Tier: TierWordFuzzy}, m.Find("orien zebro"))
}

func TestFindPhraseFuzzyShorterPhraseFirst(t *testing.T) {
	t.Parallel()
	// the three-word window scores higher, but two-word windows are tried first
	m := mustMatcher(t, []string{"Alpha Beta Gamma", "Beta Gamma"}, 0.85)
	require.Equal(t, Result{Project: "Beta Gamma", Tier: TierPhraseFuzzy}, m.Find("alpha betx gamma"))
}

func TestFindWordFuzzySkipsShortWords(t *testing.T) {
	t.Parallel()
	// "ab" would be a 0.67 match for "abc" but is too short to be tried.
	m := mustMatcher(t, []string{"Abc"}, 0.6)
	require.Equal(t, NoMatch, m.Find("ab xy"))
}

func TestFindPhraseFuzzy(t *testing.T) {
	t.Parallel()
	m := mustMatcher(t, []string{"Data Pipeline"}, DefaultThreshold)
	require.Equal(t, Result{Project: "Data Pipeline", Tier: TierPhraseFuzzy}, m.Find("fixed the data pipline bug"))
}

func TestFindPhraseFuzzyLimitsWindow(t *testing.T) {
	t.Parallel()
	// A five word phrase is never tried.
	m := mustMatcher(t, []string{"one two three four fivex"}, 0.95)
	require.Equal(t, NoMatch, m.Find("one two three four five"))
}

func TestFindBlankInputs(t *testing.T) {
	t.Parallel()

	m := mustMatcher(t, []string{"Orion"}, DefaultThreshold)
	require.Equal(t, NoMatch, m.Find(""))
	require.Equal(t, NoMatch, m.Find("   \t"))
	require.Equal(t, NoMatch, m.Find("?!"))

	empty := mustMatcher(t, nil, DefaultThreshold)
	require.Equal(t, NoMatch, empty.Find("orion"))

	punct := mustMatcher(t, []string{"!!!", "  "}, 0)
	require.Equal(t, NoMatch, punct.Find("anything at all"))
}

func TestFindDeterministic(t *testing.T) {
	t.Parallel()
	m := mustMatcher(t, []string{"Gamma Rollout", "Delta", "Orion"}, 0.75)
	comments := []string{"gama rollout prep", "delta review", "orien sync", "nothing here"}
	for _, c := range comments {
		require.Equal(t, m.Find(c), m.Find(c), c)
	}
}

func TestNewRejectsInvalidThreshold(t *testing.T) {
	t.Parallel()
	for _, th := range []float64{-0.01, 1.01, math.NaN()} {
		_, err := New(NewCatalog([]string{"x"}), th)
		require.ErrorIs(t, err, ErrInvalidThreshold)
	}
	_, err := FindMatch("x", []string{"x"}, 2)
	require.ErrorIs(t, err, ErrInvalidThreshold)

	for _, th := range []float64{0, 0.5, 1} {
		require.NoError(t, ValidateThreshold(th))
	}
}

func TestNewCatalogDeduplicates(t *testing.T) {
	t.Parallel()

	c := NewCatalog([]string{" Alpha ", "", "alpha", "Alpha", "   ", "ALPHA!", "Beta"})
	require.Equal(t, []string{"Alpha", "alpha", "ALPHA!", "Beta"}, c.Names())
	require.Equal(t, 4, c.Len())

	name, ok := c.Lookup("alpha")
	require.True(t, ok)
	require.Equal(t, "Alpha", name)

	m, err := New(c, DefaultThreshold)
	require.NoError(t, err)
	require.Equal(t, Result{Project: "Alpha", Tier: TierExact}, m.Find("ALPHA"))
}

func TestSimilarity(t *testing.T) {
	t.Parallel()

	require.Equal(t, 1.0, Similarity("", ""))
	require.Equal(t, 1.0, Similarity("orion", "orion"))
	require.Equal(t, 0.0, Similarity("abc", ""))
	require.InDelta(t, 0.8, Similarity("orio", "orion"), 1e-9)

	pairs := [][2]string{{"kitten", "sitting"}, {"alpha launch", "alpha lunch"}, {"a", "xyz"}}
	for _, p := range pairs {
		require.Equal(t, Similarity(p[0], p[1]), Similarity(p[1], p[0]))
	}
	require.Greater(t, Similarity("orion", "orian"), Similarity("orion", "oxian"))
}

func TestTierString(t *testing.T) {
	t.Parallel()
	require.Equal(t, "exact", TierExact.String())
	require.Equal(t, "phrase-fuzzy", TierPhraseFuzzy.String())
	require.Equal(t, "no match", NoMatch.String())
	require.Equal(t, "Orion (word-fuzzy)", Result{Project: "Orion", Tier: TierWordFuzzy}.String())
}
