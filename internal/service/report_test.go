package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteReport(t *testing.T) {
	t.Parallel()

	plan := mustPlanner(t, 0.8, nil).Plan(sampleRecords())
	var out strings.Builder
	require.NoError(t, WriteReport(&out, plan, 1))

	text := out.String()
	require.Contains(t, text, "Scanned 7 log entries (1 already attributed, 1 without comment)")
	require.Contains(t, text, "Found 4 entries to update (1 unmatched, 0 left blank by mapping)")
	require.Contains(t, text, "  Orion: 2 entries")
	require.Less(t, strings.Index(text, "Orion: 2"), strings.Index(text, "Alpha Launch: 1"))
	require.Contains(t, text, "1. Row 2 - 2026-03-02 - Sam")
	require.Contains(t, text, `Project: "" -> "Alpha Launch" (substring)`)
	require.Contains(t, text, "... and 3 more updates")
}

func TestWriteReportNothingToDo(t *testing.T) {
	t.Parallel()
	var out strings.Builder
	require.NoError(t, WriteReport(&out, Plan{Scanned: 3, Attributed: 3}, 5))
	require.Contains(t, out.String(), "No entries found that need updating")
}

func TestPreviewTruncates(t *testing.T) {
	t.Parallel()
	long := strings.Repeat("é", 60)
	require.Equal(t, strings.Repeat("é", 50)+"...", preview(long))
	require.Equal(t, "short", preview("  short "))
}
