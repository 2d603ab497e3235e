package service

import (
	"fmt"
	"io"
	"strings"
)

const commentPreview = 50

// WriteReport prints a human readable summary of plan with up to samples
// example proposals.
func WriteReport(w io.Writer, plan Plan, samples int) error {
	bw := &errWriter{w: w}
	bw.printf("Scanned %d log entries (%d already attributed, %d without comment)\n",
		plan.Scanned, plan.Attributed, plan.NoComment)
	if len(plan.Proposals) == 0 {
		bw.printf("No entries found that need updating (%d unmatched, %d left blank by mapping)\n",
			plan.Unmatched, plan.Declined)
		return bw.err
	}
	bw.printf("Found %d entries to update (%d unmatched, %d left blank by mapping)\n",
		len(plan.Proposals), plan.Unmatched, plan.Declined)

	bw.printf("\nUpdates by project:\n")
	for _, pc := range plan.ByProject() {
		bw.printf("  %s: %d entries\n", pc.Project, pc.Count)
	}

	if samples > len(plan.Proposals) {
		samples = len(plan.Proposals)
	}
	if samples > 0 {
		bw.printf("\nSample updates:\n")
	}
	for i, p := range plan.Proposals[:samples] {
		r := p.Record
		bw.printf("  %d. Row %d - %s - %s\n", i+1, r.Row, r.Date, r.TeamMember)
		bw.printf("     Category: %s\n", r.Category)
		bw.printf("     Comment: %s\n", preview(r.Comment))
		bw.printf("     Project: %q -> %q (%s)\n", p.OldProject, p.NewProject, p.Tier)
	}
	if rest := len(plan.Proposals) - samples; rest > 0 {
		bw.printf("  ... and %d more updates\n", rest)
	}
	return bw.err
}

// WriteFailures lists writes that did not land.
func WriteFailures(w io.Writer, res ApplyResult) error {
	bw := &errWriter{w: w}
	bw.printf("Applied %d updates, %d failed\n", res.Applied, len(res.Failed))
	for _, f := range res.Failed {
		bw.printf("  Row %d -> %q: %v\n", f.Proposal.Record.Row, f.Proposal.NewProject, f.Err)
	}
	return bw.err
}

func preview(s string) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= commentPreview {
		return s
	}
	return string(r[:commentPreview]) + "..."
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
