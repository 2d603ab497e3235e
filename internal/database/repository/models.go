package repository

import "time"

// Project represents a catalog row.
type Project struct {
	ID        string
	Name      string
	SortOrder int
	CreatedAt time.Time
}

// LogEntry represents one time-tracking row. Row is the 1-based sheet row the
// entry was imported from; the header occupies row 1.
type LogEntry struct {
	Row        int
	Date       string
	TeamMember string
	Category   string
	Project    string
	Comment    string
	UpdatedAt  time.Time
}

// Mapping is a saved comment/category to project decision. An empty Project
// means the entry should stay unattributed.
type Mapping struct {
	Comment   string
	Category  string
	Project   string
	UpdatedAt time.Time
}

// Run is one recorded reconciliation pass.
type Run struct {
	ID        string
	DryRun    bool
	Threshold float64
	Scanned   int
	Proposed  int
	Applied   int
	Failed    int
	CreatedAt time.Time
	Proposals []RunProposal
}

// RunProposal is a proposed project change recorded with its run.
type RunProposal struct {
	Seq        int
	Row        int
	OldProject string
	NewProject string
	Tier       string
	Status     string
	Error      *string
}

// Proposal statuses.
const (
	StatusProposed = "proposed"
	StatusApplied  = "applied"
	StatusFailed   = "failed"
)
