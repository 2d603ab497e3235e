package service

import (
	"strings"

	"github.com/jask/projectmatch/internal/database/repository"
)

// LogRecord is one time entry as seen by the planner. Row is the stable sheet
// address (header is row 1) that writes go back to.
type LogRecord struct {
	Row        int
	Date       string
	TeamMember string
	Category   string
	Project    string
	Comment    string
}

// Attributed reports whether the record already names a project.
func (r LogRecord) Attributed() bool { return strings.TrimSpace(r.Project) != "" }

// HasComment reports whether there is comment text to match on.
func (r LogRecord) HasComment() bool { return strings.TrimSpace(r.Comment) != "" }

func recordFromEntry(e repository.LogEntry) LogRecord {
	return LogRecord{
		Row:        e.Row,
		Date:       e.Date,
		TeamMember: e.TeamMember,
		Category:   e.Category,
		Project:    e.Project,
		Comment:    e.Comment,
	}
}

func recordsFromEntries(entries []repository.LogEntry) []LogRecord {
	out := make([]LogRecord, 0, len(entries))
	for _, e := range entries {
		out = append(out, recordFromEntry(e))
	}
	return out
}

func entryFromRecord(r LogRecord) repository.LogEntry {
	return repository.LogEntry{
		Row:        r.Row,
		Date:       r.Date,
		TeamMember: r.TeamMember,
		Category:   r.Category,
		Project:    r.Project,
		Comment:    r.Comment,
	}
}
