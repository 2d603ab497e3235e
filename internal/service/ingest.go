package service

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/jask/projectmatch/internal/database/repository"
)

// IngestService loads the project catalog and the time log from CSV exports.
type IngestService struct {
	Log      *repository.LogEntryRepo
	Projects *repository.ProjectRepo
}

type IngestResult struct {
	Imported int
	Skipped  int
	Errors   []error
}

// ImportLog replaces the stored log with the rows of a CSV sheet.
func (s *IngestService) ImportLog(ctx context.Context, r io.Reader) (IngestResult, error) {
	sheet, err := ReadSheet(r)
	if err != nil {
		return IngestResult{}, err
	}
	records := sheet.Records()
	entries := make([]repository.LogEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, entryFromRecord(rec))
	}
	if err := s.Log.Replace(ctx, entries); err != nil {
		return IngestResult{}, fmt.Errorf("store log: %w", err)
	}
	return IngestResult{Imported: len(entries)}, nil
}

// ImportProjects adds project names to the catalog. The names come from the
// "Project" or "Projects" column, else the fourth column as in the backend
// data sheet, else the only column. Blank and repeated names are skipped.
func (s *IngestService) ImportProjects(ctx context.Context, r io.Reader) (IngestResult, error) {
	res := IngestResult{}
	names, err := readProjectNames(r)
	if err != nil {
		return res, err
	}
	existing, err := s.Projects.Names(ctx)
	if err != nil {
		return res, err
	}
	seen := make(map[string]struct{}, len(existing)+len(names))
	for _, n := range existing {
		seen[n] = struct{}{}
	}
	order := len(existing)
	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			res.Skipped++
			continue
		}
		if _, ok := seen[name]; ok {
			res.Skipped++
			continue
		}
		seen[name] = struct{}{}
		if err := s.Projects.Upsert(ctx, repository.Project{Name: name, SortOrder: order}); err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: %w", i+2, err))
			continue
		}
		order++
		res.Imported++
	}
	return res, nil
}

// ExportLog writes the stored log as CSV with the canonical headers.
func (s *IngestService) ExportLog(ctx context.Context, w io.Writer) error {
	entries, err := s.Log.List(ctx)
	if err != nil {
		return err
	}
	sheet := &Sheet{Header: []string{"Date", "Team Member", "Category", "Project", "Comments"}}
	for _, e := range entries {
		sheet.Rows = append(sheet.Rows, []string{e.Date, e.TeamMember, e.Category, e.Project, e.Comment})
	}
	return sheet.WriteCSV(w)
}

// ReadProjectNames reads catalog names from a CSV export without storing them.
func ReadProjectNames(r io.Reader) ([]string, error) {
	return readProjectNames(r)
}

func readProjectNames(r io.Reader) ([]string, error) {
	csvr := csv.NewReader(bufio.NewReader(r))
	csvr.TrimLeadingSpace = true
	csvr.FieldsPerRecord = -1
	all, err := csvr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(all) == 0 {
		return nil, nil
	}
	header := all[0]
	col := headerIndex(header, "project", "projects")
	switch {
	case col >= 0:
	case len(header) >= 4:
		col = 3
	case len(header) == 1:
		col = 0
	default:
		return nil, fmt.Errorf("%w: project", ErrMissingColumn)
	}
	var out []string
	for _, row := range all[1:] {
		out = append(out, cell(row, col))
	}
	return out, nil
}
