package service

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMissingColumn is returned when a required header is absent.
var ErrMissingColumn = errors.New("missing column")

var commentHeaders = []string{"comments", "comment"}

// layout locates the log fields inside a sheet row.
type layout struct {
	date, member, category, project, comment int
}

// Sheet is a CSV time log held in memory. Row numbers are record ordinals
// offset by the header: the header is row 1 and the first data record is row
// 2. Blank lines are not records and a quoted multi-line cell is one record,
// so a row number can differ from the physical line in the file.
type Sheet struct {
	Header []string
	Rows   [][]string

	layout layout
}

// ReadSheet parses a CSV log with a header row. The Project and Comment(s)
// columns are required; Date, Team Member and Category fall back to the first
// three columns when their headers are missing.
func ReadSheet(r io.Reader) (*Sheet, error) {
	csvr := csv.NewReader(bufio.NewReader(r))
	csvr.TrimLeadingSpace = true
	csvr.FieldsPerRecord = -1
	all, err := csvr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("read csv: %w: sheet is empty", ErrMissingColumn)
	}
	s := &Sheet{Header: all[0]}
	for _, row := range all[1:] {
		if len(row) < len(s.Header) {
			row = append(row, make([]string, len(s.Header)-len(row))...)
		}
		s.Rows = append(s.Rows, row)
	}
	l, err := detectLayout(s.Header)
	if err != nil {
		return nil, err
	}
	s.layout = l
	return s, nil
}

func detectLayout(header []string) (layout, error) {
	l := layout{
		date:     headerIndex(header, "date"),
		member:   headerIndex(header, "team member", "team_member", "member"),
		category: headerIndex(header, "category"),
		project:  headerIndex(header, "project"),
		comment:  headerIndex(header, commentHeaders...),
	}
	if l.project < 0 {
		return l, fmt.Errorf("%w: project", ErrMissingColumn)
	}
	if l.comment < 0 {
		return l, fmt.Errorf("%w: comments", ErrMissingColumn)
	}
	fallback := func(idx, pos int) int {
		if idx >= 0 || pos >= len(header) {
			return idx
		}
		return pos
	}
	l.date = fallback(l.date, 0)
	l.member = fallback(l.member, 1)
	l.category = fallback(l.category, 2)
	return l, nil
}

func headerIndex(header []string, names ...string) int {
	for i, h := range header {
		h = strings.Join(strings.Fields(strings.ToLower(h)), " ")
		for _, n := range names {
			if h == n {
				return i
			}
		}
	}
	return -1
}

// Records returns the rows as log records, numbered from 2.
func (s *Sheet) Records() []LogRecord {
	out := make([]LogRecord, 0, len(s.Rows))
	for i, row := range s.Rows {
		out = append(out, LogRecord{
			Row:        i + 2,
			Date:       cell(row, s.layout.date),
			TeamMember: cell(row, s.layout.member),
			Category:   cell(row, s.layout.category),
			Project:    strings.TrimSpace(cell(row, s.layout.project)),
			Comment:    cell(row, s.layout.comment),
		})
	}
	return out
}

// WriteCell implements Sink.
func (s *Sheet) WriteCell(_ context.Context, row int, column, value string) error {
	col := headerIndex(s.Header, strings.ToLower(strings.TrimSpace(column)))
	if col < 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, column)
	}
	i := row - 2
	if i < 0 || i >= len(s.Rows) {
		return fmt.Errorf("row %d out of range", row)
	}
	s.Rows[i][col] = value
	return nil
}

// WriteCSV writes the header and rows back out.
func (s *Sheet) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(s.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(s.Rows); err != nil {
		return err
	}
	return cw.Error()
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
