package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var (
	// ErrRowNotFound is returned when a write targets a row that does not exist.
	ErrRowNotFound = errors.New("log row not found")
	// ErrUnknownColumn is returned for writes to a column the log does not have.
	ErrUnknownColumn = errors.New("unknown log column")
)

// Writable log columns by sheet header name.
var logColumns = map[string]string{
	"date":        "date",
	"team member": "team_member",
	"team_member": "team_member",
	"category":    "category",
	"project":     "project",
	"comment":     "comment",
	"comments":    "comment",
}

// LogEntryRepo stores the imported time log.
type LogEntryRepo struct{ db *sql.DB }

func NewLogEntryRepo(db *sql.DB) *LogEntryRepo { return &LogEntryRepo{db: db} }

// Replace swaps the whole log for entries in one transaction.
func (r *LogEntryRepo) Replace(ctx context.Context, entries []LogEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM log_entries`); err != nil {
		_ = tx.Rollback()
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO log_entries(row_number, date, team_member, category, project, comment, updated_at)
	VALUES(?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.Row, e.Date, e.TeamMember, e.Category, e.Project, e.Comment); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("row %d: %w", e.Row, err)
		}
	}
	return tx.Commit()
}

// List returns all entries ordered by row.
func (r *LogEntryRepo) List(ctx context.Context) ([]LogEntry, error) {
	return r.query(ctx, `SELECT row_number, date, team_member, category, project, comment, updated_at FROM log_entries ORDER BY row_number ASC`)
}

// ListUnattributed returns entries with a blank project and a comment.
func (r *LogEntryRepo) ListUnattributed(ctx context.Context) ([]LogEntry, error) {
	return r.query(ctx, `
	SELECT row_number, date, team_member, category, project, comment, updated_at
	FROM log_entries WHERE TRIM(project) = '' AND TRIM(comment) <> ''
	ORDER BY row_number ASC`)
}

// Get returns the entry at row or nil.
func (r *LogEntryRepo) Get(ctx context.Context, row int) (*LogEntry, error) {
	out, err := r.query(ctx, `SELECT row_number, date, team_member, category, project, comment, updated_at FROM log_entries WHERE row_number = ?`, row)
	if err != nil || len(out) == 0 {
		return nil, err
	}
	return &out[0], nil
}

// WriteCell sets one column of one row. Columns are addressed by their sheet
// header name, case-insensitively.
func (r *LogEntryRepo) WriteCell(ctx context.Context, row int, column, value string) error {
	col, ok := logColumns[normalizeColumn(column)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	res, err := r.db.ExecContext(ctx, `UPDATE log_entries SET `+col+` = ?, updated_at = CURRENT_TIMESTAMP WHERE row_number = ?`, value, row)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrRowNotFound, row)
	}
	return nil
}

// Count returns the number of stored entries.
func (r *LogEntryRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM log_entries`).Scan(&n)
	return n, err
}

func (r *LogEntryRepo) query(ctx context.Context, q string, args ...interface{}) ([]LogEntry, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []LogEntry
	for rows.Next() {
		var e LogEntry
		if err := rows.Scan(&e.Row, &e.Date, &e.TeamMember, &e.Category, &e.Project, &e.Comment, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
