package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jask/projectmatch/internal/textnorm"
)

// MappingKey identifies a mapping: the normalized comment and the lowercased
// category. Comments that normalize alike share one mapping.
func MappingKey(comment, category string) string {
	return textnorm.Normalize(comment) + "|" + strings.ToLower(strings.TrimSpace(category))
}

// MappingRepo persists comment to project decisions between runs.
type MappingRepo struct{ db *sql.DB }

func NewMappingRepo(db *sql.DB) *MappingRepo { return &MappingRepo{db: db} }

// Set stores or replaces a mapping. A mapping whose key matches an existing
// one replaces it, spelling included.
func (r *MappingRepo) Set(ctx context.Context, m Mapping) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO project_mappings(match_key, comment, category, project, updated_at)
	VALUES(?, ?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(match_key) DO UPDATE SET
		comment = excluded.comment,
		category = excluded.category,
		project = excluded.project,
		updated_at = CURRENT_TIMESTAMP
	`, MappingKey(m.Comment, m.Category), strings.TrimSpace(m.Comment), strings.TrimSpace(m.Category), strings.TrimSpace(m.Project))
	return err
}

// Delete forgets the mapping with the same key as comment and category and
// reports whether one existed.
func (r *MappingRepo) Delete(ctx context.Context, comment, category string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM project_mappings WHERE match_key = ?`, MappingKey(comment, category))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// List returns all mappings ordered by comment.
func (r *MappingRepo) List(ctx context.Context) ([]Mapping, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT comment, category, project, updated_at FROM project_mappings ORDER BY comment ASC, category ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Mapping
	for rows.Next() {
		var m Mapping
		if err := rows.Scan(&m.Comment, &m.Category, &m.Project, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
