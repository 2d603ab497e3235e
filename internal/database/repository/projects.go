package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
)

// ProjectRepo stores the project catalog.
type ProjectRepo struct{ db *sql.DB }

func NewProjectRepo(db *sql.DB) *ProjectRepo { return &ProjectRepo{db: db} }

// ProjectID derives a stable id from the project name.
func ProjectID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("project:"+strings.TrimSpace(name))).String()
}

// Upsert inserts the project or refreshes its sort order.
func (r *ProjectRepo) Upsert(ctx context.Context, p Project) error {
	if p.ID == "" {
		p.ID = ProjectID(p.Name)
	}
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO projects(id, name, sort_order, created_at)
	VALUES(?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(name) DO UPDATE SET sort_order = excluded.sort_order
	`, p.ID, strings.TrimSpace(p.Name), p.SortOrder)
	return err
}

// List returns projects in catalog order.
func (r *ProjectRepo) List(ctx context.Context) ([]Project, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, sort_order, created_at FROM projects ORDER BY sort_order ASC, name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.SortOrder, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Names returns just the project names in catalog order.
func (r *ProjectRepo) Names(ctx context.Context) ([]string, error) {
	projects, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(projects))
	for _, p := range projects {
		out = append(out, p.Name)
	}
	return out, nil
}
