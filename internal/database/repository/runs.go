package repository

import (
	"context"
	"database/sql"
)

// RunRepo records reconciliation runs and their proposals.
type RunRepo struct{ db *sql.DB }

func NewRunRepo(db *sql.DB) *RunRepo { return &RunRepo{db: db} }

// Add stores run together with its proposals.
func (r *RunRepo) Add(ctx context.Context, run Run) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
	INSERT INTO reconciliation_runs(id, dry_run, threshold, scanned, proposed, applied, failed, created_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, run.ID, run.DryRun, run.Threshold, run.Scanned, run.Proposed, run.Applied, run.Failed); err != nil {
		_ = tx.Rollback()
		return err
	}
	for _, p := range run.Proposals {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO run_proposals(run_id, seq, row_number, old_project, new_project, tier, status, error)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)
		`, run.ID, p.Seq, p.Row, p.OldProject, p.NewProject, p.Tier, p.Status, p.Error); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Get returns the run with its proposals, or nil when missing.
func (r *RunRepo) Get(ctx context.Context, id string) (*Run, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, dry_run, threshold, scanned, proposed, applied, failed, created_at FROM reconciliation_runs WHERE id = ?`, id)
	var run Run
	if err := row.Scan(&run.ID, &run.DryRun, &run.Threshold, &run.Scanned, &run.Proposed, &run.Applied, &run.Failed, &run.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `SELECT seq, row_number, old_project, new_project, tier, status, error FROM run_proposals WHERE run_id = ? ORDER BY seq ASC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var p RunProposal
		if err := rows.Scan(&p.Seq, &p.Row, &p.OldProject, &p.NewProject, &p.Tier, &p.Status, &p.Error); err != nil {
			return nil, err
		}
		run.Proposals = append(run.Proposals, p)
	}
	return &run, rows.Err()
}

// ListRecent returns the latest runs without proposals, newest first.
func (r *RunRepo) ListRecent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `SELECT id, dry_run, threshold, scanned, proposed, applied, failed, created_at FROM reconciliation_runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.DryRun, &run.Threshold, &run.Scanned, &run.Proposed, &run.Applied, &run.Failed, &run.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}
