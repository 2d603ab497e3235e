package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jask/projectmatch/internal/database/repository"
	"github.com/jask/projectmatch/internal/matcher"
)

var (
	// ErrEmptyCatalog is returned when there are no projects to match against.
	ErrEmptyCatalog = errors.New("no projects loaded")
	// ErrNoRecords is returned when the log is empty.
	ErrNoRecords = errors.New("no log data loaded")
)

// RunOptions controls one reconciliation pass.
type RunOptions struct {
	Threshold  float64
	DryRun     bool
	BatchSize  int
	BatchDelay time.Duration
	SampleSize int
	// Report receives the human readable summary; nil discards it.
	Report     io.Writer
	OnProgress func(Progress)
}

// RunResult is what a pass produced. Apply is nil for dry runs.
type RunResult struct {
	RunID string
	Plan  Plan
	Apply *ApplyResult
}

// ReconcileService fills in missing projects on the stored log.
type ReconcileService struct {
	Log      *repository.LogEntryRepo
	Projects *repository.ProjectRepo
	Mappings *repository.MappingRepo
	Runs     *repository.RunRepo
	Logger   *log.Logger
}

// Run loads the catalog, log and saved mappings, plans updates, reports them
// and, unless DryRun, writes them back. Every run is recorded.
func (s *ReconcileService) Run(ctx context.Context, opts RunOptions) (RunResult, error) {
	if err := matcher.ValidateThreshold(opts.Threshold); err != nil {
		return RunResult{}, err
	}
	names, err := s.Projects.Names(ctx)
	if err != nil {
		return RunResult{}, fmt.Errorf("load projects: %w", err)
	}
	entries, err := s.Log.List(ctx)
	if err != nil {
		return RunResult{}, fmt.Errorf("load log: %w", err)
	}
	var mappings Mappings
	if s.Mappings != nil {
		saved, err := s.Mappings.List(ctx)
		if err != nil {
			return RunResult{}, fmt.Errorf("load mappings: %w", err)
		}
		mappings = NewMappingSet(saved)
	}

	res, err := ReconcileRecords(ctx, recordsFromEntries(entries), names, mappings, s.Log, opts, s.Logger)
	if err != nil && res.Plan.Scanned == 0 {
		return res, err
	}
	res.RunID = uuid.NewString()
	if s.Runs != nil {
		if rerr := s.Runs.Add(ctx, buildRun(res, opts)); rerr != nil {
			return res, errors.Join(err, fmt.Errorf("record run: %w", rerr))
		}
	}
	return res, err
}

// ReconcileRecords is the storage independent pass used by Run and by the CSV
// workflow. sink is only touched when opts.DryRun is false.
func ReconcileRecords(ctx context.Context, records []LogRecord, projects []string, mappings Mappings, sink Sink, opts RunOptions, logger *log.Logger) (RunResult, error) {
	planner, err := NewPlanner(projects, opts.Threshold, mappings)
	if err != nil {
		return RunResult{}, err
	}
	if planner.Matcher.Catalog().Len() == 0 {
		return RunResult{}, ErrEmptyCatalog
	}
	if len(records) == 0 {
		return RunResult{}, ErrNoRecords
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	logger.Printf("matching %d log entries against %d projects (threshold %.2f)",
		len(records), planner.Matcher.Catalog().Len(), opts.Threshold)

	plan := planner.Plan(records)
	res := RunResult{Plan: plan}

	report := opts.Report
	if report == nil {
		report = io.Discard
	}
	samples := opts.SampleSize
	if samples < 0 {
		samples = 0
	}
	if err := WriteReport(report, plan, samples); err != nil {
		return res, fmt.Errorf("write report: %w", err)
	}

	if opts.DryRun {
		fmt.Fprintln(report, "\nDRY RUN MODE: no changes applied.")
		return res, nil
	}
	if len(plan.Proposals) == 0 {
		return res, nil
	}
	applier := &Applier{
		Sink:       sink,
		BatchSize:  opts.BatchSize,
		Delay:      opts.BatchDelay,
		OnProgress: opts.OnProgress,
		Logger:     logger,
	}
	applied, err := applier.Apply(ctx, plan)
	res.Apply = &applied
	if werr := WriteFailures(report, applied); werr != nil && err == nil {
		err = fmt.Errorf("write report: %w", werr)
	}
	return res, err
}

func buildRun(res RunResult, opts RunOptions) repository.Run {
	run := repository.Run{
		ID:        res.RunID,
		DryRun:    opts.DryRun,
		Threshold: opts.Threshold,
		Scanned:   res.Plan.Scanned,
		Proposed:  len(res.Plan.Proposals),
	}
	failed := map[int]error{}
	if res.Apply != nil {
		run.Applied = res.Apply.Applied
		run.Failed = len(res.Apply.Failed)
		for _, f := range res.Apply.Failed {
			failed[f.Proposal.Record.Row] = f.Err
		}
	}
	written := 0
	if res.Apply != nil {
		written = res.Apply.Applied + len(res.Apply.Failed)
	}
	for i, p := range res.Plan.Proposals {
		rp := repository.RunProposal{
			Seq:        i + 1,
			Row:        p.Record.Row,
			OldProject: p.OldProject,
			NewProject: p.NewProject,
			Tier:       p.Tier.String(),
			Status:     repository.StatusProposed,
		}
		if i < written {
			rp.Status = repository.StatusApplied
			if err, ok := failed[p.Record.Row]; ok {
				msg := err.Error()
				rp.Status = repository.StatusFailed
				rp.Error = &msg
			}
		}
		run.Proposals = append(run.Proposals, rp)
	}
	return run
}
