package service

import (
	"context"
	"io"
	"log"
	"time"
)

const (
	DefaultBatchSize  = 10
	DefaultBatchDelay = time.Second
	// ProjectColumn is the sheet header the applier writes to.
	ProjectColumn = "Project"
)

// Sink receives cell writes. Rows use the same 1-based addressing as
// LogRecord.Row; columns are addressed by header name.
type Sink interface {
	WriteCell(ctx context.Context, row int, column, value string) error
}

// Progress is reported after every batch.
type Progress struct {
	Processed int
	Applied   int
	Failed    int
	Total     int
}

// FailedWrite pairs a proposal with the error its write returned.
type FailedWrite struct {
	Proposal Proposal
	Err      error
}

// ApplyResult summarizes an apply pass.
type ApplyResult struct {
	Applied int
	Failed  []FailedWrite
}

// Applier writes a plan to a sink in throttled batches. Writes are never
// retried; a failed write is recorded and the next proposal is attempted.
type Applier struct {
	Sink       Sink
	Column     string
	BatchSize  int
	Delay      time.Duration
	OnProgress func(Progress)
	Logger     *log.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

// Apply writes every proposal's new project. The only error it returns is a
// context error, checked between batches; the partial result is still valid.
func (a *Applier) Apply(ctx context.Context, plan Plan) (ApplyResult, error) {
	var res ApplyResult
	total := len(plan.Proposals)
	if total == 0 {
		return res, nil
	}
	size := a.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	column := a.Column
	if column == "" {
		column = ProjectColumn
	}
	logger := a.logger()
	logger.Printf("applying %d updates in batches of %d", total, size)

	processed := 0
	for start := 0; start < total; start += size {
		if start > 0 {
			if err := a.pause(ctx); err != nil {
				return res, err
			}
		}
		end := start + size
		if end > total {
			end = total
		}
		for _, prop := range plan.Proposals[start:end] {
			if err := a.Sink.WriteCell(ctx, prop.Record.Row, column, prop.NewProject); err != nil {
				logger.Printf("row %d: write %q failed: %v", prop.Record.Row, prop.NewProject, err)
				res.Failed = append(res.Failed, FailedWrite{Proposal: prop, Err: err})
			} else {
				res.Applied++
			}
			processed++
		}
		p := Progress{Processed: processed, Applied: res.Applied, Failed: len(res.Failed), Total: total}
		logger.Printf("progress: %d/%d entries updated", p.Applied, p.Total)
		if a.OnProgress != nil {
			a.OnProgress(p)
		}
	}
	return res, nil
}

func (a *Applier) pause(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if a.Delay <= 0 {
		return nil
	}
	sleep := a.sleep
	if sleep == nil {
		sleep = sleepContext
	}
	return sleep(ctx, a.Delay)
}

func (a *Applier) logger() *log.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return log.New(io.Discard, "", 0)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
