package commit

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"git_batch_push/batch"
)

// DefaultMessageFormat is used when Options.MessageFormat is empty
const DefaultMessageFormat = "Auto-commit %d files"

// Committer is the narrow view of version control the driver needs
type Committer interface {
	Stage(ctx context.Context, paths []string) error
	Commit(ctx context.Context, message string) error
	Push(ctx context.Context, remote, branch string) error
}

// Step names the stage of a batch that was running when it failed
type Step string

const (
	StepStage  Step = "stage"
	StepCommit Step = "commit"
	StepPush   Step = "push"
)

// Status is the outcome of a single batch
type Status string

const (
	StatusPushed  Status = "pushed"  // stage, commit and push all succeeded
	StatusFailed  Status = "failed"  // one of the steps returned an error
	StatusSkipped Status = "skipped" // never attempted
	StatusPlanned Status = "planned" // would have been attempted in a dry run
)

// Options controls how batches are committed and pushed
type Options struct {
	Remote        string
	Branch        string
	MessageFormat string
	DryRun        bool

	// StopOnFailure marks every batch after a failed one as skipped instead of attempting it
	StopOnFailure bool
}

// Result records what happened to one batch
type Result struct {
	Index   int
	Batch   batch.Batch
	Message string
	Status  Status
	Step    Step
	Err     error
}

// Report collects the results of a run in batch order
type Report struct {
	Results []Result
}

// Succeeded returns the number of pushed batches
func (r Report) Succeeded() int { return r.count(StatusPushed) }

// Failed returns the number of failed batches
func (r Report) Failed() int { return r.count(StatusFailed) }

// Skipped returns the number of batches that were not attempted
func (r Report) Skipped() int { return r.count(StatusSkipped) }

func (r Report) count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// Planned returns the number of batches reported by a dry run
func (r Report) Planned() int { return r.count(StatusPlanned) }

// OK reports whether no batch failed or was skipped
func (r Report) OK() bool {
	return r.Failed() == 0 && r.Skipped() == 0
}

// Driver commits and pushes planned batches one at a time
type Driver struct {
	committer Committer
	opts      Options
	logger    zerolog.Logger
	onResult  func(Result)
	onStart   func(index int, b batch.Batch)
}

// NewDriver creates a driver for the given committer
func NewDriver(committer Committer, opts Options, logger zerolog.Logger) *Driver {
	if opts.MessageFormat == "" {
		opts.MessageFormat = DefaultMessageFormat
	}
	return &Driver{
		committer: committer,
		opts:      opts,
		logger:    logger,
	}
}

// OnBatchStart registers a callback invoked before a batch is staged
func (d *Driver) OnBatchStart(fn func(index int, b batch.Batch)) *Driver {
	d.onStart = fn
	return d
}

// OnResult registers a callback invoked after each batch finishes
func (d *Driver) OnResult(fn func(Result)) *Driver {
	d.onResult = fn
	return d
}

// Message returns the commit message for a batch
func (d *Driver) Message(b batch.Batch) string {
	return fmt.Sprintf(d.opts.MessageFormat, b.Len())
}

// Run processes batches strictly in order. A failed batch is recorded and, unless
// StopOnFailure is set, the next batch is attempted. A cancelled context marks the
// remaining batches as skipped. Failed batches are neither retried nor rolled back.
func (d *Driver) Run(ctx context.Context, batches []batch.Batch) Report {
	report := Report{Results: make([]Result, 0, len(batches))}
	halted := false

	for i, b := range batches {
		res := Result{Index: i, Batch: b, Message: d.Message(b)}

		switch {
		case halted:
			res.Status = StatusSkipped
		case ctx.Err() != nil:
			res.Status = StatusSkipped
			res.Err = ctx.Err()
		case d.opts.DryRun:
			res.Status = StatusPlanned
		default:
			if d.onStart != nil {
				d.onStart(i, b)
			}
			res.Step, res.Err = d.process(ctx, i, b, res.Message)
			if res.Err != nil {
				res.Status = StatusFailed
				halted = d.opts.StopOnFailure
			} else {
				res.Status = StatusPushed
			}
		}

		report.Results = append(report.Results, res)
		if d.onResult != nil {
			d.onResult(res)
		}
	}

	d.logger.Debug().
		Int("batches", len(batches)).
		Int("pushed", report.Succeeded()).
		Int("failed", report.Failed()).
		Int("skipped", report.Skipped()).
		Msg("batch run finished")

	return report
}

// process runs stage, commit and push for one batch and returns the failing step
func (d *Driver) process(ctx context.Context, index int, b batch.Batch, message string) (Step, error) {
	log := d.logger.With().Int("batch", index+1).Int("files", b.Len()).Int64("bytes", b.Size()).Logger()

	log.Debug().Msg("staging batch")
	if err := d.committer.Stage(ctx, b.Paths()); err != nil {
		log.Debug().Err(err).Msg("stage failed")
		return StepStage, err
	}

	log.Debug().Str("message", message).Msg("committing batch")
	if err := d.committer.Commit(ctx, message); err != nil {
		log.Debug().Err(err).Msg("commit failed")
		return StepCommit, err
	}

	log.Debug().Str("remote", d.opts.Remote).Str("branch", d.opts.Branch).Msg("pushing batch")
	if err := d.committer.Push(ctx, d.opts.Remote, d.opts.Branch); err != nil {
		log.Debug().Err(err).Msg("push failed")
		return StepPush, err
	}

	return "", nil
}
