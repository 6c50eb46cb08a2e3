package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"git_batch_push/batch"
	"git_batch_push/commit"
	"git_batch_push/config"
	"git_batch_push/log"
)

// runPushCmd enumerates untracked files, plans batches and commits and pushes each one in order.
// Batch failures are reported but do not make the command fail.
func runPushCmd(cmd *cobra.Command, opts *options) error {
	ctx := cmd.Context()

	cfg, err := loadConfiguration(cmd, opts)
	if err != nil {
		return err
	}

	repo, err := openValidRepository(ctx, opts)
	if err != nil {
		return err
	}

	if !opts.dryRun {
		exists, err := repo.RemoteExists(ctx, cfg.Remote)
		if err != nil {
			return log.NewError(log.ErrGitRemoteFailed, "Error checking remote", err)
		}
		if !exists {
			return log.NewError(log.ErrGitRemoteFailed, fmt.Sprintf("Remote %q is not configured", cfg.Remote), nil)
		}
	}

	if branch, err := repo.CurrentBranch(ctx); err == nil && branch != cfg.Branch {
		log.PrintWarning(fmt.Sprintf("Current branch is %s, batches will be pushed to %s/%s", branch, cfg.Remote, cfg.Branch))
	}

	log.PrintOperation("Checking untracked files")
	entries, err := repo.Entries(ctx)
	if err != nil {
		return log.NewError(log.ErrGitListFailed, "Error listing untracked files", err)
	}

	if len(entries) == 0 {
		log.PrintSuccess("No untracked files found, nothing to commit.")
		return nil
	}
	log.PrintInfo(fmt.Sprintf("Found %s untracked files", log.FormatCount(int64(len(entries)))))

	plan, err := planBatches(cfg, entries, true)
	if err != nil {
		return err
	}

	if len(plan.Batches) == 0 {
		log.PrintWarning(fmt.Sprintf("All %d files exceed the %s cap, nothing to commit.", len(entries), log.FormatBytes(cfg.CapBytes)))
		return nil
	}

	driver := commit.NewDriver(repo, commit.Options{
		Remote:        cfg.Remote,
		Branch:        cfg.Branch,
		MessageFormat: cfg.MessageFormat,
		StopOnFailure: cfg.StopOnFailure,
		DryRun:        opts.dryRun,
	}, log.Logger())

	total := len(plan.Batches)
	driver.OnBatchStart(func(index int, b batch.Batch) {
		log.PrintInfo("")
		log.PrintOperation(fmt.Sprintf("Committing batch %d/%d: %d files, %s", index+1, total, b.Len(), log.FormatBytes(b.Size())))
	})
	driver.OnResult(func(r commit.Result) {
		printResult(r, total, cfg)
	})

	report := driver.Run(ctx, plan.Batches)

	log.PrintInfo("")
	printSummary(report, plan)

	if !opts.dryRun {
		// The history is written even after an interrupt
		recordRun(context.WithoutCancel(ctx), repo, cfg, report, plan)
	}

	if err := ctx.Err(); err != nil {
		return log.NewError(log.ErrInterrupted, "Run interrupted", err)
	}
	return nil
}

// planBatches plans entries under the configured cap, printing each decision when verbose is set
func planBatches(cfg *config.Configuration, entries []batch.Entry, verbose bool) (batch.Plan, error) {
	planner, err := batch.NewPlanner(cfg.CapBytes)
	if err != nil {
		return batch.Plan{}, log.NewError(log.ErrConfigInvalid, "Invalid batch size", err)
	}

	planner.WithObserver(func(e batch.Event) {
		switch e.Kind {
		case batch.EntrySkipped:
			log.PrintWarning(fmt.Sprintf("File %s is %s, larger than the %s cap, skipping", e.Entry.Path, log.FormatBytes(e.Entry.Size), log.FormatBytes(cfg.CapBytes)))
		case batch.EntryAdded:
			if verbose {
				log.PrintInfo(fmt.Sprintf("Added %s to batch %d, batch size now %s", e.Entry.Path, e.BatchIndex+1, log.FormatBytes(e.BatchSize)))
			}
		case batch.BatchClosed:
			logger := log.Logger()
			logger.Debug().Int("batch", e.BatchIndex+1).Int64("bytes", e.BatchSize).Msg("batch planned")
		}
	})

	return planner.Plan(entries), nil
}

func printResult(r commit.Result, total int, cfg *config.Configuration) {
	label := fmt.Sprintf("Batch %d/%d", r.Index+1, total)

	switch r.Status {
	case commit.StatusPushed:
		log.PrintSuccess(fmt.Sprintf("%s committed and pushed to %s/%s (%s)", label, cfg.Remote, cfg.Branch, r.Message))
	case commit.StatusPlanned:
		log.PrintInfo(fmt.Sprintf("%s would commit %d files, %s (%s)", label, r.Batch.Len(), log.FormatBytes(r.Batch.Size()), r.Message))
	case commit.StatusSkipped:
		log.PrintWarning(fmt.Sprintf("%s skipped: %d files not committed", label, r.Batch.Len()))
	case commit.StatusFailed:
		log.PrintError(stepErrorCode(r.Step), fmt.Sprintf("%s failed during %s", label, r.Step), r.Err)
	}
}

func stepErrorCode(step commit.Step) string {
	switch step {
	case commit.StepStage:
		return log.ErrGitStageFailed
	case commit.StepCommit:
		return log.ErrGitCommitFailed
	case commit.StepPush:
		return log.ErrGitPushFailed
	default:
		return log.ErrOperationFailed
	}
}

func printSummary(report commit.Report, plan batch.Plan) {
	if len(plan.Skipped) > 0 {
		log.PrintWarning(fmt.Sprintf("%d files skipped for exceeding the size cap", len(plan.Skipped)))
	}

	planned := report.Planned()
	if planned > 0 {
		log.PrintInfo(fmt.Sprintf("Dry run: %d batches, %s files planned", planned, log.FormatCount(int64(plan.FileCount()))))
		return
	}

	log.PrintOperationResult("Batch push", report.OK())
	log.PrintInfo(fmt.Sprintf("%d pushed, %d failed, %d skipped", report.Succeeded(), report.Failed(), report.Skipped()))
}

// recordRun appends the run to the history file. Failures only produce a warning.
func recordRun(ctx context.Context, repo repository, cfg *config.Configuration, report commit.Report, plan batch.Plan) {
	gitDir, err := repo.GitDir(ctx)
	if err != nil {
		log.PrintWarning(log.FormatError(log.ErrHistoryWriteFailed, "Could not locate git directory for history", err))
		return
	}

	run := config.NewRunRecord(cfg)
	for _, r := range report.Results {
		rec := config.BatchRecord{
			Index:  r.Index,
			Files:  r.Batch.Len(),
			Bytes:  r.Batch.Size(),
			Status: string(r.Status),
			Step:   string(r.Step),
		}
		if r.Err != nil {
			rec.Error = r.Err.Error()
		}
		run.Batches = append(run.Batches, rec)
	}
	for _, e := range plan.Skipped {
		run.Skipped = append(run.Skipped, e.Path)
	}

	if err := config.AppendRun(config.GetHistoryFilePath(gitDir), run); err != nil {
		log.PrintWarning(log.FormatError(log.ErrHistoryWriteFailed, "Could not save run history", err))
	}
}
