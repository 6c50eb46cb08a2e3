package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"git_batch_push/log"
)

// newStatusCmd creates the status command
func newStatusCmd(opts *options) *cobra.Command {
	var showFiles bool

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show untracked files and the batches they would be pushed in",
		Long: `Show a quick overview of the untracked files in the working tree and how they
would be split into batches under the configured size cap. Nothing is staged,
committed or pushed.

Example:
  git-batch-push status
  git-batch-push status --files   # List the files in every batch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatusCmd(cmd, opts, showFiles)
		},
	}

	statusCmd.Flags().BoolVar(&showFiles, "files", false, "List the files in every batch")
	return statusCmd
}

// runStatusCmd is the main function for the status command
func runStatusCmd(cmd *cobra.Command, opts *options, showFiles bool) error {
	ctx := cmd.Context()

	cfg, err := loadConfiguration(cmd, opts)
	if err != nil {
		return err
	}

	repo, err := openValidRepository(ctx, opts)
	if err != nil {
		return err
	}

	entries, err := repo.Entries(ctx)
	if err != nil {
		return log.NewError(log.ErrGitListFailed, "Error listing untracked files", err)
	}

	if len(entries) == 0 {
		log.PrintSuccess("No untracked files, working tree has nothing to push.")
		return nil
	}

	var totalBytes int64
	for _, e := range entries {
		totalBytes += e.Size
	}

	plan, err := planBatches(cfg, entries, false)
	if err != nil {
		return err
	}

	log.PrintInfo(fmt.Sprintf("%s untracked files, %s total, cap %s per batch",
		log.FormatCount(int64(len(entries))), log.FormatBytes(totalBytes), log.FormatBytes(cfg.CapBytes)))
	log.PrintInfo("")

	for i, b := range plan.Batches {
		log.PrintInfo(fmt.Sprintf("Batch %-4d %6d files  %10s  %q", i+1, b.Len(), log.FormatBytes(b.Size()), cfg.CommitMessage(b.Len())))
		if showFiles {
			for _, e := range b.Entries {
				log.PrintInfo(fmt.Sprintf("    %-60s %10s", e.Path, log.FormatBytes(e.Size)))
			}
		}
	}

	log.PrintInfo("")
	if len(plan.Skipped) > 0 {
		log.PrintWarning(fmt.Sprintf("%d batches to push to %s/%s, %d files too large to push", len(plan.Batches), cfg.Remote, cfg.Branch, len(plan.Skipped)))
	} else {
		log.PrintSuccess(fmt.Sprintf("%d batches to push to %s/%s", len(plan.Batches), cfg.Remote, cfg.Branch))
	}
	return nil
}
