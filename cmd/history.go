package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"git_batch_push/commit"
	"git_batch_push/config"
	"git_batch_push/log"
)

// newHistoryCmd creates the history command
func newHistoryCmd(opts *options) *cobra.Command {
	var limit int

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List previous batch push runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryCmd(cmd, opts, limit)
		},
	}

	historyCmd.Flags().IntVarP(&limit, "limit", "l", 10, "Number of runs to show, 0 for all")
	return historyCmd
}

// runHistoryCmd is the main function for the history command
func runHistoryCmd(cmd *cobra.Command, opts *options, limit int) error {
	ctx := cmd.Context()

	repo, err := openValidRepository(ctx, opts)
	if err != nil {
		return err
	}

	gitDir, err := repo.GitDir(ctx)
	if err != nil {
		return log.NewError(log.ErrHistoryReadFailed, "Error locating git directory", err)
	}

	history, err := config.LoadHistory(config.GetHistoryFilePath(gitDir))
	if err != nil {
		return log.NewError(log.ErrHistoryReadFailed, "Error loading run history", err)
	}

	if len(history.Runs) == 0 {
		log.PrintInfo("No run history found.")
		return nil
	}

	log.PrintInfo("Run history:")
	log.PrintInfo("------------")

	shown := 0
	// Display history entries from newest to oldest
	for i := len(history.Runs) - 1; i >= 0; i-- {
		if limit > 0 && shown == limit {
			break
		}
		shown++

		run := history.Runs[i]
		historyIndex := len(history.Runs) - 1 - i

		log.PrintInfo(fmt.Sprintf("[%d] %s %s -> %s/%s", historyIndex, run.Timestamp, run.ID, run.Remote, run.Branch))
		log.PrintInfo("    " + summarizeRun(run))
		for _, b := range run.Batches {
			if b.Error != "" {
				log.PrintInfo(fmt.Sprintf("    batch %d %s during %s: %s", b.Index+1, b.Status, b.Step, b.Error))
			}
		}
	}

	return nil
}

func summarizeRun(run config.RunRecord) string {
	counts := map[string]int{}
	files := 0
	var bytes int64
	for _, b := range run.Batches {
		counts[b.Status]++
		if b.Status == string(commit.StatusPushed) {
			files += b.Files
			bytes += b.Bytes
		}
	}

	summary := fmt.Sprintf("%d batches: %d pushed, %d failed, %d skipped; %d files, %s pushed",
		len(run.Batches), counts[string(commit.StatusPushed)], counts[string(commit.StatusFailed)],
		counts[string(commit.StatusSkipped)], files, log.FormatBytes(bytes))
	if len(run.Skipped) > 0 {
		summary += fmt.Sprintf("; %d oversized files skipped", len(run.Skipped))
	}
	return summary
}
