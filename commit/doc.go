// Package commit drives version control through the planned batches.
//
// Each batch is staged, committed and pushed before the next one begins, so the
// commit of batch i is an ancestor of the commit of batch i+1. A failing step
// ends that batch only; by default the run continues with the next batch.
// Options.StopOnFailure turns that into an abort for callers who need the remote
// history to stay contiguous.
package commit
