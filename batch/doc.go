// Package batch partitions a list of files into size-bounded batches.
//
// The planner is pure: it performs no I/O and returns the same plan for the
// same input and cap. Files larger than the cap are reported in Plan.Skipped
// and never placed in a batch.
package batch
