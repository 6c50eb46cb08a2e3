package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git_batch_push/batch"
	"git_batch_push/config"
	"git_batch_push/git"
	"git_batch_push/log"
)

const gib = int64(1024 * 1024 * 1024)

// fakeRepository is an in-memory repository that records every mutating call
type fakeRepository struct {
	entries       []batch.Entry
	entriesErr    error
	validateErr   error
	branch        string
	remoteMissing bool
	gitDir        string

	failPushOn int // 1-based batch number whose push fails
	batch      int
	calls      []string
}

func (f *fakeRepository) Validate(ctx context.Context) error { return f.validateErr }

func (f *fakeRepository) Entries(ctx context.Context) ([]batch.Entry, error) {
	return f.entries, f.entriesErr
}

func (f *fakeRepository) GitDir(ctx context.Context) (string, error) { return f.gitDir, nil }

func (f *fakeRepository) CurrentBranch(ctx context.Context) (string, error) { return f.branch, nil }

func (f *fakeRepository) RemoteExists(ctx context.Context, remote string) (bool, error) {
	return !f.remoteMissing, nil
}

func (f *fakeRepository) Stage(ctx context.Context, paths []string) error {
	f.batch++
	f.calls = append(f.calls, "stage "+strings.Join(paths, ","))
	return nil
}

func (f *fakeRepository) Commit(ctx context.Context, message string) error {
	f.calls = append(f.calls, "commit "+message)
	return nil
}

func (f *fakeRepository) Push(ctx context.Context, remote, branch string) error {
	f.calls = append(f.calls, "push "+remote+" "+branch)
	if f.batch == f.failPushOn {
		return git.NewGitError("push", []string{remote, branch}, errors.New("exit status 1"), "remote: error: File too large")
	}
	return nil
}

// runCommand executes the root command against repo and returns stdout and stderr
func runCommand(t *testing.T, repo *fakeRepository, args ...string) (string, string, error) {
	t.Helper()

	original := openRepository
	openRepository = func(dir string) (repository, error) { return repo, nil }
	t.Cleanup(func() { openRepository = original })

	var out, errOut bytes.Buffer
	log.SetOutput(&out, &errOut)
	t.Cleanup(log.ResetOutput)

	rootCmd := NewRootCmd()
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yml")}, args...))
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func newFakeRepository(t *testing.T, sizes ...int64) *fakeRepository {
	repo := &fakeRepository{branch: "master", gitDir: t.TempDir()}
	for i, s := range sizes {
		repo.entries = append(repo.entries, batch.Entry{Path: "file" + string(rune('1'+i)), Size: s})
	}
	return repo
}

func loadRuns(t *testing.T, repo *fakeRepository) []config.RunRecord {
	t.Helper()
	history, err := config.LoadHistory(config.GetHistoryFilePath(repo.gitDir))
	require.NoError(t, err)
	return history.Runs
}

func TestRootCmd_PushesBatchesInOrder(t *testing.T) {
	repo := newFakeRepository(t, gib, gib, gib)

	out, _, err := runCommand(t, repo)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"stage file1,file2",
		"commit Auto-commit 2 files",
		"push origin master",
		"stage file3",
		"commit Auto-commit 1 files",
		"push origin master",
	}, repo.calls)
	assert.Contains(t, out, "Added file1 to batch 1, batch size now 1.00 GB")
	assert.Contains(t, out, "[SUCCESS] Batch 2/2 committed and pushed to origin/master")
	assert.Contains(t, out, "2 pushed, 0 failed, 0 skipped")

	runs := loadRuns(t, repo)
	require.Len(t, runs, 1)
	require.Len(t, runs[0].Batches, 2)
	assert.Equal(t, "pushed", runs[0].Batches[1].Status)
}

func TestRootCmd_NoUntrackedFiles(t *testing.T) {
	repo := newFakeRepository(t)

	out, _, err := runCommand(t, repo)
	require.NoError(t, err)

	assert.Empty(t, repo.calls)
	assert.Contains(t, out, "No untracked files found")
	assert.Empty(t, loadRuns(t, repo))
}

func TestRootCmd_AllFilesOversized(t *testing.T) {
	repo := newFakeRepository(t, 3*gib)

	out, _, err := runCommand(t, repo)
	require.NoError(t, err)

	assert.Empty(t, repo.calls)
	assert.Contains(t, out, "[WARN] File file1 is 3.00 GB, larger than the 2.00 GB cap, skipping")
	assert.Contains(t, out, "nothing to commit")
}

func TestRootCmd_FailedBatchDoesNotStopRun(t *testing.T) {
	repo := newFakeRepository(t, gib, gib, gib)
	repo.failPushOn = 1

	out, errOut, err := runCommand(t, repo)
	require.NoError(t, err, "batch failures are reported, not returned")

	assert.Len(t, repo.calls, 6)
	assert.Contains(t, errOut, "[E204] Batch 1/2 failed during push")
	assert.Contains(t, errOut, "File too large")
	assert.Contains(t, out, "1 pushed, 1 failed, 0 skipped")

	runs := loadRuns(t, repo)
	require.Len(t, runs, 1)
	assert.Equal(t, "failed", runs[0].Batches[0].Status)
	assert.Equal(t, "push", runs[0].Batches[0].Step)
}

func TestRootCmd_StopOnFailure(t *testing.T) {
	repo := newFakeRepository(t, gib, gib, gib)
	repo.failPushOn = 1

	out, _, err := runCommand(t, repo, "--stop-on-failure")
	require.NoError(t, err)

	assert.Len(t, repo.calls, 3)
	assert.Contains(t, out, "Batch 2/2 skipped")
	assert.Contains(t, out, "0 pushed, 1 failed, 1 skipped")
}

func TestRootCmd_DryRun(t *testing.T) {
	repo := newFakeRepository(t, gib, gib, gib)
	repo.remoteMissing = true

	out, _, err := runCommand(t, repo, "--dry-run")
	require.NoError(t, err)

	assert.Empty(t, repo.calls)
	assert.Contains(t, out, "Batch 1/2 would commit 2 files")
	assert.Contains(t, out, "Dry run: 2 batches, 3 files planned")
	assert.Empty(t, loadRuns(t, repo))
}

func TestRootCmd_FlagOverrides(t *testing.T) {
	repo := newFakeRepository(t, 10, 10, 10)
	repo.branch = "main"

	_, _, err := runCommand(t, repo, "--cap-bytes", "20", "--branch", "main", "--remote", "upstream", "--message", "Upload %d assets")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"stage file1,file2",
		"commit Upload 2 assets",
		"push upstream main",
		"stage file3",
		"commit Upload 1 assets",
		"push upstream main",
	}, repo.calls)
}

func TestRootCmd_BranchMismatchWarning(t *testing.T) {
	repo := newFakeRepository(t, 10)
	repo.branch = "feature"

	out, _, err := runCommand(t, repo)
	require.NoError(t, err)
	assert.Contains(t, out, "[WARN] Current branch is feature, batches will be pushed to origin/master")
}

func TestRootCmd_Errors(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(r *fakeRepository)
		args     []string
		wantCode string
	}{
		{"InvalidCap", nil, []string{"--cap-bytes", "0"}, log.ErrConfigInvalid},
		{"InvalidMessage", nil, []string{"--message", "no count"}, log.ErrConfigInvalid},
		{"NotARepository", func(r *fakeRepository) { r.validateErr = git.ErrNotGitRepository }, nil, log.ErrRepoNotGit},
		{"MissingRemote", func(r *fakeRepository) { r.remoteMissing = true }, nil, log.ErrGitRemoteFailed},
		{"ListFailure", func(r *fakeRepository) { r.entriesErr = errors.New("boom") }, nil, log.ErrGitListFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepository(t, 10)
			if tt.mutate != nil {
				tt.mutate(repo)
			}

			_, _, err := runCommand(t, repo, tt.args...)
			require.Error(t, err)

			var coded *log.CodedError
			require.True(t, errors.As(err, &coded))
			assert.Equal(t, tt.wantCode, coded.Code)
			assert.Empty(t, repo.calls)
		})
	}
}

func TestRootCmd_MalformedConfig(t *testing.T) {
	repo := newFakeRepository(t, 10)
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("cap_bytes: [1\n"), 0o644))

	_, _, err := runCommand(t, repo, "--config", path)

	var coded *log.CodedError
	require.True(t, errors.As(err, &coded))
	assert.Equal(t, log.ErrConfigParseFailed, coded.Code)
	assert.Empty(t, repo.calls)
}

func TestRootCmd_RejectsArguments(t *testing.T) {
	_, _, err := runCommand(t, newFakeRepository(t), "extra")
	assert.Error(t, err)
}

func TestStatusCmd(t *testing.T) {
	repo := newFakeRepository(t, gib, 3*gib, gib, gib)

	out, _, err := runCommand(t, repo, "status", "--files")
	require.NoError(t, err)

	assert.Empty(t, repo.calls)
	assert.Contains(t, out, "4 untracked files, 6.00 GB total, cap 2.00 GB per batch")
	assert.Contains(t, out, `"Auto-commit 2 files"`)
	assert.Contains(t, out, "file3")
	assert.Contains(t, out, "[WARN] 2 batches to push to origin/master, 1 files too large to push")
	assert.NotContains(t, out, "Added file1", "status does not print per-file additions")
}

func TestHistoryCmd(t *testing.T) {
	repo := newFakeRepository(t, gib, gib, gib)
	repo.failPushOn = 2

	_, _, err := runCommand(t, repo)
	require.NoError(t, err)

	out, _, err := runCommand(t, repo, "history")
	require.NoError(t, err)

	assert.Contains(t, out, "[0] ")
	assert.Contains(t, out, "-> origin/master")
	assert.Contains(t, out, "2 batches: 1 pushed, 1 failed, 0 skipped; 2 files, 2.00 GB pushed")
	assert.Contains(t, out, "batch 2 failed during push")
}

func TestHistoryCmd_Empty(t *testing.T) {
	out, _, err := runCommand(t, newFakeRepository(t), "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No run history found.")
}
