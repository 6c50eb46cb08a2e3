package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"git_batch_push/batch"
)

// Repository runs git commands against a single working tree
type Repository struct {
	dir      string
	executor CommandExecutor
}

// NewRepository creates a Repository for dir using the real git binary
func NewRepository(dir string) (*Repository, error) {
	return NewRepositoryWithExecutor(dir, NewExecExecutor())
}

// NewRepositoryWithExecutor creates a Repository with a custom command executor
func NewRepositoryWithExecutor(dir string, executor CommandExecutor) (*Repository, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	return &Repository{dir: absPath, executor: executor}, nil
}

// Dir returns the absolute working directory of the repository
func (r *Repository) Dir() string {
	return r.dir
}

// UntrackedFiles lists files that are neither tracked nor ignored, in the order git reports them
func (r *Repository) UntrackedFiles(ctx context.Context) ([]string, error) {
	output, err := r.run(ctx, "ls-files", "-z", "--others", "--exclude-standard")
	if err != nil {
		return nil, err
	}

	var files []string
	for _, name := range strings.Split(output, "\x00") {
		if name == "" {
			continue
		}
		files = append(files, name)
	}
	return files, nil
}

// FileSize returns the size in bytes of path relative to the repository, or 0 if it does not exist
func (r *Repository) FileSize(path string) int64 {
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.dir, path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// Entries combines UntrackedFiles and FileSize into planner input
func (r *Repository) Entries(ctx context.Context) ([]batch.Entry, error) {
	files, err := r.UntrackedFiles(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]batch.Entry, len(files))
	for i, f := range files {
		entries[i] = batch.Entry{Path: f, Size: r.FileSize(f)}
	}
	return entries, nil
}

// Stage adds exactly the given paths to the index. The paths are handed to git
// through a temporary NUL-separated pathspec file so large batches do not hit
// argument length limits. Each path is marked literal so glob characters in
// file names match only that file.
func (r *Repository) Stage(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	tmp, err := os.CreateTemp("", "git-batch-push-*.txt")
	if err != nil {
		return fmt.Errorf("failed to create pathspec file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(pathspecFile(paths)); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write pathspec file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close pathspec file: %w", err)
	}

	_, err = r.run(ctx, "add", "--pathspec-from-file="+tmp.Name(), "--pathspec-file-nul")
	return err
}

func pathspecFile(paths []string) string {
	var b strings.Builder
	for _, p := range paths {
		b.WriteString(":(literal)")
		b.WriteString(p)
		b.WriteByte(0)
	}
	return b.String()
}

// Commit records the staged changes with the given message
func (r *Repository) Commit(ctx context.Context, message string) error {
	_, err := r.run(ctx, "commit", "-m", message)
	return err
}

// Push pushes the checked-out commit to branch on remote
func (r *Repository) Push(ctx context.Context, remote, branch string) error {
	_, err := r.run(ctx, "push", remote, "HEAD:refs/heads/"+branch)
	return err
}

// run executes a git subcommand in the repository and returns its stdout
func (r *Repository) run(ctx context.Context, args ...string) (string, error) {
	stdout, stderr, err := r.executor.Run(ctx, r.dir, "git", args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("git %s interrupted: %w", args[0], ctxErr)
		}
		return "", NewGitError(args[0], args[1:], err, string(stderr))
	}
	return string(stdout), nil
}
