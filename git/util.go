package git

import (
	"context"
	"fmt"
	"strings"
)

// Validate checks that the repository directory is inside a git work tree
func (r *Repository) Validate(ctx context.Context) error {
	output, err := r.run(ctx, "rev-parse", "--is-inside-work-tree")
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		return fmt.Errorf("%w: %s: %v", ErrNotGitRepository, r.dir, err)
	}
	if strings.TrimSpace(output) != "true" {
		return fmt.Errorf("%w: %s", ErrNotGitRepository, r.dir)
	}
	return nil
}

// IsRepository reports whether dir is inside a git work tree
func IsRepository(ctx context.Context, dir string) bool {
	repo, err := NewRepository(dir)
	if err != nil {
		return false
	}
	return repo.Validate(ctx) == nil
}

// GitDir returns the absolute path of the repository's git directory
func (r *Repository) GitDir(ctx context.Context) (string, error) {
	output, err := r.run(ctx, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(output), nil
}
