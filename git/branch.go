package git

import (
	"context"
	"errors"
	"strings"
)

// CurrentBranch returns the name of the checked-out branch
func (r *Repository) CurrentBranch(ctx context.Context) (string, error) {
	output, err := r.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(output), nil
}

// RemoteExists reports whether a remote with the given name is configured
func (r *Repository) RemoteExists(ctx context.Context, remote string) (bool, error) {
	_, err := r.run(ctx, "remote", "get-url", remote)
	if err != nil {
		// git exits with code 2 when the remote is missing, which is not an error for our purposes
		var exitErr interface{ ExitCode() int }
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 2 {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
