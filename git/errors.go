package git

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotGitRepository indicates the working directory is not inside a git work tree
	ErrNotGitRepository = errors.New("not a git repository")

	// ErrGitOperationFailed indicates a git command exited with an error
	ErrGitOperationFailed = errors.New("git operation failed")
)

// GitError describes a failed git invocation together with the tool's own error output
type GitError struct {
	Operation string
	Args      []string
	Err       error
	Output    string
}

// Error implements the error interface
func (e *GitError) Error() string {
	msg := fmt.Sprintf("git %s failed", e.Operation)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg = fmt.Sprintf("%s: %s", msg, out)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for use with errors.Is and errors.As
func (e *GitError) Unwrap() error {
	return e.Err
}

// NewGitError creates a GitError whose chain includes ErrGitOperationFailed
func NewGitError(operation string, args []string, err error, output string) *GitError {
	wrapped := ErrGitOperationFailed
	if err != nil {
		wrapped = fmt.Errorf("%w: %w", ErrGitOperationFailed, err)
	}
	return &GitError{
		Operation: operation,
		Args:      args,
		Err:       wrapped,
		Output:    output,
	}
}
