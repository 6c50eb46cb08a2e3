package git

import (
	"context"
	"fmt"
)

// call records a single command invocation seen by mockExecutor
type call struct {
	Dir  string
	Name string
	Args []string
}

// exitError mimics exec.ExitError for tests
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func (e *exitError) ExitCode() int { return e.code }

// mockExecutor is a CommandExecutor that records calls instead of running them
type mockExecutor struct {
	Calls  []call
	Stdout string
	RunFn  func(ctx context.Context, args []string) (stdout, stderr []byte, err error)
}

func (m *mockExecutor) Run(ctx context.Context, dir string, name string, args ...string) ([]byte, []byte, error) {
	m.Calls = append(m.Calls, call{Dir: dir, Name: name, Args: args})
	if m.RunFn != nil {
		return m.RunFn(ctx, args)
	}
	return []byte(m.Stdout), nil, nil
}

func newTestRepository(dir string, m *mockExecutor) *Repository {
	repo, err := NewRepositoryWithExecutor(dir, m)
	if err != nil {
		panic(err)
	}
	return repo
}
