package git

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/rubyist/tracerx"
)

func init() {
	tracerx.DefaultKey = "GIT"
	tracerx.Prefix = "trace git-batch-push: "
}

// CommandExecutor runs external commands. Tests substitute a fake.
type CommandExecutor interface {
	// Run executes name with args in dir and returns stdout, stderr and any error
	Run(ctx context.Context, dir string, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecExecutor is the default CommandExecutor backed by os/exec
type ExecExecutor struct{}

// NewExecExecutor creates a new ExecExecutor
func NewExecExecutor() *ExecExecutor {
	return &ExecExecutor{}
}

// Run implements CommandExecutor.Run. Each invocation is traced when GIT_TRACE is set.
func (e *ExecExecutor) Run(ctx context.Context, dir string, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	tracerx.Printf("exec: %s %s", name, strings.Join(args, " "))
	start := time.Now()
	err := cmd.Run()
	tracerx.PerformanceSince(name+" "+firstArg(args), start)
	if err != nil {
		tracerx.Printf("exec failed: %s %s: %v", name, firstArg(args), err)
	}

	return stdout.Bytes(), stderr.Bytes(), err
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
