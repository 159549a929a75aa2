package tool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Result is the outcome of running one invocation.
type Result struct {
	Invocation Invocation
	Stdout     string
	Stderr     string
	ExitCode   int // -1 when the process could not be started or was killed
	Duration   time.Duration
	Err        error
}

// OK reports whether the tool ran and exited zero.
func (r Result) OK() bool {
	return r.Err == nil && r.ExitCode == 0
}

// ErrorMessage returns the trimmed stderr, falling back to the error text.
func (r Result) ErrorMessage() string {
	if msg := strings.TrimSpace(r.Stderr); msg != "" {
		return msg
	}
	if r.Err != nil {
		return r.Err.Error()
	}
	return ""
}

// waitDelay bounds how long Run waits for output pipes to close after the
// tool has been killed.
const waitDelay = 2 * time.Second

// Runner executes invocations one at a time.
type Runner struct {
	// Timeout bounds a single invocation. Zero means wait indefinitely.
	Timeout time.Duration
}

// NewRunner creates a runner with the given per-invocation timeout.
func NewRunner(timeout time.Duration) *Runner {
	return &Runner{Timeout: timeout}
}

// Run executes inv and blocks until the tool exits, the timeout fires or ctx
// is cancelled. Stdout and stderr are captured separately. On cancellation
// the tool's whole process group is killed.
func (r *Runner) Run(ctx context.Context, inv Invocation) Result {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	argv := inv.Command()
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	setProcessGroup(cmd)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	res := Result{
		Invocation: inv,
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		Duration:   time.Since(start),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		res.ExitCode = 0
	case ctx.Err() != nil:
		res.ExitCode = -1
		res.Err = fmt.Errorf("%s: %w", inv.Tool.Name, ctx.Err())
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		res.Err = fmt.Errorf("%s exited with status %d", inv.Tool.Name, res.ExitCode)
	default:
		res.ExitCode = -1
		res.Err = fmt.Errorf("starting %s: %w", inv.Tool.Name, err)
	}
	return res
}
