package pcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// Result is the outcome of one command
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner runs a command. A non-zero exit code is not an error: err is
// only returned when the command could not be run at all.
type Runner interface {
	Run(ctx context.Context, argv []string) (Result, error)
}

// ExecRunner runs commands on the local host
type ExecRunner struct {
	// Timeout bounds every command (default: 5 minutes)
	Timeout time.Duration
}

// NewExecRunner creates a runner with the default timeout
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Timeout: 5 * time.Minute}
}

// Run executes argv and captures stdout and stderr
func (r *ExecRunner) Run(ctx context.Context, argv []string) (Result, error) {
	if len(argv) == 0 {
		return Result{}, fmt.Errorf("no command specified")
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return res, nil
	case ctx.Err() != nil:
		return res, ctx.Err()
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	default:
		return res, err
	}
}
