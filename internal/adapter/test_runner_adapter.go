package adapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	m "gooze.dev/pkg/evomut/internal/model"
)

// waitDelay bounds how long Run waits for output pipes after the process was
// killed on timeout.
const waitDelay = 2 * time.Second

// TestRun captures one execution of the test command.
type TestRun struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Combined returns stdout followed by stderr.
func (r TestRun) Combined() string {
	return r.Stdout + r.Stderr
}

// TestRunnerAdapter abstracts test execution for mutation testing.
type TestRunnerAdapter interface {
	// Run executes command (name followed by arguments) in workDir. A non-zero
	// exit status is reported through TestRun.ExitCode, not as an error. When
	// ctx expires before the command completes the process is killed and the
	// context error is returned.
	Run(ctx context.Context, workDir m.Path, command []string) (TestRun, error)
}

// LocalTestRunnerAdapter runs test commands with os/exec.
type LocalTestRunnerAdapter struct {
	env []string
}

// NewLocalTestRunnerAdapter constructs a LocalTestRunnerAdapter. Extra
// environment entries ("KEY=value") are appended to the inherited environment.
func NewLocalTestRunnerAdapter(env ...string) *LocalTestRunnerAdapter {
	return &LocalTestRunnerAdapter{env: env}
}

// Run implements TestRunnerAdapter.
func (a *LocalTestRunnerAdapter) Run(ctx context.Context, workDir m.Path, command []string) (TestRun, error) {
	if len(command) == 0 {
		return TestRun{}, fmt.Errorf("empty test command")
	}

	// #nosec G204 - the test command is operator configuration
	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Dir = string(workDir)
	cmd.WaitDelay = waitDelay

	if len(a.env) > 0 {
		cmd.Env = append(cmd.Environ(), a.env...)
	}

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	run := TestRun{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: cmd.ProcessState.ExitCode(),
		Duration: time.Since(start),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return run, ctxErr
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return run, nil
		}

		return run, fmt.Errorf("run %s: %w", command[0], err)
	}

	return run, nil
}
