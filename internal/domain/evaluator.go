package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gooze.dev/pkg/evomut/internal/adapter"
	m "gooze.dev/pkg/evomut/internal/model"
)

// DefaultTestCommand runs the Go test suite verbosely so GoTestParser can see
// individual tests.
var DefaultTestCommand = []string{"go", "test", "-v", "./..."}

// Evaluator runs the test suite against one mutated file.
type Evaluator interface {
	// EvaluateMutation stages mutatedCode at mutation.FilePath, runs the test
	// command and restores the original file. The target file is
	// byte-identical to its previous content once the call returns, whatever
	// the outcome.
	EvaluateMutation(ctx context.Context, mutation m.Mutation, mutatedCode string) (m.MutationResult, error)
}

// EvaluatorOption customizes an Evaluator.
type EvaluatorOption func(*evaluator)

// WithTestCommand sets the command (executable followed by arguments) used to
// run the test suite.
func WithTestCommand(command []string) EvaluatorOption {
	return func(e *evaluator) {
		if len(command) > 0 {
			e.command = append([]string(nil), command...)
		}
	}
}

// WithOutputParser sets the parser applied to the test command output.
func WithOutputParser(parser OutputParser) EvaluatorOption {
	return func(e *evaluator) {
		if parser != nil {
			e.parser = parser
		}
	}
}

type evaluator struct {
	fsAdapter   adapter.SourceFSAdapter
	testAdapter adapter.TestRunnerAdapter
	workDir     m.Path
	timeout     time.Duration
	command     []string
	parser      OutputParser
	locks       pathLocks
}

// NewEvaluator creates an Evaluator that runs the test command in workDir,
// killing it after timeout.
func NewEvaluator(
	fsAdapter adapter.SourceFSAdapter,
	testAdapter adapter.TestRunnerAdapter,
	workDir m.Path,
	timeout time.Duration,
	opts ...EvaluatorOption,
) Evaluator {
	e := &evaluator{
		fsAdapter:   fsAdapter,
		testAdapter: testAdapter,
		workDir:     workDir,
		timeout:     timeout,
		command:     DefaultTestCommand,
		parser:      GoTestParser{},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

func (e *evaluator) EvaluateMutation(ctx context.Context, mutation m.Mutation, mutatedCode string) (result m.MutationResult, err error) {
	unlock := e.locks.lock(mutation.FilePath)
	defer unlock()

	start := time.Now()

	restore, err := e.stage(ctx, mutation.FilePath, mutatedCode)
	if err != nil {
		return m.MutationResult{}, err
	}

	defer func() {
		if restoreErr := restore(); restoreErr != nil {
			result = m.MutationResult{}
			err = errors.Join(err, restoreErr)
		}
	}()

	run, err := e.runTests(ctx, mutation)
	if err != nil {
		return m.MutationResult{}, err
	}

	tests := e.parser.Parse(run)
	killed := false

	for _, tr := range tests {
		if !tr.Passed {
			killed = true
			break
		}
	}

	result = m.MutationResult{
		Mutation:        mutation,
		Killed:          killed,
		TestResults:     tests,
		Fitness:         mutationFitness(tests, killed),
		ExecutionTimeMs: uint64(time.Since(start).Milliseconds()),
	}

	slog.Debug("Evaluated mutation", "mutation", mutation.String(), "killed", killed, "tests", len(tests))

	return result, nil
}

// stage backs up path to its .bak sibling and writes mutatedCode in its place.
// The returned function puts the original back and removes the backup.
// Staging ignores cancellation: an evaluation that has begun runs to the end
// and the engine stops at the next generation boundary.
func (e *evaluator) stage(ctx context.Context, path m.Path, mutatedCode string) (func() error, error) {
	ctx = context.WithoutCancel(ctx)
	backup := path.BackupPath()

	if _, err := e.fsAdapter.FileInfo(ctx, backup); err == nil {
		slog.Error("Stale backup found", "path", path, "backup", backup)
		return nil, ioError(fmt.Sprintf("stage %s", path),
			fmt.Errorf("backup %s already exists; remove or rename it before mutating %s", backup, path))
	}

	info, err := e.fsAdapter.FileInfo(ctx, path)
	if err != nil {
		slog.Error("Failed to stat target file", "path", path, "error", err)
		return nil, ioError(fmt.Sprintf("stat %s", path), err)
	}

	originalHash, err := e.fsAdapter.HashFile(ctx, path)
	if err != nil {
		slog.Error("Failed to hash target file", "path", path, "error", err)
		return nil, ioError(fmt.Sprintf("hash %s", path), err)
	}

	if err := e.fsAdapter.CopyFile(ctx, path, backup); err != nil {
		slog.Error("Failed to back up target file", "path", path, "backup", backup, "error", err)
		return nil, ioError(fmt.Sprintf("back up %s", path), err)
	}

	restore := func() error {
		if err := e.fsAdapter.Rename(ctx, backup, path); err != nil {
			slog.Error("Failed to restore target file", "path", path, "backup", backup, "error", err)
			return ioError(fmt.Sprintf("restore %s from %s", path, backup), err)
		}

		restoredHash, err := e.fsAdapter.HashFile(ctx, path)
		if err != nil {
			slog.Error("Failed to verify restored file", "path", path, "error", err)
			return ioError(fmt.Sprintf("verify %s", path), err)
		}

		if restoredHash != originalHash {
			slog.Error("Restored file differs from original", "path", path)
			return ioError(fmt.Sprintf("verify %s", path), errors.New("content differs after restore"))
		}

		return nil
	}

	if err := e.fsAdapter.WriteFile(ctx, path, []byte(mutatedCode), info.Mode().Perm()); err != nil {
		slog.Error("Failed to write mutated file", "path", path, "error", err)
		return nil, errors.Join(ioError(fmt.Sprintf("write %s", path), err), restore())
	}

	return restore, nil
}

func (e *evaluator) runTests(ctx context.Context, mutation m.Mutation) (adapter.TestRun, error) {
	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
	defer cancel()

	run, err := e.testAdapter.Run(runCtx, e.workDir, e.command)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			slog.Warn("Test command timed out", "mutation", mutation.String(), "timeout", e.timeout)
			return run, fmt.Errorf("%w: %s after %s", ErrTimeout, mutation.String(), e.timeout)
		}

		slog.Error("Failed to run test command", "command", e.command, "error", err)

		return run, ioError("run test command", err)
	}

	return run, nil
}

// pathLocks hands out one mutex per target path.
type pathLocks struct {
	mu    sync.Mutex
	locks map[m.Path]*sync.Mutex
}

func (p *pathLocks) lock(path m.Path) func() {
	p.mu.Lock()

	if p.locks == nil {
		p.locks = make(map[m.Path]*sync.Mutex)
	}

	l, ok := p.locks[path]
	if !ok {
		l = &sync.Mutex{}
		p.locks[path] = l
	}

	p.mu.Unlock()

	l.Lock()

	return l.Unlock
}
