package domain

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"gooze.dev/pkg/evomut/internal/adapter"
	m "gooze.dev/pkg/evomut/internal/model"
)

const calcSource = `package calc

func Add(a, b int) int {
	return a + b
}

func Enabled() bool {
	return true
}
`

// writeSource writes content to name inside a fresh temp directory.
func writeSource(t *testing.T, name, content string) m.Path {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return m.Path(path)
}

func readSource(t *testing.T, path m.Path) string {
	t.Helper()

	data, err := os.ReadFile(string(path))
	require.NoError(t, err)

	return string(data)
}

func requireNoBackup(t *testing.T, path m.Path) {
	t.Helper()

	_, err := os.Stat(string(path.BackupPath()))
	require.True(t, os.IsNotExist(err), "backup %s should not exist", path.BackupPath())
}

func examplePath(name string) m.Path {
	return m.Path(filepath.Join("..", "..", "examples", name, "main.go"))
}

// fakeRunner is a TestRunnerAdapter driven by a function.
type fakeRunner struct {
	mu    sync.Mutex
	calls [][]string
	run   func(ctx context.Context, workDir m.Path, command []string) (adapter.TestRun, error)
}

func (f *fakeRunner) Run(ctx context.Context, workDir m.Path, command []string) (adapter.TestRun, error) {
	f.mu.Lock()
	f.calls = append(f.calls, command)
	f.mu.Unlock()

	return f.run(ctx, workDir, command)
}

func staticRunner(stdout, stderr string, exitCode int) *fakeRunner {
	return &fakeRunner{run: func(context.Context, m.Path, []string) (adapter.TestRun, error) {
		return adapter.TestRun{Stdout: stdout, Stderr: stderr, ExitCode: exitCode}, nil
	}}
}

// recordingObserver keeps every notification it receives.
type recordingObserver struct {
	started   []int
	sizes     []int
	evaluated []m.MutationResult
	failed    []error
	completed []m.GenerationSummary
	onGenDone func(m.GenerationSummary)
}

func (r *recordingObserver) GenerationStarted(generation int, population int) {
	r.started = append(r.started, generation)
	r.sizes = append(r.sizes, population)
}

func (r *recordingObserver) MutationEvaluated(result m.MutationResult) {
	r.evaluated = append(r.evaluated, result)
}

func (r *recordingObserver) MutationFailed(_ m.Mutation, err error) {
	r.failed = append(r.failed, err)
}

func (r *recordingObserver) GenerationCompleted(summary m.GenerationSummary) {
	r.completed = append(r.completed, summary)
	if r.onGenDone != nil {
		r.onGenDone(summary)
	}
}
