package domain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gooze.dev/pkg/evomut/internal/adapter"
	"gooze.dev/pkg/evomut/internal/controller"
	m "gooze.dev/pkg/evomut/internal/model"
	pkg "gooze.dev/pkg/evomut/pkg"
)

// StdinPath selects standard input as the preview source.
const StdinPath m.Path = "-"

// RunArgs contains the arguments of an evolutionary run.
type RunArgs struct {
	Config m.MutationConfig
	// Paths are resolved into Config.TargetFiles when non-empty. Each entry is
	// a Go file, a directory (its files) or a "dir/..." pattern (recursive).
	Paths       []m.Path
	Seed        int64 // 0 picks a time based seed
	WorkDir     m.Path
	Command     []string
	Format      string
	Reports     m.Path
	MetricsFile m.Path
}

// ListArgs contains the arguments for listing mutations.
type ListArgs struct {
	Paths []m.Path
}

// PreviewArgs contains the arguments for previewing mutants of one source.
type PreviewArgs struct {
	Path  m.Path
	Input io.Reader // read when Path is StdinPath
	Limit int       // 0 shows every mutation
}

// ViewArgs contains the arguments for showing the latest report.
type ViewArgs struct {
	Reports m.Path
}

// Workflow is the application service behind the CLI commands.
type Workflow interface {
	Run(ctx context.Context, args RunArgs) error
	List(ctx context.Context, args ListArgs) error
	Preview(ctx context.Context, args PreviewArgs) error
	View(ctx context.Context, args ViewArgs) error
}

type workflow struct {
	adapter.SourceFSAdapter
	adapter.ReportStore
	controller.UI
	Mutator

	testAdapter adapter.TestRunnerAdapter
	filter      MutationFilter
}

// NewWorkflow creates a Workflow with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	testAdapter adapter.TestRunnerAdapter,
	reportStore adapter.ReportStore,
	ui controller.UI,
	mutator Mutator,
) Workflow {
	return &workflow{
		SourceFSAdapter: fsAdapter,
		ReportStore:     reportStore,
		UI:              ui,
		Mutator:         mutator,
		testAdapter:     testAdapter,
	}
}

func (w *workflow) Run(ctx context.Context, args RunArgs) error {
	config := args.Config

	if len(args.Paths) > 0 {
		targets, err := w.resolveTargets(ctx, args.Paths)
		if err != nil {
			return err
		}

		config.TargetFiles = targets
	}

	parser, err := NewOutputParser(args.Format)
	if err != nil {
		return err
	}

	spill, err := pkg.NewFileSpill[m.MutationResult]("")
	if err != nil {
		return fmt.Errorf("create result spill: %w", err)
	}

	defer func() {
		if err := spill.Close(); err != nil {
			slog.Warn("Failed to close result spill", "error", err)
		}
	}()

	evaluator := NewEvaluator(w.SourceFSAdapter, w.testAdapter, args.WorkDir, config.Timeout(),
		WithTestCommand(args.Command),
		WithOutputParser(parser),
	)

	collector := &spillObserver{spill: spill}
	opts := []EngineOption{WithStreamedResults(), WithObserver(w.UI), WithObserver(collector)}

	var metrics *adapter.MetricsRecorder
	if args.MetricsFile != "" {
		metrics = adapter.NewMetricsRecorder()
		opts = append(opts, WithObserver(metrics))
	}

	if args.Seed != 0 {
		opts = append(opts, WithSeed(args.Seed))
	}

	engine, err := NewEngine(config, w.SourceFSAdapter, w.Mutator, evaluator, opts...)
	if err != nil {
		return err
	}

	startedAt := time.Now()

	w.DisplayRunInfo(ctx, config, engine.Seed())

	if err := w.Start(ctx, controller.WithGenerations(config.MaxGenerations)); err != nil {
		return fmt.Errorf("start ui: %w", err)
	}

	_, runErr := engine.Run(ctx)

	w.Close(context.WithoutCancel(ctx))

	if runErr != nil && spill.Len() == 0 {
		slog.Error("Evolutionary run failed", "error", runErr)
		return fmt.Errorf("evolve: %w", runErr)
	}

	if collector.err != nil {
		return fmt.Errorf("spill results: %w", collector.err)
	}

	report, err := w.buildReport(context.WithoutCancel(ctx), config, engine, spill)
	if err != nil {
		return err
	}

	report.StartedAt = startedAt
	report.FinishedAt = time.Now()

	if err := w.finishRun(ctx, args, report, metrics); err != nil {
		return errors.Join(runErr, err)
	}

	if runErr != nil {
		return fmt.Errorf("evolve: %w", runErr)
	}

	return nil
}

func (w *workflow) buildReport(
	ctx context.Context,
	config m.MutationConfig,
	engine Engine,
	spill pkg.FileSpill[m.MutationResult],
) (m.Report, error) {
	results := make([]m.MutationResult, 0, spill.Len())
	sources := make(map[m.Path]string)
	diffed := make(map[string]string)

	err := spill.Range(func(_ uint64, result m.MutationResult) error {
		if !result.Killed {
			result.Diff = w.survivorDiff(ctx, sources, diffed, result.Mutation)
		}

		results = append(results, result)

		return nil
	})
	if err != nil {
		return m.Report{}, fmt.Errorf("read result spill: %w", err)
	}

	score, err := mutationScoreFromSpill(spill)
	if err != nil {
		return m.Report{}, fmt.Errorf("compute mutation score: %w", err)
	}

	return m.Report{
		Config:        config,
		Seed:          engine.Seed(),
		Generations:   engine.Summaries(),
		Results:       results,
		MutationScore: score,
	}, nil
}

// survivorDiff renders the diff of a surviving mutant against the source as
// it is on disk after the run.
func (w *workflow) survivorDiff(ctx context.Context, sources map[m.Path]string, diffed map[string]string, mutation m.Mutation) string {
	if diff, ok := diffed[mutation.ID]; ok {
		return diff
	}

	source, ok := sources[mutation.FilePath]
	if !ok {
		content, err := w.ReadFile(ctx, mutation.FilePath)
		if err != nil {
			slog.Warn("Failed to read source for diff", "path", mutation.FilePath, "error", err)
		}

		source = string(content)
		sources[mutation.FilePath] = source
	}

	diff, err := w.Diff(source, mutation)
	if err != nil {
		slog.Warn("Failed to render mutant diff", "mutation", mutation.String(), "error", err)
	}

	diffed[mutation.ID] = diff

	return diff
}

func (w *workflow) finishRun(ctx context.Context, args RunArgs, report m.Report, metrics *adapter.MetricsRecorder) error {
	if args.Reports != "" {
		path, err := w.SaveReport(args.Reports, report)
		if err != nil {
			slog.Error("Failed to save report", "dir", args.Reports, "error", err)
			return fmt.Errorf("save report: %w", err)
		}

		slog.Info("Saved report", "path", path)
	}

	if metrics != nil {
		if err := metrics.WriteTextfile(args.MetricsFile); err != nil {
			slog.Error("Failed to write metrics", "path", args.MetricsFile, "error", err)
			return err
		}
	}

	return w.DisplayReport(context.WithoutCancel(ctx), report)
}

func (w *workflow) List(ctx context.Context, args ListArgs) error {
	targets, err := w.resolveTargets(ctx, args.Paths)
	if err != nil {
		return err
	}

	var all []m.Mutation

	for _, target := range targets {
		mutations, err := w.GenerateFileMutations(ctx, target)
		if err != nil {
			return err
		}

		all = append(all, w.filter.Prioritize(w.filter.FilterEquivalent(mutations))...)
	}

	return w.DisplayMutations(ctx, all)
}

func (w *workflow) Preview(ctx context.Context, args PreviewArgs) error {
	source, mutations, err := w.previewMutations(ctx, args)
	if err != nil {
		return err
	}

	mutations = w.filter.Prioritize(mutations)
	if args.Limit > 0 && len(mutations) > args.Limit {
		mutations = mutations[:args.Limit]
	}

	previews := make([]controller.Preview, 0, len(mutations))

	for _, mutation := range mutations {
		diff, err := w.Diff(source, mutation)
		if err != nil {
			return err
		}

		previews = append(previews, controller.Preview{Mutation: mutation, Diff: diff})
	}

	return w.DisplayPreview(ctx, previews)
}

func (w *workflow) previewMutations(ctx context.Context, args PreviewArgs) (string, []m.Mutation, error) {
	if args.Path == StdinPath {
		if args.Input == nil {
			return "", nil, validationError("no input to preview")
		}

		data, err := io.ReadAll(args.Input)
		if err != nil {
			return "", nil, ioError("read stdin", err)
		}

		mutations, err := w.GenerateMutations(string(data))

		return string(data), mutations, err
	}

	content, err := w.ReadFile(ctx, args.Path)
	if err != nil {
		slog.Error("Failed to read preview source", "path", args.Path, "error", err)
		return "", nil, ioError(fmt.Sprintf("read %s", args.Path), err)
	}

	mutations, err := w.GenerateFileMutations(ctx, args.Path)

	return string(content), mutations, err
}

func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	report, path, err := w.LoadLatest(args.Reports)
	if err != nil {
		return fmt.Errorf("load report from %s: %w", args.Reports, err)
	}

	slog.Debug("Loaded report", "path", path)

	return w.DisplayReport(ctx, report)
}

// resolveTargets expands files, directories and "dir/..." patterns into the
// list of non-test Go files they denote, in walk order.
func (w *workflow) resolveTargets(ctx context.Context, paths []m.Path) ([]m.Path, error) {
	if len(paths) == 0 {
		paths = []m.Path{"./..."}
	}

	seen := make(map[m.Path]struct{})
	targets := make([]m.Path, 0)

	add := func(p string) {
		path := m.Path(filepath.Clean(p))
		if _, ok := seen[path]; ok {
			return
		}

		seen[path] = struct{}{}
		targets = append(targets, path)
	}

	for _, path := range paths {
		root, recursive := strings.CutSuffix(string(path), "/...")
		if root == "" {
			root = "."
		}

		info, err := w.FileInfo(ctx, m.Path(root))
		if err != nil {
			slog.Error("Failed to stat target path", "path", path, "error", err)
			return nil, ioError(fmt.Sprintf("stat %s", path), err)
		}

		if !info.IsDir() {
			add(root)
			continue
		}

		err = w.Walk(ctx, m.Path(root), recursive, func(p string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if fi.IsDir() {
				if p != root && skipDir(fi.Name()) {
					return filepath.SkipDir
				}

				return nil
			}

			if isMutationTarget(p) {
				add(p)
			}

			return nil
		})
		if err != nil {
			return nil, ioError(fmt.Sprintf("walk %s", path), err)
		}
	}

	return targets, nil
}

func skipDir(name string) bool {
	return name == "vendor" || name == "testdata" || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

func isMutationTarget(path string) bool {
	return filepath.Ext(path) == ".go" && !strings.HasSuffix(path, "_test.go")
}

// spillObserver streams evaluated results into a FileSpill.
type spillObserver struct {
	NopObserver

	spill pkg.FileSpill[m.MutationResult]
	err   error
}

func (s *spillObserver) MutationEvaluated(result m.MutationResult) {
	if s.err != nil {
		return
	}

	if err := s.spill.Append(result); err != nil {
		slog.Error("Failed to spill result", "mutation", result.Mutation.String(), "error", err)
		s.err = err
	}
}
