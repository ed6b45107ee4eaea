package controller

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	m "gooze.dev/pkg/evomut/internal/model"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	killedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	survivedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	skippedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	faintStyle    = lipgloss.NewStyle().Faint(true)
	diffAddStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	diffDelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

const progressWidth = 40

// TUI implements UI using Bubble Tea for the live run display and lipgloss
// styled text for everything else.
type TUI struct {
	output io.Writer

	mu      sync.Mutex
	program *tea.Program
	done    chan struct{}
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// Start launches the progress display.
func (t *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cfg := StartConfig{}
	for _, opt := range options {
		opt(&cfg)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.program != nil {
		return nil
	}

	t.program = tea.NewProgram(newRunModel(cfg.generations), tea.WithOutput(t.output), tea.WithInput(nil))
	t.done = make(chan struct{})

	go func(program *tea.Program, done chan struct{}) {
		defer close(done)

		_, _ = program.Run()
	}(t.program, t.done)

	return nil
}

// Close stops the progress display and waits for its final frame.
func (t *TUI) Close(ctx context.Context) {
	t.send(finishMsg{})
	t.Wait(ctx)

	t.mu.Lock()
	t.program = nil
	t.mu.Unlock()
}

// Wait blocks until the progress display exits or ctx is done.
func (t *TUI) Wait(ctx context.Context) {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()

	if done == nil {
		return
	}

	select {
	case <-done:
	case <-ctx.Done():
	}
}

// DisplayMutations prints per-file mutation counts.
func (t *TUI) DisplayMutations(ctx context.Context, mutations []m.Mutation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(t.output, "%s\n\n%s", titleStyle.Render("Mutations"), renderMutationTable(mutations))

	return err
}

// DisplayPreview prints each mutation with a colored diff.
func (t *TUI) DisplayPreview(ctx context.Context, previews []Preview) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder

	for _, p := range previews {
		b.WriteString(titleStyle.Render(p.Mutation.String()))
		b.WriteString(" ")
		b.WriteString(faintStyle.Render(string(p.Mutation.Type)))
		b.WriteString("\n")
		b.WriteString(colorDiff(p.Diff))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "%d mutation(s)\n", len(previews))

	_, err := io.WriteString(t.output, b.String())

	return err
}

// DisplayRunInfo prints the run parameters.
func (t *TUI) DisplayRunInfo(ctx context.Context, config m.MutationConfig, seed int64) {
	if ctx.Err() != nil {
		return
	}

	_, _ = fmt.Fprintf(t.output, "%s %s\n",
		titleStyle.Render("evomut"),
		faintStyle.Render(fmt.Sprintf("population %d, generations %d, files %d, seed %d",
			config.PopulationSize, config.MaxGenerations, len(config.TargetFiles), seed)),
	)
}

// DisplayReport prints generation summaries, surviving mutants and the score.
func (t *TUI) DisplayReport(ctx context.Context, report m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Generations"))
	b.WriteString("\n\n")
	b.WriteString(renderGenerationTable(report.Generations))

	survivors := report.Survivors()
	if len(survivors) > 0 {
		b.WriteString("\n")
		b.WriteString(survivedStyle.Render(fmt.Sprintf("Surviving mutants (%d)", len(survivors))))
		b.WriteString("\n\n")
		b.WriteString(renderSurvivorTable(survivors))
		b.WriteString("\n")
		b.WriteString(colorDiff(renderDiffs(survivors)))
	}

	style := killedStyle
	if report.MutationScore < 1 {
		style = survivedStyle
	}

	b.WriteString("\nMutation score: ")
	b.WriteString(style.Render(formatScore(report.MutationScore)))
	b.WriteString("\n")

	_, err := io.WriteString(t.output, b.String())

	return err
}

// GenerationStarted implements UI.
func (t *TUI) GenerationStarted(generation int, population int) {
	t.send(generationStartedMsg{generation: generation, population: population})
}

// MutationEvaluated implements UI.
func (t *TUI) MutationEvaluated(result m.MutationResult) {
	t.send(mutationEvaluatedMsg{result: result})
}

// MutationFailed implements UI.
func (t *TUI) MutationFailed(mutation m.Mutation, err error) {
	t.send(mutationFailedMsg{mutation: mutation, err: err})
}

// GenerationCompleted implements UI.
func (t *TUI) GenerationCompleted(summary m.GenerationSummary) {
	t.send(generationCompletedMsg{summary: summary})
}

func (t *TUI) send(msg tea.Msg) {
	t.mu.Lock()
	program := t.program
	t.mu.Unlock()

	if program != nil {
		program.Send(msg)
	}
}

func colorDiff(diff string) string {
	lines := strings.SplitAfter(diff, "\n")

	var b strings.Builder

	for _, line := range lines {
		body := strings.TrimSuffix(line, "\n")

		switch {
		case strings.HasPrefix(body, "+++"), strings.HasPrefix(body, "---"), strings.HasPrefix(body, "@@"):
			b.WriteString(faintStyle.Render(body))
		case strings.HasPrefix(body, "+"):
			b.WriteString(diffAddStyle.Render(body))
		case strings.HasPrefix(body, "-"):
			b.WriteString(diffDelStyle.Render(body))
		default:
			b.WriteString(body)
		}

		if strings.HasSuffix(line, "\n") {
			b.WriteString("\n")
		}
	}

	return b.String()
}

type (
	generationStartedMsg struct {
		generation int
		population int
	}
	mutationEvaluatedMsg struct {
		result m.MutationResult
	}
	mutationFailedMsg struct {
		mutation m.Mutation
		err      error
	}
	generationCompletedMsg struct {
		summary m.GenerationSummary
	}
	finishMsg struct{}
)

// runModel is the Bubble Tea model of a running evolution.
type runModel struct {
	bar         progress.Model
	generations int
	completed   int
	current     int
	population  int
	killed      int
	survived    int
	skipped     int
	best        float64
	last        string
	quitting    bool
}

func newRunModel(generations int) runModel {
	return runModel{
		bar:         progress.New(progress.WithDefaultGradient(), progress.WithWidth(progressWidth)),
		generations: generations,
	}
}

func (rm runModel) Init() tea.Cmd {
	return nil
}

func (rm runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case generationStartedMsg:
		rm.current = msg.generation
		rm.population = msg.population
	case mutationEvaluatedMsg:
		if msg.result.Killed {
			rm.killed++
			rm.last = killedStyle.Render("killed   ") + " " + msg.result.Mutation.String()
		} else {
			rm.survived++
			rm.last = survivedStyle.Render("survived ") + " " + msg.result.Mutation.String()
		}
	case mutationFailedMsg:
		rm.skipped++
		rm.last = skippedStyle.Render("skipped  ") + " " + msg.mutation.String()
	case generationCompletedMsg:
		rm.completed++
		if rm.completed == 1 || msg.summary.BestFitness > rm.best {
			rm.best = msg.summary.BestFitness
		}
	case finishMsg:
		rm.quitting = true
		return rm, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			rm.quitting = true
			return rm, tea.Quit
		}
	}

	return rm, nil
}

func (rm runModel) percent() float64 {
	if rm.generations <= 0 {
		return 0
	}

	return min(float64(rm.completed)/float64(rm.generations), 1)
}

func (rm runModel) View() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n",
		titleStyle.Render(fmt.Sprintf("Generation %d/%d", min(rm.current+1, max(rm.generations, 1)), rm.generations)),
		faintStyle.Render(fmt.Sprintf("(%d individuals)", rm.population)),
	)
	b.WriteString(rm.bar.ViewAs(rm.percent()))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s  %s  %s  best fitness %.3f\n",
		killedStyle.Render(fmt.Sprintf("killed %d", rm.killed)),
		survivedStyle.Render(fmt.Sprintf("survived %d", rm.survived)),
		skippedStyle.Render(fmt.Sprintf("skipped %d", rm.skipped)),
		rm.best,
	)

	if rm.last != "" && !rm.quitting {
		b.WriteString(rm.last)
		b.WriteString("\n")
	}

	return b.String()
}
