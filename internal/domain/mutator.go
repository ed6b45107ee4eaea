// Package domain contains the mutation testing core: generation, filtering,
// evaluation and the evolutionary search over mutation combinations.
package domain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"gooze.dev/pkg/evomut/internal/adapter"
	"gooze.dev/pkg/evomut/internal/domain/mutagens"
	m "gooze.dev/pkg/evomut/internal/model"
)

// InMemoryPath is the file path recorded on mutations generated from a string.
const InMemoryPath m.Path = "<memory>"

// Mutator generates mutations and applies a single chosen mutation to text.
type Mutator interface {
	GenerateFileMutations(ctx context.Context, path m.Path) ([]m.Mutation, error)
	// GenerateSourceMutations enumerates mutations of code already read from
	// path.
	GenerateSourceMutations(code string, path m.Path) ([]m.Mutation, error)
	GenerateMutations(code string) ([]m.Mutation, error)
	ApplyMutation(code string, mutation m.Mutation) (string, error)
	Diff(code string, mutation m.Mutation) (string, error)
}

type mutator struct {
	fsAdapter adapter.SourceFSAdapter
	operator  mutagens.Operator
}

// NewMutator creates a Mutator reading files through fsAdapter. Without
// operators the built-in set is registered.
func NewMutator(fsAdapter adapter.SourceFSAdapter, operators ...mutagens.Operator) Mutator {
	return &mutator{
		fsAdapter: fsAdapter,
		operator:  mutagens.NewComposite(operators...),
	}
}

func (mt *mutator) GenerateFileMutations(ctx context.Context, path m.Path) ([]m.Mutation, error) {
	if mt.fsAdapter == nil {
		return nil, fmt.Errorf("missing filesystem adapter")
	}

	content, err := mt.fsAdapter.ReadFile(ctx, path)
	if err != nil {
		slog.Error("Failed to read source file", "path", path, "error", err)
		return nil, ioError(fmt.Sprintf("read %s", path), err)
	}

	return mt.GenerateSourceMutations(string(content), path)
}

func (mt *mutator) GenerateSourceMutations(code string, path m.Path) ([]m.Mutation, error) {
	mutations, err := mt.operator.Mutate(code, path)
	if err != nil {
		return nil, fmt.Errorf("generate mutations for %s: %w", path, err)
	}

	slog.Debug("Generated file mutations", "path", path, "count", len(mutations))

	return mutations, nil
}

func (mt *mutator) GenerateMutations(code string) ([]m.Mutation, error) {
	return mt.operator.Mutate(code, InMemoryPath)
}

// ApplyMutation returns a copy of code where the first occurrence of
// mutation.Original on line mutation.Line is replaced by mutation.Mutated.
// Line terminators and every other line are preserved byte for byte.
func (mt *mutator) ApplyMutation(code string, mutation m.Mutation) (string, error) {
	segments := strings.SplitAfter(code, "\n")
	if segments[len(segments)-1] == "" {
		segments = segments[:len(segments)-1]
	}

	if mutation.Line < 1 || mutation.Line > len(segments) {
		return "", validationError("invalid line number %d for %d-line source", mutation.Line, len(segments))
	}

	idx := mutation.Line - 1
	body, terminator := splitTerminator(segments[idx])

	if !strings.Contains(body, mutation.Original) {
		slog.Debug("Mutation original text not found on line", "mutation", mutation.String())
	}

	var b strings.Builder

	b.Grow(len(code) + len(mutation.Mutated))

	for i, segment := range segments {
		if i == idx {
			b.WriteString(strings.Replace(body, mutation.Original, mutation.Mutated, 1))
			b.WriteString(terminator)

			continue
		}

		b.WriteString(segment)
	}

	return b.String(), nil
}

// Diff renders the mutant produced by mutation as a unified diff against code.
func (mt *mutator) Diff(code string, mutation m.Mutation) (string, error) {
	mutated, err := mt.ApplyMutation(code, mutation)
	if err != nil {
		return "", err
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(code),
		B:        difflib.SplitLines(mutated),
		FromFile: string(mutation.FilePath),
		ToFile:   string(mutation.FilePath) + " (mutant " + mutation.ShortID() + ")",
		Context:  2,
	}

	out, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("render diff: %w", err)
	}

	return out, nil
}

func splitTerminator(segment string) (string, string) {
	switch {
	case strings.HasSuffix(segment, "\r\n"):
		return strings.TrimSuffix(segment, "\r\n"), "\r\n"
	case strings.HasSuffix(segment, "\n"):
		return strings.TrimSuffix(segment, "\n"), "\n"
	default:
		return segment, ""
	}
}
