// Package mutagens provides the text-pattern operators that enumerate candidate
// mutations for one syntactic category each.
//
// Operators never parse the source: they scan it line by line and match
// literal patterns, so a mutation may land inside a comment or a string
// literal.
package mutagens

import (
	"strings"

	"github.com/google/uuid"

	m "gooze.dev/pkg/evomut/internal/model"
)

// Operator enumerates the mutations of one syntactic category in source text.
// Implementations must not modify code and must not touch the filesystem.
type Operator interface {
	Name() string
	Mutate(code string, path m.Path) ([]m.Mutation, error)
}

// replacement pairs a pattern with every operator it may be rewritten to.
type replacement struct {
	op           string
	replacements []string
}

// SplitLines splits code into lines the way a line iterator would: "\n"
// separates lines, a trailing "\r" is dropped and a final newline does not
// start an extra empty line.
func SplitLines(code string) []string {
	if code == "" {
		return nil
	}

	lines := strings.Split(code, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}

	return lines
}

func newMutation(path m.Path, line, column int, mutationType m.MutationType, original, mutated string) m.Mutation {
	return m.Mutation{
		ID:       uuid.NewString(),
		FilePath: path,
		Line:     line,
		Column:   column,
		Type:     mutationType,
		Original: original,
		Mutated:  mutated,
	}
}

// firstMatchMutations emits, for every line and every op found on it, one
// mutation per replacement at the first column where op occurs.
func firstMatchMutations(code string, path m.Path, mutationType m.MutationType, table []replacement) []m.Mutation {
	var mutations []m.Mutation

	for idx, line := range SplitLines(code) {
		for _, entry := range table {
			col := strings.Index(line, entry.op)
			if col < 0 {
				continue
			}

			for _, mutated := range entry.replacements {
				mutations = append(mutations, newMutation(path, idx+1, col+1, mutationType, entry.op, mutated))
			}
		}
	}

	return mutations
}
