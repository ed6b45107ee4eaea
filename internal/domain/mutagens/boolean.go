package mutagens

import (
	"regexp"

	m "gooze.dev/pkg/evomut/internal/model"
)

const (
	trueStr  = "true"
	falseStr = "false"
)

var (
	trueRegex  = regexp.MustCompile(`\btrue\b`)
	falseRegex = regexp.MustCompile(`\bfalse\b`)
)

// BooleanLiteral flips every word-bounded true/false literal.
type BooleanLiteral struct{}

// Name implements Operator.
func (BooleanLiteral) Name() string {
	return string(m.MutationBoolean)
}

// Mutate implements Operator. On each line all true literals are reported
// before the false ones.
func (BooleanLiteral) Mutate(code string, path m.Path) ([]m.Mutation, error) {
	var mutations []m.Mutation

	for idx, line := range SplitLines(code) {
		for _, loc := range trueRegex.FindAllStringIndex(line, -1) {
			mutations = append(mutations, newMutation(path, idx+1, loc[0]+1, m.MutationBoolean, trueStr, falseStr))
		}

		for _, loc := range falseRegex.FindAllStringIndex(line, -1) {
			mutations = append(mutations, newMutation(path, idx+1, loc[0]+1, m.MutationBoolean, falseStr, trueStr))
		}
	}

	return mutations, nil
}
